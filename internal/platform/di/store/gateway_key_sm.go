// internal/platform/di/store/gateway_key_sm.go
package store

import (
	"context"
	"errors"
	"log"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// resolveGatewayKey returns the gateway public key.
// Env wins; otherwise the key is read once from Secret Manager.
func resolveGatewayKey(ctx context.Context, sm *secretmanager.Client, projectID, secretID, envValue string) (string, error) {
	if v := strings.TrimSpace(envValue); v != "" {
		return v, nil
	}

	if sm == nil {
		return "", errors.New("di.store: secret manager client is nil and GATEWAY_PUBLIC_KEY is empty")
	}

	prj := strings.TrimSpace(projectID)
	sid := strings.TrimSpace(secretID)
	if prj == "" || sid == "" {
		return "", errors.New("di.store: projectID/secretID is empty for gateway key")
	}

	name := "projects/" + prj + "/secrets/" + sid + "/versions/latest"
	resp, err := sm.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", errors.New("di.store: AccessSecretVersion failed (" + name + "): " + err.Error())
	}
	if resp == nil || resp.Payload == nil {
		return "", errors.New("di.store: empty secret payload (" + name + ")")
	}

	log.Printf("[di.store] gateway key loaded from Secret Manager secret=%s", sid)
	return strings.TrimSpace(string(resp.Payload.Data)), nil
}
