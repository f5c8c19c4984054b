// internal/platform/di/shared/infra.go
package shared

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/storage"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	appcfg "barcart/internal/infra/config"
	"barcart/internal/infra/database"
)

// Infra is shared runtime infrastructure for DI.
// - owns external clients (Firestore/FirebaseAuth/GCS/SecretManager/Postgres)
// - owns env/config-resolved runtime settings (bucket names, gateway config)
//
// IMPORTANT:
// Infra must NOT depend on store/console routers, handlers, or queries.
type Infra struct {
	// Config
	Config    *appcfg.Config
	ProjectID string

	// Clients (owned; Close-managed)
	Firestore     *firestore.Client
	GCS           *storage.Client
	FirebaseApp   *firebase.App
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secretmanager.Client
	Orders        *database.DB

	// Runtime settings (resolved once)
	ProductImageBucket string
	GatewayBaseURL     string
	GatewayKeySecret   string
	MailFrom           string
	AllowedOrigins     []string
}

// NewInfra initializes shared infra.
// Firestore is strict (return error).
// GCS, Firebase/Auth, SecretManager and Postgres are best-effort (warn + continue).
func NewInfra(ctx context.Context) (*Infra, error) {
	cfg := appcfg.Load()
	if cfg == nil {
		return nil, errors.New("shared.infra: config is nil")
	}

	projectID := strings.TrimSpace(cfg.FirestoreProjectID)
	if projectID == "" {
		// If empty, Firestore/NewApp become unstable; treat as hard error.
		return nil, errors.New("shared.infra: projectID is empty (set FIRESTORE_PROJECT_ID or GCP_PROJECT_ID)")
	}

	inf := &Infra{
		Config:    cfg,
		ProjectID: projectID,

		ProductImageBucket: strings.TrimSpace(cfg.ProductImageBucket),
		GatewayBaseURL:     strings.TrimSpace(cfg.GatewayBaseURL),
		GatewayKeySecret:   strings.TrimSpace(cfg.GatewayKeySecret),
		MailFrom:           strings.TrimSpace(cfg.MailFrom),
		AllowedOrigins:     cfg.AllowedOrigins,
	}

	// Credentials file (optional; mainly for local dev)
	credFile := strings.TrimSpace(cfg.FirestoreCredentialsFile)
	if credFile == "" {
		credFile = strings.TrimSpace(cfg.GCPCreds)
	}
	var clientOpts []option.ClientOption
	if credFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credFile))
		log.Printf("[shared.infra] Using credentials file for GCP clients")
	} else {
		log.Printf("[shared.infra] Using Application Default Credentials (no credentials file configured)")
	}

	// 1) Firestore (strict)
	{
		fsClient, err := firestore.NewClient(ctx, inf.ProjectID, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("shared.infra: firestore.NewClient failed (project=%s): %w", inf.ProjectID, err)
		}
		inf.Firestore = fsClient
		log.Printf("[shared.infra] Firestore connected project=%s", inf.ProjectID)
	}

	// 2) GCS (best-effort; only product image uploads depend on it)
	{
		gcsClient, err := storage.NewClient(ctx, clientOpts...)
		if err != nil {
			log.Printf("[shared.infra] WARN: storage.NewClient failed: %v (image uploads disabled)", err)
			gcsClient = nil
		} else {
			log.Printf("[shared.infra] GCS storage client initialized")
		}
		inf.GCS = gcsClient
	}

	// 3) Secret Manager (best-effort; gateway key falls back to env)
	{
		sm, err := secretmanager.NewClient(ctx, clientOpts...)
		if err != nil {
			log.Printf("[shared.infra] WARN: secretmanager.NewClient failed: %v (gateway key from env only)", err)
			sm = nil
		}
		inf.SecretManager = sm
	}

	// 4) Firebase App/Auth (best-effort; anonymous sessions still work)
	{
		fbCfg := &firebase.Config{ProjectID: inf.ProjectID}
		fbApp, err := firebase.NewApp(ctx, fbCfg, clientOpts...)
		if err != nil {
			log.Printf("[shared.infra] WARN: firebase app init failed: %v", err)
		} else {
			inf.FirebaseApp = fbApp
			authClient, err := fbApp.Auth(ctx)
			if err != nil {
				log.Printf("[shared.infra] WARN: firebase auth init failed: %v", err)
			} else {
				inf.FirebaseAuth = authClient
				log.Printf("[shared.infra] Firebase Auth initialized")
			}
		}
	}

	// 5) Postgres (best-effort; orders are recorded only when configured)
	{
		dsn := strings.TrimSpace(cfg.PostgresDSN)
		if dsn == "" {
			log.Printf("[shared.infra] DATABASE_URL empty (order records disabled)")
		} else {
			db, err := database.NewConnection(dsn)
			if err != nil {
				log.Printf("[shared.infra] WARN: postgres init failed: %v (order records disabled)", err)
			} else {
				inf.Orders = db
			}
		}
	}

	if inf.ProductImageBucket == "" {
		log.Printf("[shared.infra] WARN: PRODUCT_IMAGE_BUCKET is empty (image uploads may fail)")
	}

	// Final sanity check (panic prevention)
	if inf.Firestore == nil {
		_ = inf.Close()
		return nil, errors.New("shared.infra: firestore client is nil after initialization (unexpected)")
	}

	return inf, nil
}

func (i *Infra) Close() error {
	if i == nil {
		return nil
	}
	if i.Firestore != nil {
		_ = i.Firestore.Close()
		i.Firestore = nil
	}
	if i.GCS != nil {
		_ = i.GCS.Close()
		i.GCS = nil
	}
	if i.SecretManager != nil {
		_ = i.SecretManager.Close()
		i.SecretManager = nil
	}
	if i.Orders != nil {
		_ = i.Orders.Close()
		i.Orders = nil
	}
	return nil
}
