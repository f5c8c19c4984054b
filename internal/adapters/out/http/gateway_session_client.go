// internal/adapters/out/http/gateway_session_client.go
package httpout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	uc "barcart/internal/application/usecase"
	cartdom "barcart/internal/domain/cart"
)

// GatewaySessionClient implements CheckoutUsecase's gateway port against the
// hosted-checkout HTTP API.
//
// baseURL example:
// - production: https://checkout.gateway.example
// - local: http://localhost:9090
type GatewaySessionClient struct {
	baseURL   string
	publicKey string
	client    *http.Client
}

func NewGatewaySessionClient(baseURL, publicKey string) *GatewaySessionClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return &GatewaySessionClient{
		baseURL:   baseURL,
		publicKey: strings.TrimSpace(publicKey),
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type sessionRequest struct {
	Lines []sessionLine `json:"lines"`
}

type sessionLine struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
}

type sessionResponse struct {
	SessionID   string `json:"sessionId"`
	RedirectURL string `json:"redirectUrl"`
}

// CreateSession posts the current cart lines and returns the opaque session
// id plus the redirect URL. Any non-2xx response is a failure; the caller
// maps it to the recoverable retry path.
func (c *GatewaySessionClient) CreateSession(ctx context.Context, lines []cartdom.Line) (uc.GatewaySession, error) {
	if c == nil {
		return uc.GatewaySession{}, fmt.Errorf("gateway session client is nil")
	}
	if c.baseURL == "" {
		return uc.GatewaySession{}, fmt.Errorf("gateway session client baseURL is empty")
	}
	if c.publicKey == "" {
		return uc.GatewaySession{}, fmt.Errorf("gateway session client public key is empty")
	}

	payload := sessionRequest{Lines: make([]sessionLine, 0, len(lines))}
	for _, ln := range lines {
		payload.Lines = append(payload.Lines, sessionLine{
			ID:        ln.ID,
			Name:      ln.Name,
			UnitPrice: ln.UnitPrice,
			Quantity:  ln.Quantity,
		})
	}

	b, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", bytes.NewReader(b))
	if err != nil {
		return uc.GatewaySession{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.publicKey)

	res, err := c.client.Do(req)
	if err != nil {
		return uc.GatewaySession{}, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
		return uc.GatewaySession{}, fmt.Errorf("gateway session call failed status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var out sessionResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return uc.GatewaySession{}, fmt.Errorf("gateway session response decode failed: %w", err)
	}
	if strings.TrimSpace(out.SessionID) == "" || strings.TrimSpace(out.RedirectURL) == "" {
		return uc.GatewaySession{}, fmt.Errorf("gateway session response is incomplete")
	}

	return uc.GatewaySession{
		ID:          out.SessionID,
		RedirectURL: out.RedirectURL,
	}, nil
}
