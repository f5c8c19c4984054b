package httpout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "barcart/internal/domain/cart"
)

func testLines() []cartdom.Line {
	return []cartdom.Line{
		{ID: "mojito", Name: "Mojito", UnitPrice: 31.99, Quantity: 2},
		{ID: "margarita", Name: "Margarita", UnitPrice: 30.99, Quantity: 1},
	}
}

func TestCreateSessionOK(t *testing.T) {
	var gotAuth string
	var gotBody sessionRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sessionResponse{
			SessionID:   "gw-123",
			RedirectURL: "https://pay.example/s/gw-123",
		})
	}))
	defer srv.Close()

	c := NewGatewaySessionClient(srv.URL, "pk_test_123")
	s, err := c.CreateSession(context.Background(), testLines())
	require.NoError(t, err)

	assert.Equal(t, "gw-123", s.ID)
	assert.Equal(t, "https://pay.example/s/gw-123", s.RedirectURL)
	assert.Equal(t, "Bearer pk_test_123", gotAuth)

	require.Len(t, gotBody.Lines, 2)
	assert.Equal(t, "mojito", gotBody.Lines[0].ID)
	assert.Equal(t, 2, gotBody.Lines[0].Quantity)
	assert.InDelta(t, 31.99, gotBody.Lines[0].UnitPrice, 0.001)
}

func TestCreateSessionNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewGatewaySessionClient(srv.URL, "pk_test_123")
	_, err := c.CreateSession(context.Background(), testLines())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=503")
}

func TestCreateSessionIncompleteResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sessionResponse{SessionID: "gw-123"}) // no redirect
	}))
	defer srv.Close()

	c := NewGatewaySessionClient(srv.URL, "pk_test_123")
	_, err := c.CreateSession(context.Background(), testLines())
	assert.Error(t, err)
}

func TestCreateSessionMissingConfig(t *testing.T) {
	_, err := NewGatewaySessionClient("", "pk").CreateSession(context.Background(), testLines())
	assert.Error(t, err)

	_, err = NewGatewaySessionClient("https://x.example", "").CreateSession(context.Background(), testLines())
	assert.Error(t, err)
}
