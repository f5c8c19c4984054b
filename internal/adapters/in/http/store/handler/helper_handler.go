// internal/adapters/in/http/store/handler/helper_handler.go
package storeHandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"barcart/internal/adapters/in/http/middleware"
)

// ============================================================
// HTTP helpers
// ============================================================

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func readJSON(r *http.Request, dst any) error {
	if dst == nil {
		return errors.New("dst is nil")
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)) // 1MB
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// readSessionID prefers the middleware-resolved id, then the header/query.
func readSessionID(r *http.Request) string {
	if v := middleware.SessionID(r.Context()); v != "" {
		return v
	}
	if v := strings.TrimSpace(r.Header.Get("X-Session-Id")); v != "" {
		return v
	}
	return strings.TrimSpace(r.URL.Query().Get("sessionId"))
}

// maskSID keeps session ids out of logs.
func maskSID(sid string) string {
	sid = strings.TrimSpace(sid)
	if sid == "" {
		return ""
	}
	if len(sid) <= 6 {
		return "***"
	}
	return "***" + sid[len(sid)-6:]
}
