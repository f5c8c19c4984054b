// internal/adapters/in/http/middleware/session.go
package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
)

// FirebaseAuthClient is an alias so DI code can pass *middleware.FirebaseAuthClient.
type FirebaseAuthClient = fbauth.Client

type ctxKey struct{ name string }

var ctxKeySessionID = ctxKey{name: "sessionId"}

// SessionMiddleware resolves the shopper session id for every request.
//
// Resolution order:
//  1. Authorization: Bearer <Firebase ID token> -> verified uid
//  2. X-Session-Id header (anonymous shopper)
//  3. sessionId query parameter
//
// The id keys the cart document and the checkout engine instance. Firebase
// verification is best-effort: a missing/invalid token falls through to the
// anonymous id rather than rejecting the request, because the storefront
// serves signed-out shoppers too.
type SessionMiddleware struct {
	FirebaseAuth *FirebaseAuthClient
}

func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := m.resolve(r)
		if sid == "" {
			http.Error(w, "session id is required (sign in or send X-Session-Id)", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeySessionID, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *SessionMiddleware) resolve(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if m.FirebaseAuth != nil && strings.HasPrefix(authHeader, "Bearer ") {
		idToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if idToken != "" {
			token, err := m.FirebaseAuth.VerifyIDToken(r.Context(), idToken)
			if err == nil && strings.TrimSpace(token.UID) != "" {
				return strings.TrimSpace(token.UID)
			}
			log.Printf("[session] WARN token verify failed, falling back to anonymous id err=%v", err)
		}
	}

	if v := strings.TrimSpace(r.Header.Get("X-Session-Id")); v != "" {
		return v
	}
	return strings.TrimSpace(r.URL.Query().Get("sessionId"))
}

// SessionID returns the resolved shopper session id, or "".
func SessionID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeySessionID).(string); ok {
		return v
	}
	return ""
}
