// internal/adapters/in/http/console/router.go
package console

import (
	"log"
	"net/http"
)

// Deps is the operator-facing handler set.
type Deps struct {
	Catalog http.Handler
}

func handleSafe(mux *http.ServeMux, pattern string, h http.Handler, name string) {
	if h == nil {
		log.Printf("[console.router] WARN: nil handler: %s pattern=%s (registering NotFoundHandler)", name, pattern)
		h = http.NotFoundHandler()
	}
	mux.Handle(pattern, h)
}

// Register registers operator-facing routes onto mux.
func Register(mux *http.ServeMux, deps Deps) {
	if mux == nil {
		return
	}

	handleSafe(mux, "/console/products", deps.Catalog, "Catalog")
	handleSafe(mux, "/console/products/", deps.Catalog, "Catalog")
}
