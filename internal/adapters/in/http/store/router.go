// internal/adapters/in/http/store/router.go
package store

import (
	"log"
	"net/http"
)

// Deps is the shopper-facing handler set.
type Deps struct {
	Catalog  http.Handler
	Cart     http.Handler
	Checkout http.Handler
	Order    http.Handler
}

// handleSafe registers pattern with h.
// If h is nil, it logs and registers NotFoundHandler instead (so boot never crashes).
func handleSafe(mux *http.ServeMux, pattern string, h http.Handler, name string) {
	if h == nil {
		log.Printf("[store.router] WARN: nil handler: %s pattern=%s (registering NotFoundHandler)", name, pattern)
		h = http.NotFoundHandler()
	}
	mux.Handle(pattern, h)
}

// Register registers shopper-facing routes onto mux.
func Register(mux *http.ServeMux, deps Deps) {
	if mux == nil {
		return
	}

	// catalog
	handleSafe(mux, "/store/catalog", deps.Catalog, "Catalog")
	handleSafe(mux, "/store/catalog/", deps.Catalog, "Catalog")

	// cart
	handleSafe(mux, "/store/cart", deps.Cart, "Cart")
	handleSafe(mux, "/store/cart/", deps.Cart, "Cart")

	// checkout
	handleSafe(mux, "/store/checkout", deps.Checkout, "Checkout")
	handleSafe(mux, "/store/checkout/", deps.Checkout, "Checkout")

	// orders
	handleSafe(mux, "/store/orders/", deps.Order, "Order")
}
