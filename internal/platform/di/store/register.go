// internal/platform/di/store/register.go
package store

import (
	"net/http"

	storeRouter "barcart/internal/adapters/in/http/store"
	storeHandler "barcart/internal/adapters/in/http/store/handler"
)

// Register builds the storefront handler set and registers it onto mux.
func Register(mux *http.ServeMux, cont *Container) {
	if mux == nil || cont == nil {
		return
	}

	deps := storeRouter.Deps{
		Catalog:  storeHandler.NewCatalogHandler(cont.CatalogQuery),
		Cart:     storeHandler.NewCartHandler(cont.CartUC, cont.CartQuery, cont.Products),
		Checkout: storeHandler.NewCheckoutHandler(cont.CheckoutUC, cont.Dispatches),
		Order:    orderHandlerOrNil(cont),
	}

	storeRouter.Register(mux, deps)
}

func orderHandlerOrNil(cont *Container) http.Handler {
	if cont.Orders == nil {
		return nil // router logs and serves 404
	}
	return storeHandler.NewOrderHandler(cont.Orders)
}
