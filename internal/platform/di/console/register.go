// internal/platform/di/console/register.go
package console

import (
	"net/http"

	consoleRouter "barcart/internal/adapters/in/http/console"
	consoleHandler "barcart/internal/adapters/in/http/console/handler"
)

// Register builds the console handler set and registers it onto mux.
func Register(mux *http.ServeMux, cont *Container) {
	if mux == nil || cont == nil {
		return
	}

	deps := consoleRouter.Deps{
		Catalog: consoleHandler.NewCatalogAdminHandler(cont.CatalogUC, cont.Products),
	}

	consoleRouter.Register(mux, deps)
}
