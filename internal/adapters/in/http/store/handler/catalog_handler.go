// internal/adapters/in/http/store/handler/catalog_handler.go
package storeHandler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	query "barcart/internal/application/query"
	productdom "barcart/internal/domain/product"
)

// CatalogHandler serves the storefront catalog read model.
//
//	GET /store/catalog        -> active products
//	GET /store/catalog/{id}   -> one product (detail view)
type CatalogHandler struct {
	q *query.CatalogQuery
}

func NewCatalogHandler(q *query.CatalogQuery) http.Handler {
	return &CatalogHandler{q: q}
}

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.q == nil {
		writeErr(w, http.StatusInternalServerError, "catalog handler is not configured")
		return
	}
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	path := strings.TrimRight(r.URL.Path, "/")

	// /store/catalog/{id}
	if rest := strings.TrimPrefix(path, "/store/catalog/"); rest != path && rest != "" {
		h.handleGetOne(w, r, rest)
		return
	}

	h.handleList(w, r)
}

func (h *CatalogHandler) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.q.ListActive(r.Context())
	if err != nil {
		log.Printf("[store_catalog_handler] list error err=%v", err)
		writeErr(w, http.StatusInternalServerError, "failed to load catalog")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": items})
}

func (h *CatalogHandler) handleGetOne(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.q.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, productdom.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "product not found")
			return
		}
		log.Printf("[store_catalog_handler] get error id=%q err=%v", id, err)
		writeErr(w, http.StatusInternalServerError, "failed to load product")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
