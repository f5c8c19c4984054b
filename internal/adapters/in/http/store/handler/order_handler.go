// internal/adapters/in/http/store/handler/order_handler.go
package storeHandler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	orderdom "barcart/internal/domain/order"
)

// OrderHandler serves order lookup by confirmation reference.
//
//	GET /store/orders/{reference}
//
// Lookups are scoped to the requesting session; another shopper's reference
// reads as not found.
type OrderHandler struct {
	orders orderdom.Repository
}

func NewOrderHandler(orders orderdom.Repository) http.Handler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.orders == nil {
		writeErr(w, http.StatusInternalServerError, "order handler is not configured")
		return
	}
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sid := readSessionID(r)
	if sid == "" {
		writeErr(w, http.StatusBadRequest, "session id is required")
		return
	}

	path := strings.TrimRight(r.URL.Path, "/")
	ref := ""
	if rest := strings.TrimPrefix(path, "/store/orders/"); rest != path {
		ref = strings.TrimSpace(rest)
	}
	if ref == "" {
		writeErr(w, http.StatusBadRequest, "order reference is required")
		return
	}

	o, err := h.orders.GetByReference(r.Context(), ref)
	if err != nil {
		if errors.Is(err, orderdom.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "order not found")
			return
		}
		log.Printf("[store_order_handler] get error session=%s ref=%s err=%v", maskSID(sid), ref, err)
		writeErr(w, http.StatusInternalServerError, "failed to load order")
		return
	}

	if o.SessionID != sid {
		writeErr(w, http.StatusNotFound, "order not found")
		return
	}

	writeJSON(w, http.StatusOK, o)
}
