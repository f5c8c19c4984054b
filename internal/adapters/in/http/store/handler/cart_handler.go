// internal/adapters/in/http/store/handler/cart_handler.go
package storeHandler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	query "barcart/internal/application/query"
	usecase "barcart/internal/application/usecase"
	cartdom "barcart/internal/domain/cart"
	productdom "barcart/internal/domain/product"
)

// productGetter is the read-only slice of the catalog repository the cart
// needs: line name/price are copied from the product at add time, never
// trusted from the client.
type productGetter interface {
	GetByID(ctx context.Context, id string) (productdom.Product, error)
}

// CartHandler serves the storefront cart endpoints.
//
//	GET    /store/cart        -> cart DTO (absent cart reads as empty)
//	DELETE /store/cart        -> clear
//	POST   /store/cart/items  -> add (merge by product id)
//	PUT    /store/cart/items  -> set qty (0 removes)
//	DELETE /store/cart/items  -> remove
type CartHandler struct {
	uc       *usecase.CartUsecase
	cartQ    *query.CartQuery
	products productGetter
}

func NewCartHandler(uc *usecase.CartUsecase, cartQ *query.CartQuery, products productGetter) http.Handler {
	return &CartHandler{uc: uc, cartQ: cartQ, products: products}
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil || h.cartQ == nil {
		writeErr(w, http.StatusInternalServerError, "cart handler is not configured")
		return
	}

	sid := readSessionID(r)
	if sid == "" {
		writeErr(w, http.StatusBadRequest, "session id is required")
		return
	}

	path := strings.TrimRight(r.URL.Path, "/")
	isItems := strings.HasSuffix(path, "/items")

	switch {
	case r.Method == http.MethodGet && !isItems:
		h.respondCart(w, r, sid)
	case r.Method == http.MethodDelete && !isItems:
		h.handleClear(w, r, sid)
	case r.Method == http.MethodPost && isItems:
		h.handleAdd(w, r, sid)
	case r.Method == http.MethodPut && isItems:
		h.handleSetQty(w, r, sid)
	case r.Method == http.MethodDelete && isItems:
		h.handleRemove(w, r, sid)
	default:
		writeErr(w, http.StatusNotFound, "not found")
	}
}

type cartItemReq struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

func (h *CartHandler) handleAdd(w http.ResponseWriter, r *http.Request, sid string) {
	var req cartItemReq
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	pid := strings.TrimSpace(req.ProductID)
	if pid == "" || req.Qty <= 0 {
		writeErr(w, http.StatusBadRequest, "productId and qty(>=1) are required")
		return
	}
	if h.products == nil {
		writeErr(w, http.StatusInternalServerError, "catalog is not configured")
		return
	}

	p, err := h.products.GetByID(r.Context(), pid)
	if err != nil {
		if errors.Is(err, productdom.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "product not found")
			return
		}
		log.Printf("[store_cart_handler] add product lookup error session=%s productId=%q err=%v", maskSID(sid), pid, err)
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	ln := cartdom.Line{
		ID:           p.ID,
		Name:         p.Name,
		UnitPrice:    p.UnitPrice,
		Quantity:     req.Qty,
		ImageTint:    p.ImageTint,
		PriceSubtext: p.PriceSubtext,
	}

	if _, err := h.uc.AddLine(r.Context(), sid, ln); err != nil {
		h.writeUCErr(w, sid, "add", err)
		return
	}
	h.respondCart(w, r, sid)
}

func (h *CartHandler) handleSetQty(w http.ResponseWriter, r *http.Request, sid string) {
	var req cartItemReq
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	pid := strings.TrimSpace(req.ProductID)
	if pid == "" {
		writeErr(w, http.StatusBadRequest, "productId is required")
		return
	}

	if _, err := h.uc.SetLineQty(r.Context(), sid, pid, req.Qty); err != nil {
		h.writeUCErr(w, sid, "set-qty", err)
		return
	}
	h.respondCart(w, r, sid)
}

func (h *CartHandler) handleRemove(w http.ResponseWriter, r *http.Request, sid string) {
	var req cartItemReq
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	pid := strings.TrimSpace(req.ProductID)
	if pid == "" {
		writeErr(w, http.StatusBadRequest, "productId is required")
		return
	}

	if _, err := h.uc.RemoveLine(r.Context(), sid, pid); err != nil {
		h.writeUCErr(w, sid, "remove", err)
		return
	}
	h.respondCart(w, r, sid)
}

func (h *CartHandler) handleClear(w http.ResponseWriter, r *http.Request, sid string) {
	if err := h.uc.Clear(r.Context(), sid); err != nil {
		h.writeUCErr(w, sid, "clear", err)
		return
	}
	h.respondCart(w, r, sid)
}

func (h *CartHandler) respondCart(w http.ResponseWriter, r *http.Request, sid string) {
	dto, err := h.cartQ.GetBySessionID(r.Context(), sid)
	if err != nil {
		log.Printf("[store_cart_handler] cart query error session=%s err=%v", maskSID(sid), err)
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *CartHandler) writeUCErr(w http.ResponseWriter, sid, op string, err error) {
	log.Printf("[store_cart_handler] %s uc error session=%s err=%v", op, maskSID(sid), err)
	if errors.Is(err, usecase.ErrCartInvalidArgument) || errors.Is(err, cartdom.ErrInvalidCart) {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if errors.Is(err, usecase.ErrCartNotFound) {
		writeErr(w, http.StatusNotFound, err.Error())
		return
	}
	writeErr(w, http.StatusInternalServerError, err.Error())
}
