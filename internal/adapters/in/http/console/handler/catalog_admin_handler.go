// internal/adapters/in/http/console/handler/catalog_admin_handler.go
package consoleHandler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	usecase "barcart/internal/application/usecase"
	productdom "barcart/internal/domain/product"
)

// productLister is the read slice of the catalog repository the console needs.
type productLister interface {
	ListAll(ctx context.Context) ([]productdom.Product, error)
	GetByID(ctx context.Context, id string) (productdom.Product, error)
}

// CatalogAdminHandler serves catalog management for operators.
//
//	GET    /console/products              -> all products (inactive included)
//	POST   /console/products              -> create
//	GET    /console/products/{id}         -> one product
//	PATCH  /console/products/{id}         -> partial update
//	DELETE /console/products/{id}         -> delete (idempotent)
//	POST   /console/products/{id}/image   -> upload product image
type CatalogAdminHandler struct {
	uc       *usecase.CatalogUsecase
	products productLister
}

func NewCatalogAdminHandler(uc *usecase.CatalogUsecase, products productLister) http.Handler {
	return &CatalogAdminHandler{uc: uc, products: products}
}

func (h *CatalogAdminHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil || h.products == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "catalog admin handler is not configured"})
		return
	}

	path := strings.TrimRight(r.URL.Path, "/")

	rest := strings.TrimPrefix(path, "/console/products")
	rest = strings.TrimPrefix(rest, "/")

	switch {
	case rest == "" && r.Method == http.MethodGet:
		h.handleList(w, r)
	case rest == "" && r.Method == http.MethodPost:
		h.handleCreate(w, r)
	case strings.HasSuffix(rest, "/image") && r.Method == http.MethodPost:
		h.handleUploadImage(w, r, strings.TrimSuffix(rest, "/image"))
	case rest != "" && r.Method == http.MethodGet:
		h.handleGet(w, r, rest)
	case rest != "" && r.Method == http.MethodPatch:
		h.handlePatch(w, r, rest)
	case rest != "" && r.Method == http.MethodDelete:
		h.handleDelete(w, r, rest)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

// ------------------------------------------------------------
// endpoints
// ------------------------------------------------------------

type createProductReq struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	UnitPrice    float64 `json:"unitPrice"`
	ImageTint    string  `json:"imageTint"`
	PriceSubtext string  `json:"priceSubtext"`
}

type patchProductReq struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	UnitPrice    *float64 `json:"unitPrice"`
	ImageTint    *string  `json:"imageTint"`
	PriceSubtext *string  `json:"priceSubtext"`
	Active       *bool    `json:"active"`
}

func (h *CatalogAdminHandler) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.products.ListAll(r.Context())
	if err != nil {
		log.Printf("[console_catalog_handler] list error err=%v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load products"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": items})
}

func (h *CatalogAdminHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createProductReq
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return
	}

	p, err := h.uc.Create(r.Context(), req.ID, req.Name, req.Description, req.UnitPrice, req.ImageTint, req.PriceSubtext)
	if err != nil {
		h.writeUCErr(w, "create", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *CatalogAdminHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		h.writeUCErr(w, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogAdminHandler) handlePatch(w http.ResponseWriter, r *http.Request, id string) {
	var req patchProductReq
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return
	}

	patch := productdom.Patch{
		Name:         req.Name,
		Description:  req.Description,
		UnitPrice:    req.UnitPrice,
		ImageTint:    req.ImageTint,
		PriceSubtext: req.PriceSubtext,
		Active:       req.Active,
	}

	p, err := h.uc.Update(r.Context(), id, patch)
	if err != nil {
		h.writeUCErr(w, "patch", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogAdminHandler) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.uc.Delete(r.Context(), id); err != nil {
		h.writeUCErr(w, "delete", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// handleUploadImage accepts multipart/form-data with a "file" part.
func (h *CatalogAdminHandler) handleUploadImage(w http.ResponseWriter, r *http.Request, id string) {
	if err := r.ParseMultipartForm(8 << 20); err != nil { // 8MB
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart body"})
		return
	}

	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file part is required"})
		return
	}
	defer f.Close()

	contentType := hdr.Header.Get("Content-Type")

	p, err := h.uc.AttachImage(r.Context(), id, contentType, f)
	if err != nil {
		h.writeUCErr(w, "upload-image", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogAdminHandler) writeUCErr(w http.ResponseWriter, op string, err error) {
	log.Printf("[console_catalog_handler] %s error err=%v", op, err)
	switch {
	case errors.Is(err, productdom.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
	case errors.Is(err, productdom.ErrInvalidProduct):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

// ------------------------------------------------------------
// helpers
// ------------------------------------------------------------

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, dst any) error {
	if dst == nil {
		return errors.New("dst is nil")
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)) // 1MB
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
