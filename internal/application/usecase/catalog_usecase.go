// internal/application/usecase/catalog_usecase.go
package usecase

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	productdom "barcart/internal/domain/product"
)

var (
	ErrCatalogInvalidArgument = errors.New("catalog_usecase: invalid argument")
)

// ImageStore is an outbound port for product image uploads (GCS).
type ImageStore interface {
	// Put stores the image bytes and returns a public URL.
	Put(ctx context.Context, objectName, contentType string, r io.Reader) (string, error)
}

// CatalogUsecase coordinates console-side catalog content management.
// The storefront only reads; mutations come from the console.
type CatalogUsecase struct {
	repo   productdom.Repository
	images ImageStore
	clock  Clock
}

func NewCatalogUsecase(repo productdom.Repository, images ImageStore) *CatalogUsecase {
	return &CatalogUsecase{
		repo:   repo,
		images: images,
		clock:  systemClock{},
	}
}

// NewCatalogUsecaseWithClock is useful for tests.
func NewCatalogUsecaseWithClock(repo productdom.Repository, images ImageStore, clock Clock) *CatalogUsecase {
	if clock == nil {
		clock = systemClock{}
	}
	return &CatalogUsecase{repo: repo, images: images, clock: clock}
}

// Create adds a new catalog product.
func (uc *CatalogUsecase) Create(ctx context.Context, id, name, description string, unitPrice float64, imageTint, priceSubtext string) (productdom.Product, error) {
	p, err := productdom.New(id, name, description, unitPrice, imageTint, priceSubtext, uc.clock.Now())
	if err != nil {
		return productdom.Product{}, err
	}
	if err := uc.repo.Upsert(ctx, p); err != nil {
		return productdom.Product{}, err
	}
	return p, nil
}

// Update applies a partial patch to an existing product.
func (uc *CatalogUsecase) Update(ctx context.Context, id string, patch productdom.Patch) (productdom.Product, error) {
	pid := strings.TrimSpace(id)
	if pid == "" {
		return productdom.Product{}, ErrCatalogInvalidArgument
	}

	p, err := uc.repo.GetByID(ctx, pid)
	if err != nil {
		return productdom.Product{}, err
	}

	if err := p.Apply(patch, uc.clock.Now()); err != nil {
		return productdom.Product{}, err
	}
	if err := uc.repo.Upsert(ctx, p); err != nil {
		return productdom.Product{}, err
	}
	return p, nil
}

// Delete removes a product. Deleting a missing product is a no-op.
func (uc *CatalogUsecase) Delete(ctx context.Context, id string) error {
	pid := strings.TrimSpace(id)
	if pid == "" {
		return ErrCatalogInvalidArgument
	}
	return uc.repo.Delete(ctx, pid)
}

// AttachImage uploads an image and stores its URL on the product.
func (uc *CatalogUsecase) AttachImage(ctx context.Context, id, contentType string, r io.Reader) (productdom.Product, error) {
	pid := strings.TrimSpace(id)
	if pid == "" || r == nil {
		return productdom.Product{}, ErrCatalogInvalidArgument
	}
	if uc.images == nil {
		return productdom.Product{}, errors.New("catalog_usecase: image store is not configured")
	}

	url, err := uc.images.Put(ctx, "products/"+pid, contentType, r)
	if err != nil {
		log.Printf("[catalog_uc] WARN image upload failed id=%s err=%v", pid, err)
		return productdom.Product{}, err
	}

	return uc.Update(ctx, pid, productdom.Patch{ImageURL: &url})
}
