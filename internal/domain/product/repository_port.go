// internal/domain/product/repository_port.go
package product

import "context"

// Repository is a persistence port for catalog products.
//
// Storage recommendation (Firestore):
// - collection: products
// - docId: product id
type Repository interface {
	// GetByID returns ErrNotFound when the product does not exist.
	GetByID(ctx context.Context, id string) (Product, error)

	// ListActive returns active products for the storefront, stable order.
	ListActive(ctx context.Context) ([]Product, error)

	// ListAll returns every product for the console, stable order.
	ListAll(ctx context.Context) ([]Product, error)

	// Upsert saves the product (create or update).
	Upsert(ctx context.Context, p Product) error

	// Delete removes the product. Deleting a missing product is a no-op.
	Delete(ctx context.Context, id string) error
}
