// internal/domain/order/repository_port.go
package order

import "context"

// Repository is a persistence port for completed orders (PostgreSQL).
type Repository interface {
	// Create inserts the record. Reference must be unique.
	Create(ctx context.Context, o Order) error

	// GetByReference returns ErrNotFound when no order carries the reference.
	GetByReference(ctx context.Context, reference string) (Order, error)
}
