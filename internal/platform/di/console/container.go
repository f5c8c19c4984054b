// internal/platform/di/console/container.go
package console

import (
	"context"
	"errors"
	"log"

	outfs "barcart/internal/adapters/out/firestore"
	"barcart/internal/adapters/out/gcs"
	usecase "barcart/internal/application/usecase"
	productdom "barcart/internal/domain/product"

	shared "barcart/internal/platform/di/shared"
)

// Container is the operator console DI container.
type Container struct {
	Infra *shared.Infra

	CatalogUC *usecase.CatalogUsecase
	Products  productdom.Repository
}

// NewContainer wires the console service.
func NewContainer(ctx context.Context, infra *shared.Infra) (*Container, error) {
	if infra == nil || infra.Firestore == nil {
		return nil, errors.New("di.console: infra/firestore is nil")
	}

	cont := &Container{Infra: infra}
	cont.Products = outfs.NewProductRepositoryFS(infra.Firestore)

	var images usecase.ImageStore
	if infra.GCS != nil && infra.ProductImageBucket != "" {
		images = gcs.NewProductImageStore(infra.GCS, infra.ProductImageBucket)
	} else {
		log.Printf("[di.console] image store not configured (uploads will fail)")
	}

	cont.CatalogUC = usecase.NewCatalogUsecase(cont.Products, images)
	return cont, nil
}

func (c *Container) Close() error {
	// infra owns all closable clients
	return nil
}
