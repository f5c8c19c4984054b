// internal/adapters/out/firestore/product_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	productdom "barcart/internal/domain/product"
)

// ProductRepositoryFS implements product.Repository using Firestore.
//
// Collection design:
// - collection: products
// - docId: product id
type ProductRepositoryFS struct {
	Client *firestore.Client
}

func NewProductRepositoryFS(client *firestore.Client) *ProductRepositoryFS {
	return &ProductRepositoryFS{Client: client}
}

func (r *ProductRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("products")
}

func (r *ProductRepositoryFS) GetByID(ctx context.Context, id string) (productdom.Product, error) {
	if r == nil || r.Client == nil {
		return productdom.Product{}, errors.New("product_repository_fs: firestore client is nil")
	}

	pid := strings.TrimSpace(id)
	if pid == "" {
		return productdom.Product{}, errors.New("product_repository_fs: id is empty")
	}

	snap, err := r.col().Doc(pid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return productdom.Product{}, productdom.ErrNotFound
		}
		return productdom.Product{}, err
	}

	var doc productDoc
	if err := snap.DataTo(&doc); err != nil {
		return productdom.Product{}, err
	}

	p := doc.toDomain()
	p.ID = pid
	return p, nil
}

func (r *ProductRepositoryFS) ListActive(ctx context.Context) ([]productdom.Product, error) {
	return r.list(ctx, true)
}

func (r *ProductRepositoryFS) ListAll(ctx context.Context) ([]productdom.Product, error) {
	return r.list(ctx, false)
}

func (r *ProductRepositoryFS) list(ctx context.Context, activeOnly bool) ([]productdom.Product, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("product_repository_fs: firestore client is nil")
	}

	it := r.col().Documents(ctx)
	defer it.Stop()

	out := []productdom.Product{}
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var doc productDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, err
		}

		p := doc.toDomain()
		p.ID = snap.Ref.ID
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}

	// stable order for the storefront grid
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *ProductRepositoryFS) Upsert(ctx context.Context, p productdom.Product) error {
	if r == nil || r.Client == nil {
		return errors.New("product_repository_fs: firestore client is nil")
	}

	pid := strings.TrimSpace(p.ID)
	if pid == "" {
		return errors.New("product_repository_fs: Upsert requires product.ID as docId")
	}

	_, err := r.col().Doc(pid).Set(ctx, productDocFromDomain(p))
	return err
}

// Delete removes the product doc. Deleting a missing doc succeeds (idempotent).
func (r *ProductRepositoryFS) Delete(ctx context.Context, id string) error {
	if r == nil || r.Client == nil {
		return errors.New("product_repository_fs: firestore client is nil")
	}

	pid := strings.TrimSpace(id)
	if pid == "" {
		return errors.New("product_repository_fs: id is empty")
	}

	_, err := r.col().Doc(pid).Delete(ctx)
	return err
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type productDoc struct {
	Name         string    `firestore:"name"`
	Description  string    `firestore:"description"`
	UnitPrice    float64   `firestore:"unitPrice"`
	ImageTint    string    `firestore:"imageTint"`
	PriceSubtext string    `firestore:"priceSubtext"`
	ImageURL     string    `firestore:"imageUrl"`
	Active       bool      `firestore:"active"`
	CreatedAt    time.Time `firestore:"createdAt"`
	UpdatedAt    time.Time `firestore:"updatedAt"`
}

func productDocFromDomain(p productdom.Product) productDoc {
	return productDoc{
		Name:         p.Name,
		Description:  p.Description,
		UnitPrice:    p.UnitPrice,
		ImageTint:    p.ImageTint,
		PriceSubtext: p.PriceSubtext,
		ImageURL:     p.ImageURL,
		Active:       p.Active,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (d productDoc) toDomain() productdom.Product {
	return productdom.Product{
		Name:         d.Name,
		Description:  d.Description,
		UnitPrice:    d.UnitPrice,
		ImageTint:    d.ImageTint,
		PriceSubtext: d.PriceSubtext,
		ImageURL:     d.ImageURL,
		Active:       d.Active,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
