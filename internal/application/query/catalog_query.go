// internal/application/query/catalog_query.go
package query

import (
	"context"
	"errors"
	"strings"

	productdom "barcart/internal/domain/product"
)

// ProductDTO is the storefront catalog read model.
// DescriptionParagraphs is the reformatted long description (blank-line split).
type ProductDTO struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	DescriptionParagraphs []string `json:"descriptionParagraphs"`
	UnitPrice             float64  `json:"unitPrice"`
	ImageTint             string   `json:"imageTint"`
	PriceSubtext          string   `json:"priceSubtext"`
	ImageURL              string   `json:"imageUrl,omitempty"`
}

// CatalogQuery reads catalog products through the domain repository.
type CatalogQuery struct {
	Repo productdom.Repository
}

func NewCatalogQuery(repo productdom.Repository) *CatalogQuery {
	return &CatalogQuery{Repo: repo}
}

// ListActive returns the storefront catalog.
func (q *CatalogQuery) ListActive(ctx context.Context) ([]ProductDTO, error) {
	if q == nil || q.Repo == nil {
		return nil, errors.New("catalog query: repository is nil")
	}

	products, err := q.Repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		out = append(out, toProductDTO(p))
	}
	return out, nil
}

// GetByID returns a single product for the detail view.
func (q *CatalogQuery) GetByID(ctx context.Context, id string) (ProductDTO, error) {
	if q == nil || q.Repo == nil {
		return ProductDTO{}, errors.New("catalog query: repository is nil")
	}

	pid := strings.TrimSpace(id)
	if pid == "" {
		return ProductDTO{}, errors.New("product id is required")
	}

	p, err := q.Repo.GetByID(ctx, pid)
	if err != nil {
		return ProductDTO{}, err
	}
	return toProductDTO(p), nil
}

func toProductDTO(p productdom.Product) ProductDTO {
	return ProductDTO{
		ID:                    p.ID,
		Name:                  p.Name,
		DescriptionParagraphs: splitParagraphs(p.Description),
		UnitPrice:             p.UnitPrice,
		ImageTint:             p.ImageTint,
		PriceSubtext:          p.PriceSubtext,
		ImageURL:              p.ImageURL,
	}
}

// splitParagraphs reformats a long description into display paragraphs.
func splitParagraphs(s string) []string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "\r\n", "\n")
	if s == "" {
		return []string{}
	}

	parts := strings.Split(s, "\n\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, strings.Join(strings.Fields(p), " "))
	}
	return out
}
