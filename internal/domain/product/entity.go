// internal/domain/product/entity.go
package product

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidProduct = errors.New("product: invalid")
	ErrNotFound       = errors.New("product: not found")
)

// Product is a catalog entry shown on the storefront.
// The long description is display-only; the storefront read model reformats it.
type Product struct {
	ID           string  `json:"id" firestore:"id"`
	Name         string  `json:"name" firestore:"name"`
	Description  string  `json:"description" firestore:"description"`
	UnitPrice    float64 `json:"unitPrice" firestore:"unitPrice"`
	ImageTint    string  `json:"imageTint" firestore:"imageTint"`
	PriceSubtext string  `json:"priceSubtext" firestore:"priceSubtext"`
	ImageURL     string  `json:"imageUrl" firestore:"imageUrl"`
	Active       bool    `json:"active" firestore:"active"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// New creates a validated product.
func New(id, name, description string, unitPrice float64, imageTint, priceSubtext string, now time.Time) (Product, error) {
	p := Product{
		ID:           strings.TrimSpace(id),
		Name:         strings.TrimSpace(name),
		Description:  strings.TrimSpace(description),
		UnitPrice:    unitPrice,
		ImageTint:    strings.TrimSpace(imageTint),
		PriceSubtext: strings.TrimSpace(priceSubtext),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (p *Product) Validate() error {
	if p == nil {
		return ErrInvalidProduct
	}
	if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.Name) == "" {
		return ErrInvalidProduct
	}
	if p.UnitPrice < 0 {
		return ErrInvalidProduct
	}
	return nil
}

// Patch represents partial updates to Product fields.
// A nil field means "no change".
type Patch struct {
	Name         *string
	Description  *string
	UnitPrice    *float64
	ImageTint    *string
	PriceSubtext *string
	ImageURL     *string
	Active       *bool
}

// Apply applies the patch and refreshes UpdatedAt.
func (p *Product) Apply(patch Patch, now time.Time) error {
	if p == nil {
		return ErrInvalidProduct
	}
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		p.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.UnitPrice != nil {
		p.UnitPrice = *patch.UnitPrice
	}
	if patch.ImageTint != nil {
		p.ImageTint = strings.TrimSpace(*patch.ImageTint)
	}
	if patch.PriceSubtext != nil {
		p.PriceSubtext = strings.TrimSpace(*patch.PriceSubtext)
	}
	if patch.ImageURL != nil {
		p.ImageURL = strings.TrimSpace(*patch.ImageURL)
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
	p.UpdatedAt = now
	return p.Validate()
}
