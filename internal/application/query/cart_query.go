// internal/application/query/cart_query.go
package query

import (
	"context"
	"errors"
	"strings"

	cartdom "barcart/internal/domain/cart"
)

// CartDTO is the storefront cart read model.
// Totals are derived on every read, never cached across mutations.
type CartDTO struct {
	SessionID string        `json:"sessionId"`
	Lines     []CartLineDTO `json:"lines"`
	ItemCount int           `json:"itemCount"`
	Subtotal  float64       `json:"subtotal"`
}

type CartLineDTO struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	UnitPrice    float64 `json:"unitPrice"`
	Quantity     int     `json:"quantity"`
	LineTotal    float64 `json:"lineTotal"`
	ImageTint    string  `json:"imageTint"`
	PriceSubtext string  `json:"priceSubtext"`
}

// CartQuery reads the cart through the domain repository.
type CartQuery struct {
	Repo cartdom.Repository
}

func NewCartQuery(repo cartdom.Repository) *CartQuery {
	return &CartQuery{Repo: repo}
}

// GetBySessionID returns the cart DTO. An absent cart maps to an empty DTO
// (stable UX: the storefront always renders a cart).
func (q *CartQuery) GetBySessionID(ctx context.Context, sessionID string) (CartDTO, error) {
	if q == nil || q.Repo == nil {
		return CartDTO{}, errors.New("cart query: repository is nil")
	}

	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return CartDTO{}, errors.New("sessionId is required")
	}

	c, err := q.Repo.GetBySessionID(ctx, sid)
	if err != nil {
		return CartDTO{}, err
	}
	if c == nil {
		return CartDTO{SessionID: sid, Lines: []CartLineDTO{}}, nil
	}

	snap := c.Snapshot()
	dto := CartDTO{
		SessionID: sid,
		Lines:     make([]CartLineDTO, 0, len(snap.Lines)),
		ItemCount: snap.ItemCount,
		Subtotal:  snap.Subtotal,
	}
	for _, ln := range snap.Lines {
		dto.Lines = append(dto.Lines, CartLineDTO{
			ID:           ln.ID,
			Name:         ln.Name,
			UnitPrice:    ln.UnitPrice,
			Quantity:     ln.Quantity,
			LineTotal:    ln.UnitPrice * float64(ln.Quantity),
			ImageTint:    ln.ImageTint,
			PriceSubtext: ln.PriceSubtext,
		})
	}
	return dto, nil
}
