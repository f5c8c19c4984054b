// internal/adapters/out/firestore/cart_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	cartdom "barcart/internal/domain/cart"
)

// CartRepositoryFS implements cart.Repository using Firestore.
//
// Collection design:
// - collection: carts
// - docId: sessionId (docId is the source of truth)
// - fields: lines(array), createdAt, updatedAt, expiresAt
//
// TTL:
// - Configure Firestore TTL on "expiresAt".
type CartRepositoryFS struct {
	Client *firestore.Client
}

func NewCartRepositoryFS(client *firestore.Client) *CartRepositoryFS {
	return &CartRepositoryFS{Client: client}
}

func (r *CartRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("carts")
}

// GetBySessionID returns (nil, nil) if not found (nil policy).
func (r *CartRepositoryFS) GetBySessionID(ctx context.Context, sessionID string) (*cartdom.Cart, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("cart_repository_fs: firestore client is nil")
	}

	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return nil, errors.New("cart_repository_fs: sessionID is empty")
	}

	snap, err := r.col().Doc(sid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc cartDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}

	d := doc.toDomain()
	// docId is the source of truth even if the doc carries no id field
	d.ID = sid
	return d, nil
}

// Upsert saves the cart by docId=cart.ID (= sessionId).
func (r *CartRepositoryFS) Upsert(ctx context.Context, c *cartdom.Cart) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}
	if c == nil {
		return errors.New("cart_repository_fs: cart is nil")
	}

	sid := strings.TrimSpace(c.ID)
	if sid == "" {
		return errors.New("cart_repository_fs: Upsert requires cart.ID (= sessionId) as docId")
	}

	// Overwrite full doc (simple & predictable).
	_, err := r.col().Doc(sid).Set(ctx, cartDocFromDomain(c))
	return err
}

func (r *CartRepositoryFS) DeleteBySessionID(ctx context.Context, sessionID string) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}

	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return errors.New("cart_repository_fs: sessionID is empty")
	}

	_, err := r.col().Doc(sid).Delete(ctx)
	return err
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type cartDoc struct {
	Lines     []cartLineDoc `firestore:"lines"`
	CreatedAt time.Time     `firestore:"createdAt"`
	UpdatedAt time.Time     `firestore:"updatedAt"`
	ExpiresAt time.Time     `firestore:"expiresAt"`
}

type cartLineDoc struct {
	ID           string  `firestore:"id"`
	Name         string  `firestore:"name"`
	UnitPrice    float64 `firestore:"unitPrice"`
	Quantity     int     `firestore:"quantity"`
	ImageTint    string  `firestore:"imageTint"`
	PriceSubtext string  `firestore:"priceSubtext"`
}

func cartDocFromDomain(c *cartdom.Cart) cartDoc {
	lines := make([]cartLineDoc, 0, len(c.Lines))
	for _, ln := range c.Lines {
		id := strings.TrimSpace(ln.ID)
		if id == "" || ln.Quantity <= 0 {
			continue
		}
		lines = append(lines, cartLineDoc{
			ID:           id,
			Name:         strings.TrimSpace(ln.Name),
			UnitPrice:    ln.UnitPrice,
			Quantity:     ln.Quantity,
			ImageTint:    strings.TrimSpace(ln.ImageTint),
			PriceSubtext: strings.TrimSpace(ln.PriceSubtext),
		})
	}

	return cartDoc{
		Lines:     lines,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		ExpiresAt: c.ExpiresAt,
	}
}

func (d cartDoc) toDomain() *cartdom.Cart {
	lines := make([]cartdom.Line, 0, len(d.Lines))
	for _, ln := range d.Lines {
		id := strings.TrimSpace(ln.ID)
		if id == "" || ln.Quantity <= 0 {
			continue
		}
		lines = append(lines, cartdom.Line{
			ID:           id,
			Name:         strings.TrimSpace(ln.Name),
			UnitPrice:    ln.UnitPrice,
			Quantity:     ln.Quantity,
			ImageTint:    strings.TrimSpace(ln.ImageTint),
			PriceSubtext: strings.TrimSpace(ln.PriceSubtext),
		})
	}

	return &cartdom.Cart{
		// ID is filled by the caller (docId)
		Lines:     lines,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		ExpiresAt: d.ExpiresAt,
	}
}
