// internal/application/usecase/cart_usecase.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	cartdom "barcart/internal/domain/cart"
)

var (
	ErrCartInvalidArgument = errors.New("cart_usecase: invalid argument")
	ErrCartNotFound        = errors.New("cart_usecase: not found")
)

// Clock provides current time (for testability).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// CartUsecase coordinates cart operations for a shopper session.
type CartUsecase struct {
	repo  cartdom.Repository
	clock Clock
}

func NewCartUsecase(repo cartdom.Repository) *CartUsecase {
	return &CartUsecase{
		repo:  repo,
		clock: systemClock{},
	}
}

// NewCartUsecaseWithClock is useful for tests.
func NewCartUsecaseWithClock(repo cartdom.Repository, clock Clock) *CartUsecase {
	if clock == nil {
		clock = systemClock{}
	}
	return &CartUsecase{repo: repo, clock: clock}
}

// Get returns the cart for sessionID.
// If the cart does not exist, returns (nil, ErrCartNotFound).
func (uc *CartUsecase) Get(ctx context.Context, sessionID string) (*cartdom.Cart, error) {
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return nil, ErrCartInvalidArgument
	}

	c, err := uc.repo.GetBySessionID(ctx, sid)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCartNotFound
	}
	return c, nil
}

// Snapshot derives current totals for sessionID.
// An absent cart yields an empty snapshot (itemCount=0, subtotal=0), never an error.
func (uc *CartUsecase) Snapshot(ctx context.Context, sessionID string) (cartdom.Snapshot, error) {
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return cartdom.Snapshot{}, ErrCartInvalidArgument
	}

	c, err := uc.repo.GetBySessionID(ctx, sid)
	if err != nil {
		return cartdom.Snapshot{}, err
	}
	if c == nil {
		return cartdom.Snapshot{Lines: []cartdom.Line{}}, nil
	}
	return c.Snapshot(), nil
}

// AddLine adds a line (or increments qty for an existing line ID).
func (uc *CartUsecase) AddLine(ctx context.Context, sessionID string, ln cartdom.Line) (*cartdom.Cart, error) {
	sid := strings.TrimSpace(sessionID)
	if sid == "" || strings.TrimSpace(ln.ID) == "" || ln.Quantity <= 0 {
		return nil, ErrCartInvalidArgument
	}

	now := uc.clock.Now()

	c, err := uc.repo.GetBySessionID(ctx, sid)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c, err = cartdom.NewCart(sid, nil, now)
		if err != nil {
			return nil, err
		}
	}

	if err := c.Add(ln, now); err != nil {
		return nil, err
	}
	if err := uc.repo.Upsert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SetLineQty sets qty for a line ID. If qty <= 0, it removes the line.
func (uc *CartUsecase) SetLineQty(ctx context.Context, sessionID, lineID string, qty int) (*cartdom.Cart, error) {
	sid := strings.TrimSpace(sessionID)
	lid := strings.TrimSpace(lineID)
	if sid == "" || lid == "" {
		return nil, ErrCartInvalidArgument
	}

	c, err := uc.repo.GetBySessionID(ctx, sid)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCartNotFound
	}

	now := uc.clock.Now()
	if err := c.SetQty(lid, qty, now); err != nil {
		return nil, err
	}
	if err := uc.repo.Upsert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RemoveLine removes lineID from the cart.
func (uc *CartUsecase) RemoveLine(ctx context.Context, sessionID, lineID string) (*cartdom.Cart, error) {
	return uc.SetLineQty(ctx, sessionID, lineID, 0)
}

// Clear empties the cart. Clearing an absent or already-empty cart is a no-op.
func (uc *CartUsecase) Clear(ctx context.Context, sessionID string) error {
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return ErrCartInvalidArgument
	}

	c, err := uc.repo.GetBySessionID(ctx, sid)
	if err != nil {
		return err
	}
	if c == nil {
		return nil
	}

	if err := c.Clear(uc.clock.Now()); err != nil {
		return err
	}
	return uc.repo.Upsert(ctx, c)
}
