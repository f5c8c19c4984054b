// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"sort"
	"strings"
	"time"
)

var (
	ErrInvalidCart = errors.New("cart: invalid")
)

// DefaultCartTTL is the inactivity window after which the cart becomes eligible for auto deletion
// (Firestore TTL should be configured on expiresAt).
const DefaultCartTTL = 7 * 24 * time.Hour

// Line represents "one line item" in a cart.
// Everything except Quantity is immutable once the line is added.
type Line struct {
	ID           string  `json:"id" firestore:"id"`
	Name         string  `json:"name" firestore:"name"`
	UnitPrice    float64 `json:"unitPrice" firestore:"unitPrice"`
	Quantity     int     `json:"quantity" firestore:"quantity"`
	ImageTint    string  `json:"imageTint" firestore:"imageTint"`
	PriceSubtext string  `json:"priceSubtext" firestore:"priceSubtext"`
}

// Snapshot is a derived, always-fresh read of cart totals.
// It is recomputed on every read and never persisted on its own.
type Snapshot struct {
	Lines     []Line  `json:"lines"`
	ItemCount int     `json:"itemCount"`
	Subtotal  float64 `json:"subtotal"`
}

// Cart represents "a cart document".
//   - docId = sessionId (Firestore)
//   - Lines: []Line
//   - ExpiresAt: for Firestore TTL (auto deletion), updated on each cart mutation
type Cart struct {
	// ID is Firestore docId (= sessionId).
	ID string `json:"id" firestore:"id"`

	// Lines is the list of line items. Uniqueness is defined by Line.ID.
	Lines []Line `json:"lines" firestore:"lines"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`

	// ExpiresAt is used for Firestore TTL.
	// This should be set to a future timestamp and refreshed on each update.
	ExpiresAt time.Time `json:"expiresAt" firestore:"expiresAt"`
}

// NewCart creates a new cart doc.
// id is the Firestore docId (sessionId). lines can be nil (treated as empty).
func NewCart(id string, lines []Line, now time.Time) (*Cart, error) {
	docID := strings.TrimSpace(id)

	c := &Cart{
		ID:        docID,
		Lines:     cloneLines(lines),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(DefaultCartTTL),
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Snapshot derives the current totals.
// ItemCount == Σ quantity, Subtotal == Σ unitPrice*quantity; both zero for an empty cart.
func (c *Cart) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{Lines: []Line{}}
	}

	snap := Snapshot{Lines: cloneLines(c.Lines)}
	for _, ln := range snap.Lines {
		snap.ItemCount += ln.Quantity
		snap.Subtotal += ln.UnitPrice * float64(ln.Quantity)
	}
	return snap
}

// Add adds a line or increments quantity if a line with the same ID exists.
// qty must be >= 1. Name/price fields are taken from ln; existing lines keep theirs.
func (c *Cart) Add(ln Line, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}

	id := strings.TrimSpace(ln.ID)
	name := strings.TrimSpace(ln.Name)
	if id == "" || name == "" || ln.Quantity <= 0 || ln.UnitPrice < 0 {
		return ErrInvalidCart
	}

	if c.Lines == nil {
		c.Lines = []Line{}
	}

	idx := findLineIndex(c.Lines, id)
	if idx >= 0 {
		c.Lines[idx].Quantity += ln.Quantity
	} else {
		ln.ID = id
		ln.Name = name
		c.Lines = append(c.Lines, ln)
	}

	c.touch(now)
	return c.validate()
}

// SetQty sets quantity for a line ID.
// If qty <= 0, it removes the line from the cart.
func (c *Cart) SetQty(lineID string, qty int, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}

	id := strings.TrimSpace(lineID)
	if id == "" {
		return ErrInvalidCart
	}

	idx := findLineIndex(c.Lines, id)

	if qty <= 0 {
		if idx >= 0 {
			c.Lines = removeIndex(c.Lines, idx)
		}
		c.touch(now)
		return c.validate()
	}

	if idx < 0 {
		// only quantity is mutable; an unknown line cannot be created here
		return ErrInvalidCart
	}

	c.Lines[idx].Quantity = qty
	c.touch(now)
	return c.validate()
}

// Remove removes a line ID from the cart.
func (c *Cart) Remove(lineID string, now time.Time) error {
	return c.SetQty(lineID, 0, now)
}

// Clear empties all lines. Clearing an empty cart is a no-op, never an error.
func (c *Cart) Clear(now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}

	c.Lines = []Line{}
	c.touch(now)
	return c.validate()
}

func (c *Cart) touch(now time.Time) {
	c.UpdatedAt = now
	c.ExpiresAt = now.Add(DefaultCartTTL)
}

func (c *Cart) validate() error {
	if c == nil {
		return ErrInvalidCart
	}

	if strings.TrimSpace(c.ID) == "" {
		return ErrInvalidCart
	}

	if c.CreatedAt.IsZero() || c.UpdatedAt.IsZero() || c.ExpiresAt.IsZero() {
		return ErrInvalidCart
	}
	if c.UpdatedAt.Before(c.CreatedAt) {
		return ErrInvalidCart
	}
	if c.ExpiresAt.Before(c.UpdatedAt) {
		return ErrInvalidCart
	}

	if len(c.Lines) == 0 {
		return nil
	}

	// normalize + merge duplicates + stable order
	c.Lines = normalizeAndMerge(c.Lines)

	for _, ln := range c.Lines {
		if strings.TrimSpace(ln.ID) == "" || strings.TrimSpace(ln.Name) == "" || ln.Quantity <= 0 || ln.UnitPrice < 0 {
			return ErrInvalidCart
		}
	}

	return nil
}

// ----------------------------
// Helpers
// ----------------------------

func findLineIndex(lines []Line, id string) int {
	for i := range lines {
		if lines[i].ID == id {
			return i
		}
	}
	return -1
}

func removeIndex(lines []Line, idx int) []Line {
	if idx < 0 || idx >= len(lines) {
		return lines
	}
	// preserve order
	return append(lines[:idx], lines[idx+1:]...)
}

func normalizeAndMerge(src []Line) []Line {
	m := map[string]Line{}
	order := []string{}

	for _, ln := range src {
		id := strings.TrimSpace(ln.ID)
		name := strings.TrimSpace(ln.Name)
		if id == "" || name == "" || ln.Quantity <= 0 {
			continue
		}

		if exist, ok := m[id]; ok {
			exist.Quantity += ln.Quantity
			m[id] = exist
		} else {
			ln.ID = id
			ln.Name = name
			m[id] = ln
			order = append(order, id)
		}
	}

	// deterministic order across storage round trips
	sort.Strings(order)

	out := make([]Line, 0, len(order))
	for _, id := range order {
		out = append(out, m[id])
	}
	return out
}

func cloneLines(src []Line) []Line {
	if len(src) == 0 {
		return []Line{}
	}
	cp := make([]Line, len(src))
	copy(cp, src)
	return cp
}
