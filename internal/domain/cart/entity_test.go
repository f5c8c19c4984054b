package cart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func mojito(qty int) Line {
	return Line{ID: "mojito", Name: "Mojito", UnitPrice: 31.99, Quantity: qty}
}

func margarita(qty int) Line {
	return Line{ID: "margarita", Name: "Margarita", UnitPrice: 30.99, Quantity: qty}
}

func TestNewCart(t *testing.T) {
	c, err := NewCart("sess-1", nil, testNow)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", c.ID)
	assert.Empty(t, c.Lines)
	assert.Equal(t, testNow.Add(DefaultCartTTL), c.ExpiresAt)

	_, err = NewCart("  ", nil, testNow)
	assert.ErrorIs(t, err, ErrInvalidCart)
}

func TestSnapshotTotals(t *testing.T) {
	c, err := NewCart("sess-1", nil, testNow)
	require.NoError(t, err)

	snap := c.Snapshot()
	assert.Equal(t, 0, snap.ItemCount)
	assert.Equal(t, 0.0, snap.Subtotal)
	assert.NotNil(t, snap.Lines)

	require.NoError(t, c.Add(mojito(2), testNow))
	require.NoError(t, c.Add(margarita(1), testNow))

	snap = c.Snapshot()
	assert.Equal(t, 3, snap.ItemCount)
	assert.InDelta(t, 94.97, snap.Subtotal, 0.001)
	assert.Len(t, snap.Lines, 2)
}

func TestSnapshotIsDerivedFresh(t *testing.T) {
	c, err := NewCart("sess-1", []Line{mojito(1)}, testNow)
	require.NoError(t, err)

	before := c.Snapshot()
	require.NoError(t, c.SetQty("mojito", 5, testNow))
	after := c.Snapshot()

	assert.Equal(t, 1, before.ItemCount)
	assert.Equal(t, 5, after.ItemCount)
	assert.InDelta(t, 5*31.99, after.Subtotal, 0.001)
}

func TestAddMergesByLineID(t *testing.T) {
	c, err := NewCart("sess-1", nil, testNow)
	require.NoError(t, err)

	require.NoError(t, c.Add(mojito(1), testNow))
	require.NoError(t, c.Add(mojito(2), testNow))

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 3, c.Lines[0].Quantity)

	// immutable fields keep the original values on merge
	dup := mojito(1)
	dup.Name = "Not A Mojito"
	dup.UnitPrice = 1.00
	require.NoError(t, c.Add(dup, testNow))
	assert.Equal(t, "Mojito", c.Lines[0].Name)
	assert.Equal(t, 31.99, c.Lines[0].UnitPrice)
	assert.Equal(t, 4, c.Lines[0].Quantity)
}

func TestAddRejectsInvalidLines(t *testing.T) {
	c, err := NewCart("sess-1", nil, testNow)
	require.NoError(t, err)

	tests := []struct {
		name string
		ln   Line
	}{
		{"empty id", Line{Name: "X", UnitPrice: 1, Quantity: 1}},
		{"empty name", Line{ID: "x", UnitPrice: 1, Quantity: 1}},
		{"zero qty", Line{ID: "x", Name: "X", UnitPrice: 1, Quantity: 0}},
		{"negative qty", Line{ID: "x", Name: "X", UnitPrice: 1, Quantity: -1}},
		{"negative price", Line{ID: "x", Name: "X", UnitPrice: -1, Quantity: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, c.Add(tt.ln, testNow), ErrInvalidCart)
		})
	}
	assert.Empty(t, c.Lines)
}

func TestSetQty(t *testing.T) {
	c, err := NewCart("sess-1", []Line{mojito(2), margarita(1)}, testNow)
	require.NoError(t, err)

	require.NoError(t, c.SetQty("mojito", 4, testNow))
	snap := c.Snapshot()
	assert.Equal(t, 5, snap.ItemCount)

	// qty <= 0 removes the line
	require.NoError(t, c.SetQty("mojito", 0, testNow))
	require.Len(t, c.Lines, 1)
	assert.Equal(t, "margarita", c.Lines[0].ID)

	// only quantity is mutable; unknown lines cannot appear here
	assert.ErrorIs(t, c.SetQty("mojito", 1, testNow), ErrInvalidCart)
}

func TestRemoveAndClear(t *testing.T) {
	c, err := NewCart("sess-1", []Line{mojito(2), margarita(1)}, testNow)
	require.NoError(t, err)

	require.NoError(t, c.Remove("margarita", testNow))
	require.Len(t, c.Lines, 1)

	// removing an absent line is a no-op
	require.NoError(t, c.Remove("margarita", testNow))

	require.NoError(t, c.Clear(testNow))
	assert.Empty(t, c.Lines)

	// clearing an empty cart is a no-op, never an error
	require.NoError(t, c.Clear(testNow))
	assert.Empty(t, c.Lines)
}

func TestMutationRefreshesTTL(t *testing.T) {
	c, err := NewCart("sess-1", nil, testNow)
	require.NoError(t, err)

	later := testNow.Add(time.Hour)
	require.NoError(t, c.Add(mojito(1), later))
	assert.Equal(t, later, c.UpdatedAt)
	assert.Equal(t, later.Add(DefaultCartTTL), c.ExpiresAt)
}

func TestNewCartMergesDuplicatesDeterministically(t *testing.T) {
	lines := []Line{margarita(1), mojito(1), mojito(2)}
	c, err := NewCart("sess-1", lines, testNow)
	require.NoError(t, err)

	require.Len(t, c.Lines, 2)
	// stable order by line ID across storage round trips
	assert.Equal(t, "margarita", c.Lines[0].ID)
	assert.Equal(t, "mojito", c.Lines[1].ID)
	assert.Equal(t, 3, c.Lines[1].Quantity)
}
