package handoff

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "barcart/internal/domain/cart"
	customerdom "barcart/internal/domain/customer"
)

func sampleSnapshot() cartdom.Snapshot {
	return cartdom.Snapshot{
		Lines: []cartdom.Line{
			{ID: "margarita", Name: "Margarita", UnitPrice: 30.99, Quantity: 1},
			{ID: "mojito", Name: "Mojito", UnitPrice: 31.99, Quantity: 2},
		},
		ItemCount: 3,
		Subtotal:  94.97,
	}
}

func sampleInfo() customerdom.Info {
	return customerdom.Info{
		FullName:     "Aina Rahman",
		Email:        "aina@example.com",
		Phone:        "+60123456789",
		Address:      "12 Jalan Bukit, Kuala Lumpur",
		TermsConsent: true,
	}
}

func TestFormatText(t *testing.T) {
	msg := Format(sampleSnapshot(), sampleInfo())

	assert.Contains(t, msg.Text, "Margarita ×1 — 30.99\n")
	assert.Contains(t, msg.Text, "Mojito ×2 — 63.98\n")
	assert.Contains(t, msg.Text, "Total: 94.97\n")
	assert.Contains(t, msg.Text, "Name: Aina Rahman\n")
	assert.Contains(t, msg.Text, "Email: aina@example.com\n")
	assert.Contains(t, msg.Text, "Phone: +60123456789\n")
	assert.Contains(t, msg.Text, "Address: 12 Jalan Bukit, Kuala Lumpur\n")
	assert.True(t, strings.HasSuffix(msg.Text, "Notes: None"))

	// blank line between the order summary and the customer block
	assert.Contains(t, msg.Text, "Total: 94.97\n\nName:")
}

func TestFormatNotes(t *testing.T) {
	info := sampleInfo()
	notes := "ring the bell twice"
	info.Notes = &notes

	msg := Format(sampleSnapshot(), info)
	assert.True(t, strings.HasSuffix(msg.Text, "Notes: ring the bell twice"))
}

func TestFormatIsDeterministic(t *testing.T) {
	a := Format(sampleSnapshot(), sampleInfo())
	b := Format(sampleSnapshot(), sampleInfo())

	assert.Equal(t, a.Text, b.Text)
	assert.Equal(t, a.DeepLink, b.DeepLink)
}

func TestDeepLinkRoundTrips(t *testing.T) {
	msg := Format(sampleSnapshot(), sampleInfo())

	require.True(t, strings.HasPrefix(msg.DeepLink, "https://wa.me/60123456789?text="))

	u, err := url.Parse(msg.DeepLink)
	require.NoError(t, err)
	assert.Equal(t, msg.Text, u.Query().Get("text"))
}

func TestDeepLinkEncodesReservedCharacters(t *testing.T) {
	info := sampleInfo()
	info.FullName = "A&B = C?"
	info.Address = "#7, 2nd floor"

	msg := Format(sampleSnapshot(), info)

	encoded := strings.TrimPrefix(msg.DeepLink, "https://wa.me/60123456789?text=")
	assert.NotContains(t, encoded, " ")
	assert.NotContains(t, encoded, "&B")
	assert.NotContains(t, encoded, "#")
	assert.NotContains(t, encoded, "+", "spaces must encode as %20, not +")

	decoded, err := url.QueryUnescape(encoded)
	require.NoError(t, err)
	assert.Equal(t, msg.Text, decoded)
}

func TestFormatEmptyCartStillRendersTotals(t *testing.T) {
	msg := Format(cartdom.Snapshot{Lines: []cartdom.Line{}}, sampleInfo())
	assert.True(t, strings.HasPrefix(msg.Text, "Total: 0.00\n"))
}
