// internal/domain/handoff/formatter.go
package handoff

import (
	"fmt"
	"net/url"
	"strings"

	cartdom "barcart/internal/domain/cart"
	customerdom "barcart/internal/domain/customer"
)

// Messaging destination for the manual-payment handoff.
// The destination id is a build-time constant, not user-configurable at runtime.
const (
	messagingHost      = "https://wa.me"
	defaultDestination = "60123456789"
)

// Message is the rendered order handoff: the human-readable text and the
// deep link that opens the messaging destination pre-populated with it.
type Message struct {
	Text     string `json:"text"`
	DeepLink string `json:"deepLink"`
}

// Format renders cart + validated customer info into a single order message.
//
// Deterministic pure function: the same (snapshot, info) input always produces
// byte-identical output. Formatting cannot fail for a well-formed Info.
//
// Text layout, in order:
//  1. per-line summary: "name ×qty — price" (price = unitPrice*qty, 2 decimals)
//  2. total line
//  3. customer block (name/email/phone/address/notes; notes "None" when absent)
func Format(snap cartdom.Snapshot, info customerdom.Info) Message {
	var b strings.Builder

	for _, ln := range snap.Lines {
		fmt.Fprintf(&b, "%s ×%d — %.2f\n", ln.Name, ln.Quantity, ln.UnitPrice*float64(ln.Quantity))
	}

	fmt.Fprintf(&b, "Total: %.2f\n", snap.Subtotal)

	b.WriteString("\n")
	fmt.Fprintf(&b, "Name: %s\n", info.FullName)
	fmt.Fprintf(&b, "Email: %s\n", info.Email)
	fmt.Fprintf(&b, "Phone: %s\n", info.Phone)
	fmt.Fprintf(&b, "Address: %s\n", info.Address)
	fmt.Fprintf(&b, "Notes: %s", notesOrNone(info.Notes))

	text := b.String()

	return Message{
		Text:     text,
		DeepLink: fmt.Sprintf("%s/%s?text=%s", messagingHost, defaultDestination, percentEncode(text)),
	}
}

func notesOrNone(p *string) string {
	if p == nil {
		return "None"
	}
	s := strings.TrimSpace(*p)
	if s == "" {
		return "None"
	}
	return s
}

// percentEncode matches encodeURIComponent-style escaping for query payloads
// (spaces as %20, not +) so the text round-trips through url.QueryUnescape.
func percentEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
