// internal/domain/order/entity.go
package order

import (
	"errors"
	"strings"
	"time"

	customerdom "barcart/internal/domain/customer"
)

var (
	ErrInvalidOrder = errors.New("order: invalid")
	ErrNotFound     = errors.New("order: not found")
)

// Method identifies which completion path produced the order.
type Method string

const (
	MethodGateway        Method = "gateway"
	MethodMessageHandoff Method = "message_handoff"
)

func (m Method) Valid() bool {
	return m == MethodGateway || m == MethodMessageHandoff
}

// LineSnapshot is a cart line frozen into the recorded order.
type LineSnapshot struct {
	LineID    string  `json:"lineId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
}

// Order is the record written once a handoff has been dispatched.
//
// Reference is the opaque confirmation string shown to the shopper; no parsing
// is performed on it anywhere (gateway session ids land here too).
type Order struct {
	Reference string `json:"reference"`
	SessionID string `json:"sessionId"`
	Method    Method `json:"method"`

	// GatewaySessionID is set on the gateway path only.
	GatewaySessionID *string `json:"gatewaySessionId,omitempty"`

	// Customer is set on the message-handoff path only
	// (the gateway collects contact info itself).
	Customer *customerdom.Info `json:"customer,omitempty"`

	Lines     []LineSnapshot `json:"lines"`
	ItemCount int            `json:"itemCount"`
	Subtotal  float64        `json:"subtotal"`

	CreatedAt time.Time `json:"createdAt"`
}

// New creates a validated order record.
func New(reference, sessionID string, method Method, lines []LineSnapshot, itemCount int, subtotal float64, now time.Time) (Order, error) {
	o := Order{
		Reference: strings.TrimSpace(reference),
		SessionID: strings.TrimSpace(sessionID),
		Method:    method,
		Lines:     lines,
		ItemCount: itemCount,
		Subtotal:  subtotal,
		CreatedAt: now.UTC(),
	}
	if err := o.validate(); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (o *Order) validate() error {
	if o == nil {
		return ErrInvalidOrder
	}
	if o.Reference == "" || o.SessionID == "" {
		return ErrInvalidOrder
	}
	if !o.Method.Valid() {
		return ErrInvalidOrder
	}
	if o.ItemCount <= 0 || o.Subtotal < 0 || len(o.Lines) == 0 {
		return ErrInvalidOrder
	}
	if o.CreatedAt.IsZero() {
		return ErrInvalidOrder
	}
	return nil
}
