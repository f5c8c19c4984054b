// internal/application/usecase/checkout_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	cartdom "barcart/internal/domain/cart"
	customerdom "barcart/internal/domain/customer"
	handoffdom "barcart/internal/domain/handoff"
	orderdom "barcart/internal/domain/order"
)

// GatewaySession is the result of a hosted-checkout session creation.
// ID is opaque; RedirectURL is where the shopper's browser must go.
type GatewaySession struct {
	ID          string
	RedirectURL string
}

// GatewaySessionCreator is an outbound port for the external payment gateway.
// Only the two-call contract is modeled: create a session, then redirect.
type GatewaySessionCreator interface {
	CreateSession(ctx context.Context, lines []cartdom.Line) (GatewaySession, error)
}

// LinkOpener is an outbound port for browsing-context dispatches.
//
// OpenNewContext returns (false, nil) when the new context was blocked; the
// router must then fall back to NavigateCurrent with the identical URL rather
// than failing silently.
type LinkOpener interface {
	OpenNewContext(ctx context.Context, sessionID, url string) (bool, error)
	NavigateCurrent(ctx context.Context, sessionID, url string) error
}

// EmailSender is an outbound port for the best-effort confirmation mail.
type EmailSender interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// ------------------------------------------------------------
// States and events
// ------------------------------------------------------------

// State is the checkout engine's single authoritative state.
type State string

const (
	StateIdle             State = "idle"
	StateEmptyCart        State = "empty_cart"
	StateMethodSelected   State = "method_selected"
	StateAwaitingExternal State = "awaiting_external_confirmation"
	StateCollectingInfo   State = "collecting_customer_info"
	StateCompleted        State = "completed"
	StateFailed           State = "failed"
)

// PaymentMethod is the two-variant payment selection.
// At most one variant is active at a time; the engine state carries it.
type PaymentMethod string

const (
	PaymentGateway        PaymentMethod = "gateway"
	PaymentMessageHandoff PaymentMethod = "message_handoff"
)

func (m PaymentMethod) valid() bool {
	return m == PaymentGateway || m == PaymentMessageHandoff
}

var (
	ErrCheckoutInvalidArgument    = errors.New("checkout: invalid argument")
	ErrCheckoutEmptyCart          = errors.New("checkout: cart is empty")
	ErrCheckoutInvalidTransition  = errors.New("checkout: invalid transition")
	ErrCheckoutGatewayUnavailable = errors.New("checkout: gateway payment is not available")
	ErrCheckoutInFlight           = errors.New("checkout: a gateway session is already being created")
	ErrCheckoutValidationBlocked  = errors.New("checkout: customer info has validation errors")
	ErrCheckoutOpenerMissing      = errors.New("checkout: link opener is not configured")
)

// View is what the transport layer renders back to the shopper after an event.
type View struct {
	State    State            `json:"state"`
	Method   PaymentMethod    `json:"method,omitempty"`
	Snapshot cartdom.Snapshot `json:"snapshot"`

	GatewayAvailable bool `json:"gatewayAvailable"`

	// FieldErrors is current only in the collecting state.
	FieldErrors customerdom.FieldErrors `json:"fieldErrors,omitempty"`

	// Error is a recoverable, user-visible message (gateway retry path).
	Error string `json:"error,omitempty"`

	// Reference is the opaque confirmation string, set once Completed.
	Reference string `json:"reference,omitempty"`

	// Dispatch directives. RedirectURL is a full-page redirect (gateway path);
	// DeepLink targets a new context, falling back to the current one.
	RedirectURL    string `json:"redirectUrl,omitempty"`
	DeepLink       string `json:"deepLink,omitempty"`
	DeepLinkTarget string `json:"deepLinkTarget,omitempty"` // "new" | "current"

	// FailureReason is set only in the terminal Failed state.
	FailureReason string `json:"failureReason,omitempty"`
}

// ------------------------------------------------------------
// Engine
// ------------------------------------------------------------

// checkoutSession is one shopper's engine instance.
// All event handling is serialized on mu (the source ran on a single UI
// event loop; per-session locking is the server-side equivalent).
type checkoutSession struct {
	mu sync.Mutex

	state  State
	method PaymentMethod

	// populated only while collecting customer info
	fieldErrors customerdom.FieldErrors

	// guards duplicate gateway session creation while one is in flight
	gatewayInFlight bool

	reference      string
	deepLink       string
	deepLinkTarget string
	redirectURL    string
	failureReason  string

	// refreshed on every access; expired engines are swept lazily
	expiresAt time.Time
}

// reset returns the engine to Idle for a fresh checkout, dropping the
// confirmation payload and any collected input.
func (s *checkoutSession) reset() {
	s.state = StateIdle
	s.method = ""
	s.fieldErrors = nil
	s.gatewayInFlight = false
	s.reference = ""
	s.deepLink = ""
	s.deepLinkTarget = ""
	s.redirectURL = ""
	s.failureReason = ""
}

// CheckoutUsecase drives the order-submission flow: method selection,
// customer-info validation, the gateway redirect path and the
// message-handoff path, including the blocked-open fallback.
type CheckoutUsecase struct {
	cartUC *CartUsecase
	orders orderdom.Repository
	opener LinkOpener

	// gateway may be nil: the option is then disabled, never a crash.
	gateway        GatewaySessionCreator
	gatewayEnabled bool

	// best-effort confirmation mail (may be nil)
	mailer   EmailSender
	mailFrom string

	newRef func() string
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*checkoutSession
}

func NewCheckoutUsecase(
	cartUC *CartUsecase,
	orders orderdom.Repository,
	opener LinkOpener,
	gateway GatewaySessionCreator,
	gatewayEnabled bool,
	newRef func() string,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		cartUC:         cartUC,
		orders:         orders,
		opener:         opener,
		gateway:        gateway,
		gatewayEnabled: gatewayEnabled,
		newRef:         newRef,
		now:            time.Now,
		sessions:       map[string]*checkoutSession{},
	}
}

// WithMailer attaches the best-effort confirmation mailer.
func (u *CheckoutUsecase) WithMailer(m EmailSender, from string) *CheckoutUsecase {
	u.mailer = m
	u.mailFrom = strings.TrimSpace(from)
	return u
}

// GatewayAvailable reports whether the gateway option is selectable at all.
func (u *CheckoutUsecase) GatewayAvailable() bool {
	return u.gatewayEnabled && u.gateway != nil
}

// checkoutSessionTTL bounds how long an untouched engine stays in memory.
// It matches the cart's own expiry so the engine never outlives the cart.
const checkoutSessionTTL = cartdom.DefaultCartTTL

func (u *CheckoutUsecase) session(sessionID string) *checkoutSession {
	u.mu.Lock()
	defer u.mu.Unlock()

	now := u.now()
	for id, stale := range u.sessions {
		if now.After(stale.expiresAt) {
			delete(u.sessions, id)
		}
	}

	s, ok := u.sessions[sessionID]
	if !ok {
		s = &checkoutSession{state: StateIdle}
		u.sessions[sessionID] = s
	}
	s.expiresAt = now.Add(checkoutSessionTTL)
	return s
}

// ------------------------------------------------------------
// Events
// ------------------------------------------------------------

// View returns the current checkout view for the session.
// An empty cart pre-empts every non-terminal state.
func (u *CheckoutUsecase) View(ctx context.Context, sessionID string) (View, error) {
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return View{}, ErrCheckoutInvalidArgument
	}

	s := u.session(sid)
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := u.cartUC.Snapshot(ctx, sid)
	if err != nil {
		return View{}, err
	}

	u.preemptEmptyCart(s, snap)
	return u.view(s, snap), nil
}

// SelectMethod sets the active payment variant.
// Re-selecting overwrites the prior choice while Idle/MethodSelected.
func (u *CheckoutUsecase) SelectMethod(ctx context.Context, sessionID string, method PaymentMethod) (View, error) {
	sid := strings.TrimSpace(sessionID)
	if sid == "" || !method.valid() {
		return View{}, ErrCheckoutInvalidArgument
	}

	s := u.session(sid)
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := u.cartUC.Snapshot(ctx, sid)
	if err != nil {
		return View{}, err
	}

	if u.preemptEmptyCart(s, snap) {
		return u.view(s, snap), ErrCheckoutEmptyCart
	}

	if s.state != StateIdle && s.state != StateMethodSelected {
		return u.view(s, snap), ErrCheckoutInvalidTransition
	}

	if method == PaymentGateway && !u.GatewayAvailable() {
		return u.view(s, snap), ErrCheckoutGatewayUnavailable
	}

	s.state = StateMethodSelected
	s.method = method
	log.Printf("[checkout_uc] method selected session=%s method=%s", maskID(sid), method)
	return u.view(s, snap), nil
}

// StartCollectingInfo moves the message-handoff path into form collection.
// No remote call is made.
func (u *CheckoutUsecase) StartCollectingInfo(ctx context.Context, sessionID string) (View, error) {
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return View{}, ErrCheckoutInvalidArgument
	}

	s := u.session(sid)
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := u.cartUC.Snapshot(ctx, sid)
	if err != nil {
		return View{}, err
	}
	if u.preemptEmptyCart(s, snap) {
		return u.view(s, snap), ErrCheckoutEmptyCart
	}

	if s.state != StateMethodSelected || s.method != PaymentMessageHandoff {
		return u.view(s, snap), ErrCheckoutInvalidTransition
	}

	s.state = StateCollectingInfo
	s.fieldErrors = customerdom.FieldErrors{}
	return u.view(s, snap), nil
}

// FieldChanged re-validates the form on every field change so the error map
// is always current. It never blocks the flow.
func (u *CheckoutUsecase) FieldChanged(ctx context.Context, sessionID string, raw customerdom.RawInput) (View, error) {
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return View{}, ErrCheckoutInvalidArgument
	}

	s := u.session(sid)
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := u.cartUC.Snapshot(ctx, sid)
	if err != nil {
		return View{}, err
	}
	if u.preemptEmptyCart(s, snap) {
		return u.view(s, snap), ErrCheckoutEmptyCart
	}

	if s.state != StateCollectingInfo {
		return u.view(s, snap), ErrCheckoutInvalidTransition
	}

	_, errsMap := customerdom.Validate(raw)
	if errsMap == nil {
		errsMap = customerdom.FieldErrors{}
	}
	s.fieldErrors = errsMap
	return u.view(s, snap), nil
}

// Cancel leaves form collection (or an unstarted selection) and returns to
// Idle, destroying any collected customer input. From the confirmation view
// it dismisses the completed order and starts a fresh checkout.
func (u *CheckoutUsecase) Cancel(ctx context.Context, sessionID string) (View, error) {
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return View{}, ErrCheckoutInvalidArgument
	}

	s := u.session(sid)
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := u.cartUC.Snapshot(ctx, sid)
	if err != nil {
		return View{}, err
	}

	switch s.state {
	case StateIdle, StateMethodSelected, StateCollectingInfo, StateEmptyCart:
		s.state = StateIdle
		s.method = ""
		s.fieldErrors = nil
		u.preemptEmptyCart(s, snap)
		return u.view(s, snap), nil
	case StateCompleted:
		// leaving the confirmation view starts a fresh checkout
		s.reset()
		u.preemptEmptyCart(s, snap)
		return u.view(s, snap), nil
	default:
		return u.view(s, snap), ErrCheckoutInvalidTransition
	}
}

// StartGatewayPayment creates the hosted-checkout session and dispatches the
// full-page redirect.
//
// While the remote call is in flight the submit affordance is disabled:
// a duplicate start is rejected with ErrCheckoutInFlight. A failed call (or
// a failed redirect dispatch) reports a recoverable error and returns to
// MethodSelected; the selection is never silently dropped and the cart is
// untouched.
func (u *CheckoutUsecase) StartGatewayPayment(ctx context.Context, sessionID string) (View, error) {
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return View{}, ErrCheckoutInvalidArgument
	}

	s := u.session(sid)
	s.mu.Lock()

	snap, err := u.cartUC.Snapshot(ctx, sid)
	if err != nil {
		s.mu.Unlock()
		return View{}, err
	}
	if u.preemptEmptyCart(s, snap) {
		v := u.view(s, snap)
		s.mu.Unlock()
		return v, ErrCheckoutEmptyCart
	}

	if s.gatewayInFlight {
		v := u.view(s, snap)
		s.mu.Unlock()
		return v, ErrCheckoutInFlight
	}
	if s.state != StateMethodSelected || s.method != PaymentGateway {
		v := u.view(s, snap)
		s.mu.Unlock()
		return v, ErrCheckoutInvalidTransition
	}
	if !u.GatewayAvailable() {
		v := u.view(s, snap)
		s.mu.Unlock()
		return v, ErrCheckoutGatewayUnavailable
	}
	if u.opener == nil {
		// malformed wiring is unrecoverable: surface it, no retry offered
		s.state = StateFailed
		s.failureReason = "checkout is misconfigured; please contact support"
		v := u.view(s, snap)
		s.mu.Unlock()
		return v, ErrCheckoutOpenerMissing
	}

	s.state = StateAwaitingExternal
	s.gatewayInFlight = true
	s.mu.Unlock()

	// remote round trip outside the session lock
	gws, gwErr := u.gateway.CreateSession(ctx, snap.Lines)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.gatewayInFlight = false

	if gwErr != nil {
		log.Printf("[checkout_uc] WARN gateway session creation failed session=%s err=%v", maskID(sid), gwErr)
		s.state = StateMethodSelected
		v := u.view(s, snap)
		v.Error = "payment could not be started, please try again"
		return v, fmt.Errorf("checkout: gateway session creation failed: %w", gwErr)
	}

	if err := u.opener.NavigateCurrent(ctx, sid, gws.RedirectURL); err != nil {
		log.Printf("[checkout_uc] WARN gateway redirect dispatch failed session=%s err=%v", maskID(sid), err)
		s.state = StateMethodSelected
		v := u.view(s, snap)
		v.Error = "payment could not be started, please try again"
		return v, fmt.Errorf("checkout: gateway redirect failed: %w", err)
	}

	// handoff dispatched: only now may the cart be cleared
	s.state = StateCompleted
	s.reference = gws.ID
	s.redirectURL = gws.RedirectURL

	u.finishOrder(ctx, sid, s, snap, orderdom.MethodGateway, nil, &gws.ID)

	log.Printf("[checkout_uc] OK gateway redirect dispatched session=%s ref=%s", maskID(sid), maskID(s.reference))
	return u.view(s, snap), nil
}

// SubmitCustomerInfo completes the message-handoff path.
//
// On a valid submit it builds the order payload, formats the message, opens
// the deep link in a new context (falling back to the current context when
// blocked) and then clears the cart exactly once. The order is considered
// handed off the moment the link is dispatched; there is no acknowledgment
// from the messaging channel.
func (u *CheckoutUsecase) SubmitCustomerInfo(ctx context.Context, sessionID string, raw customerdom.RawInput) (View, error) {
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return View{}, ErrCheckoutInvalidArgument
	}

	s := u.session(sid)
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := u.cartUC.Snapshot(ctx, sid)
	if err != nil {
		return View{}, err
	}
	if u.preemptEmptyCart(s, snap) {
		return u.view(s, snap), ErrCheckoutEmptyCart
	}

	if s.state != StateCollectingInfo {
		return u.view(s, snap), ErrCheckoutInvalidTransition
	}

	info, errsMap := customerdom.Validate(raw)
	if len(errsMap) > 0 {
		s.fieldErrors = errsMap
		return u.view(s, snap), ErrCheckoutValidationBlocked
	}
	s.fieldErrors = customerdom.FieldErrors{}

	if u.opener == nil {
		s.state = StateFailed
		s.failureReason = "checkout is misconfigured; please contact support"
		return u.view(s, snap), ErrCheckoutOpenerMissing
	}

	// write-once handoff payload: snapshot + validated info -> message
	msg := handoffdom.Format(snap, *info)

	opened, openErr := u.opener.OpenNewContext(ctx, sid, msg.DeepLink)
	if openErr != nil || !opened {
		// blocked new context: auto-recover by navigating the current
		// context to the identical link, silent from the user's view
		if openErr != nil {
			log.Printf("[checkout_uc] WARN open new context failed session=%s err=%v (falling back)", maskID(sid), openErr)
		}
		if navErr := u.opener.NavigateCurrent(ctx, sid, msg.DeepLink); navErr != nil {
			log.Printf("[checkout_uc] WARN fallback navigation failed session=%s err=%v", maskID(sid), navErr)
			v := u.view(s, snap)
			v.Error = "could not open the messaging app, please try again"
			return v, fmt.Errorf("checkout: deep link dispatch failed: %w", navErr)
		}
		s.deepLinkTarget = "current"
	} else {
		s.deepLinkTarget = "new"
	}

	// dispatched: complete and clear exactly once
	s.state = StateCompleted
	s.method = PaymentMessageHandoff
	s.deepLink = msg.DeepLink
	s.reference = u.newRef()

	u.finishOrder(ctx, sid, s, snap, orderdom.MethodMessageHandoff, info, nil)

	log.Printf("[checkout_uc] OK message handoff dispatched session=%s ref=%s target=%s", maskID(sid), maskID(s.reference), s.deepLinkTarget)
	return u.view(s, snap), nil
}

// ------------------------------------------------------------
// Internals
// ------------------------------------------------------------

// finishOrder clears the cart and records the order. Clearing is
// unconditional once the handoff was dispatched; recording and mail are
// best-effort (the shopper already left for the external surface).
func (u *CheckoutUsecase) finishOrder(
	ctx context.Context,
	sessionID string,
	s *checkoutSession,
	snap cartdom.Snapshot,
	method orderdom.Method,
	info *customerdom.Info,
	gatewaySessionID *string,
) {
	if err := u.cartUC.Clear(ctx, sessionID); err != nil {
		log.Printf("[checkout_uc] WARN cart clear failed session=%s err=%v", maskID(sessionID), err)
	}

	if u.orders != nil {
		lines := make([]orderdom.LineSnapshot, 0, len(snap.Lines))
		for _, ln := range snap.Lines {
			lines = append(lines, orderdom.LineSnapshot{
				LineID:    ln.ID,
				Name:      ln.Name,
				UnitPrice: ln.UnitPrice,
				Quantity:  ln.Quantity,
			})
		}

		o, err := orderdom.New(s.reference, sessionID, method, lines, snap.ItemCount, snap.Subtotal, u.now())
		if err != nil {
			log.Printf("[checkout_uc] WARN order build failed session=%s err=%v", maskID(sessionID), err)
			return
		}
		o.Customer = info
		o.GatewaySessionID = gatewaySessionID

		if err := u.orders.Create(ctx, o); err != nil {
			log.Printf("[checkout_uc] WARN order record failed session=%s ref=%s err=%v", maskID(sessionID), maskID(s.reference), err)
		}
	}

	if u.mailer != nil && info != nil {
		subject := "Your order " + s.reference
		body := "Thanks! Your order has been handed to our team.\n\nReference: " + s.reference
		if err := u.mailer.Send(ctx, u.mailFrom, info.Email, subject, body); err != nil {
			log.Printf("[checkout_uc] WARN confirmation mail failed ref=%s err=%v", maskID(s.reference), err)
		}
	}
}

// preemptEmptyCart forces the EmptyCart display state whenever the snapshot
// is empty and the engine is not terminal. Returns true when pre-empted.
//
// A completed engine keeps showing its confirmation while the cart stays
// empty; the moment the shopper puts something back in the cart it resets to
// Idle so a second order can be placed. Failed stays terminal.
func (u *CheckoutUsecase) preemptEmptyCart(s *checkoutSession, snap cartdom.Snapshot) bool {
	if s.state == StateFailed {
		return false
	}
	if s.state == StateCompleted {
		if snap.ItemCount > 0 {
			s.reset()
		}
		return false
	}

	if snap.ItemCount == 0 {
		s.state = StateEmptyCart
		s.method = ""
		s.fieldErrors = nil
		return true
	}

	// cart refilled: leave the display state
	if s.state == StateEmptyCart {
		s.state = StateIdle
	}
	return false
}

func (u *CheckoutUsecase) view(s *checkoutSession, snap cartdom.Snapshot) View {
	v := View{
		State:            s.state,
		Snapshot:         snap,
		GatewayAvailable: u.GatewayAvailable(),
		FailureReason:    s.failureReason,
	}

	switch s.state {
	case StateMethodSelected, StateAwaitingExternal, StateCollectingInfo, StateCompleted:
		v.Method = s.method
	}

	if s.state == StateCollectingInfo {
		v.FieldErrors = s.fieldErrors
	}

	if s.state == StateCompleted {
		v.Reference = s.reference
		v.RedirectURL = s.redirectURL
		v.DeepLink = s.deepLink
		v.DeepLinkTarget = s.deepLinkTarget
	}

	return v
}

// local mask helper
func maskID(s string) string {
	t := strings.TrimSpace(s)
	if t == "" {
		return ""
	}
	if len(t) <= 10 {
		return t
	}
	return t[:4] + "***" + t[len(t)-4:]
}
