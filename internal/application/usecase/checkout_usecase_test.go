package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "barcart/internal/domain/cart"
	customerdom "barcart/internal/domain/customer"
	orderdom "barcart/internal/domain/order"
)

// ------------------------------------------------------------
// fakes
// ------------------------------------------------------------

type fakeGateway struct {
	session GatewaySession
	err     error
	calls   int

	// optional rendezvous for in-flight tests
	started chan struct{}
	release chan struct{}
}

func (g *fakeGateway) CreateSession(ctx context.Context, lines []cartdom.Line) (GatewaySession, error) {
	g.calls++
	if g.started != nil {
		close(g.started)
	}
	if g.release != nil {
		<-g.release
	}
	if g.err != nil {
		return GatewaySession{}, g.err
	}
	return g.session, nil
}

type openCall struct {
	kind string // "new" | "current"
	url  string
}

type fakeOpener struct {
	mu      sync.Mutex
	blocked bool
	openErr error
	navErr  error
	calls   []openCall
}

func (o *fakeOpener) OpenNewContext(ctx context.Context, sessionID, url string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, openCall{kind: "new", url: url})
	if o.openErr != nil {
		return false, o.openErr
	}
	return !o.blocked, nil
}

func (o *fakeOpener) NavigateCurrent(ctx context.Context, sessionID, url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, openCall{kind: "current", url: url})
	return o.navErr
}

type memOrderRepo struct {
	mu     sync.Mutex
	orders []orderdom.Order
}

func (r *memOrderRepo) Create(ctx context.Context, o orderdom.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, o)
	return nil
}

func (r *memOrderRepo) GetByReference(ctx context.Context, reference string) (orderdom.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.Reference == reference {
			return o, nil
		}
	}
	return orderdom.Order{}, orderdom.ErrNotFound
}

type fakeMailer struct {
	mu    sync.Mutex
	sent  int
	to    string
	fails bool
}

func (m *fakeMailer) Send(ctx context.Context, from, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fails {
		return errors.New("mail down")
	}
	m.sent++
	m.to = to
	return nil
}

// ------------------------------------------------------------
// harness
// ------------------------------------------------------------

type checkoutFixture struct {
	cartRepo *memCartRepo
	orders   *memOrderRepo
	opener   *fakeOpener
	gateway  *fakeGateway
	uc       *CheckoutUsecase
}

func newCheckoutFixture(t *testing.T, gateway *fakeGateway) *checkoutFixture {
	t.Helper()

	f := &checkoutFixture{
		cartRepo: newMemCartRepo(),
		orders:   &memOrderRepo{},
		opener:   &fakeOpener{},
		gateway:  gateway,
	}

	refN := 0
	newRef := func() string {
		refN++
		return fmt.Sprintf("ref-%04d", refN)
	}

	var gw GatewaySessionCreator
	if gateway != nil {
		gw = gateway
	}

	f.uc = NewCheckoutUsecase(
		newTestCartUC(f.cartRepo),
		f.orders,
		f.opener,
		gw,
		gateway != nil,
		newRef,
	)
	return f
}

func (f *checkoutFixture) fillCart(t *testing.T, sid string) {
	t.Helper()
	cartUC := newTestCartUC(f.cartRepo)
	_, err := cartUC.AddLine(context.Background(), sid, mojitoLine(2))
	require.NoError(t, err)
	_, err = cartUC.AddLine(context.Background(), sid, margaritaLine(1))
	require.NoError(t, err)
}

func validRaw() customerdom.RawInput {
	return customerdom.RawInput{
		FullName:     "Aina Rahman",
		Email:        "aina@example.com",
		Phone:        "+60123456789",
		Address:      "12 Jalan Bukit, Kuala Lumpur",
		TermsConsent: true,
	}
}

// ------------------------------------------------------------
// empty-cart pre-emption
// ------------------------------------------------------------

func TestCheckoutEmptyCartPreemptsEverything(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	ctx := context.Background()

	v, err := f.uc.View(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, StateEmptyCart, v.State)

	_, err = f.uc.SelectMethod(ctx, "sess-1", PaymentMessageHandoff)
	assert.ErrorIs(t, err, ErrCheckoutEmptyCart)

	_, err = f.uc.StartCollectingInfo(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrCheckoutEmptyCart)

	_, err = f.uc.SubmitCustomerInfo(ctx, "sess-1", validRaw())
	assert.ErrorIs(t, err, ErrCheckoutEmptyCart)
}

func TestCheckoutEmptyCartMidFlow(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	ctx := context.Background()
	f.fillCart(t, "sess-1")

	_, err := f.uc.SelectMethod(ctx, "sess-1", PaymentMessageHandoff)
	require.NoError(t, err)
	_, err = f.uc.StartCollectingInfo(ctx, "sess-1")
	require.NoError(t, err)

	// cart emptied while the form is open (another tab, TTL, ...)
	require.NoError(t, newTestCartUC(f.cartRepo).Clear(ctx, "sess-1"))

	v, err := f.uc.View(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, StateEmptyCart, v.State)
	assert.Empty(t, v.Method)

	// refilling leaves the display state; the flow restarts from idle
	f.fillCart(t, "sess-1")
	v, err = f.uc.View(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, StateIdle, v.State)
}

// ------------------------------------------------------------
// method selection
// ------------------------------------------------------------

func TestCheckoutSelectMethod(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	ctx := context.Background()
	f.fillCart(t, "sess-1")

	v, err := f.uc.SelectMethod(ctx, "sess-1", PaymentMessageHandoff)
	require.NoError(t, err)
	assert.Equal(t, StateMethodSelected, v.State)
	assert.Equal(t, PaymentMessageHandoff, v.Method)
	assert.False(t, v.GatewayAvailable)

	// gateway not wired: selecting it is rejected, selection unchanged
	_, err = f.uc.SelectMethod(ctx, "sess-1", PaymentGateway)
	assert.ErrorIs(t, err, ErrCheckoutGatewayUnavailable)

	v, err = f.uc.View(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, PaymentMessageHandoff, v.Method)

	// bogus method
	_, err = f.uc.SelectMethod(ctx, "sess-1", PaymentMethod("cash"))
	assert.ErrorIs(t, err, ErrCheckoutInvalidArgument)
}

func TestCheckoutReselectOverwrites(t *testing.T) {
	gw := &fakeGateway{session: GatewaySession{ID: "gw-1", RedirectURL: "https://pay.example/s/gw-1"}}
	f := newCheckoutFixture(t, gw)
	ctx := context.Background()
	f.fillCart(t, "sess-1")

	_, err := f.uc.SelectMethod(ctx, "sess-1", PaymentGateway)
	require.NoError(t, err)

	v, err := f.uc.SelectMethod(ctx, "sess-1", PaymentMessageHandoff)
	require.NoError(t, err)
	assert.Equal(t, PaymentMessageHandoff, v.Method)
}

// ------------------------------------------------------------
// message-handoff path
// ------------------------------------------------------------

func TestCheckoutMessageHandoffHappyPath(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	mailer := &fakeMailer{}
	f.uc.WithMailer(mailer, "orders@barcart.example")
	ctx := context.Background()
	f.fillCart(t, "sess-1")

	_, err := f.uc.SelectMethod(ctx, "sess-1", PaymentMessageHandoff)
	require.NoError(t, err)

	v, err := f.uc.StartCollectingInfo(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, StateCollectingInfo, v.State)
	assert.Empty(t, v.FieldErrors)

	v, err = f.uc.SubmitCustomerInfo(ctx, "sess-1", validRaw())
	require.NoError(t, err)

	assert.Equal(t, StateCompleted, v.State)
	assert.Equal(t, "ref-0001", v.Reference)
	assert.Equal(t, "new", v.DeepLinkTarget)
	assert.Contains(t, v.DeepLink, "https://wa.me/")

	// exactly one open, no fallback
	require.Len(t, f.opener.calls, 1)
	assert.Equal(t, "new", f.opener.calls[0].kind)
	assert.Equal(t, v.DeepLink, f.opener.calls[0].url)

	// cart cleared exactly once, after dispatch
	assert.Equal(t, 1, f.cartRepo.clearCalls)
	snap, err := newTestCartUC(f.cartRepo).Snapshot(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 0, snap.ItemCount)

	// order recorded with the pre-clear snapshot
	require.Len(t, f.orders.orders, 1)
	o := f.orders.orders[0]
	assert.Equal(t, "ref-0001", o.Reference)
	assert.Equal(t, orderdom.MethodMessageHandoff, o.Method)
	assert.Equal(t, 3, o.ItemCount)
	assert.InDelta(t, 94.97, o.Subtotal, 0.001)
	require.NotNil(t, o.Customer)
	assert.Equal(t, "aina@example.com", o.Customer.Email)

	// best-effort confirmation mail
	assert.Equal(t, 1, mailer.sent)
	assert.Equal(t, "aina@example.com", mailer.to)
}

func TestCheckoutBlockedOpenFallsBackToSameURL(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	f.opener.blocked = true
	ctx := context.Background()
	f.fillCart(t, "sess-1")

	_, err := f.uc.SelectMethod(ctx, "sess-1", PaymentMessageHandoff)
	require.NoError(t, err)
	_, err = f.uc.StartCollectingInfo(ctx, "sess-1")
	require.NoError(t, err)

	v, err := f.uc.SubmitCustomerInfo(ctx, "sess-1", validRaw())
	require.NoError(t, err)

	assert.Equal(t, StateCompleted, v.State)
	assert.Equal(t, "current", v.DeepLinkTarget)

	// fallback navigates the identical URL
	require.Len(t, f.opener.calls, 2)
	assert.Equal(t, "new", f.opener.calls[0].kind)
	assert.Equal(t, "current", f.opener.calls[1].kind)
	assert.Equal(t, f.opener.calls[0].url, f.opener.calls[1].url)

	// still cleared exactly once
	assert.Equal(t, 1, f.cartRepo.clearCalls)
}

func TestCheckoutSubmitValidationBlocked(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	ctx := context.Background()
	f.fillCart(t, "sess-1")

	_, err := f.uc.SelectMethod(ctx, "sess-1", PaymentMessageHandoff)
	require.NoError(t, err)
	_, err = f.uc.StartCollectingInfo(ctx, "sess-1")
	require.NoError(t, err)

	raw := validRaw()
	raw.Email = "broken"

	v, err := f.uc.SubmitCustomerInfo(ctx, "sess-1", raw)
	assert.ErrorIs(t, err, ErrCheckoutValidationBlocked)
	assert.Equal(t, StateCollectingInfo, v.State)
	assert.True(t, v.FieldErrors.Has(customerdom.FieldEmail))

	// nothing dispatched, nothing cleared, no order
	assert.Empty(t, f.opener.calls)
	assert.Equal(t, 0, f.cartRepo.clearCalls)
	assert.Empty(t, f.orders.orders)

	// fixing the field and resubmitting succeeds
	v, err = f.uc.SubmitCustomerInfo(ctx, "sess-1", validRaw())
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, v.State)
}

func TestCheckoutFieldChangedRevalidates(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	ctx := context.Background()
	f.fillCart(t, "sess-1")

	_, err := f.uc.SelectMethod(ctx, "sess-1", PaymentMessageHandoff)
	require.NoError(t, err)
	_, err = f.uc.StartCollectingInfo(ctx, "sess-1")
	require.NoError(t, err)

	raw := validRaw()
	raw.Phone = "1"
	v, err := f.uc.FieldChanged(ctx, "sess-1", raw)
	require.NoError(t, err)
	assert.True(t, v.FieldErrors.Has(customerdom.FieldPhone))

	v, err = f.uc.FieldChanged(ctx, "sess-1", validRaw())
	require.NoError(t, err)
	assert.Empty(t, v.FieldErrors)
}

func TestCheckoutCancelDestroysInput(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	ctx := context.Background()
	f.fillCart(t, "sess-1")

	_, err := f.uc.SelectMethod(ctx, "sess-1", PaymentMessageHandoff)
	require.NoError(t, err)
	_, err = f.uc.StartCollectingInfo(ctx, "sess-1")
	require.NoError(t, err)

	raw := validRaw()
	raw.Email = "broken"
	_, err = f.uc.FieldChanged(ctx, "sess-1", raw)
	require.NoError(t, err)

	v, err := f.uc.Cancel(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, StateIdle, v.State)
	assert.Empty(t, v.Method)
	assert.Empty(t, v.FieldErrors)

	// the cart survives cancellation
	snap, err := newTestCartUC(f.cartRepo).Snapshot(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 3, snap.ItemCount)
}

func TestCheckoutSubmitRequiresCollectingState(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	ctx := context.Background()
	f.fillCart(t, "sess-1")

	_, err := f.uc.SubmitCustomerInfo(ctx, "sess-1", validRaw())
	assert.ErrorIs(t, err, ErrCheckoutInvalidTransition)

	_, err = f.uc.StartCollectingInfo(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrCheckoutInvalidTransition)
}

// ------------------------------------------------------------
// gateway path
// ------------------------------------------------------------

func TestCheckoutGatewayHappyPath(t *testing.T) {
	gw := &fakeGateway{session: GatewaySession{ID: "gw-123", RedirectURL: "https://pay.example/s/gw-123"}}
	f := newCheckoutFixture(t, gw)
	ctx := context.Background()
	f.fillCart(t, "sess-1")

	_, err := f.uc.SelectMethod(ctx, "sess-1", PaymentGateway)
	require.NoError(t, err)

	v, err := f.uc.StartGatewayPayment(ctx, "sess-1")
	require.NoError(t, err)

	assert.Equal(t, StateCompleted, v.State)
	assert.Equal(t, "gw-123", v.Reference)
	assert.Equal(t, "https://pay.example/s/gw-123", v.RedirectURL)
	assert.Equal(t, 1, gw.calls)

	// full-page redirect in the current context
	require.Len(t, f.opener.calls, 1)
	assert.Equal(t, "current", f.opener.calls[0].kind)
	assert.Equal(t, "https://pay.example/s/gw-123", f.opener.calls[0].url)

	// cart cleared after the redirect was dispatched
	assert.Equal(t, 1, f.cartRepo.clearCalls)

	// order recorded with the gateway session id
	require.Len(t, f.orders.orders, 1)
	o := f.orders.orders[0]
	assert.Equal(t, orderdom.MethodGateway, o.Method)
	require.NotNil(t, o.GatewaySessionID)
	assert.Equal(t, "gw-123", *o.GatewaySessionID)
	assert.Nil(t, o.Customer)
}

func TestCheckoutGatewayFailureIsRecoverable(t *testing.T) {
	gw := &fakeGateway{err: errors.New("gateway 503")}
	f := newCheckoutFixture(t, gw)
	ctx := context.Background()
	f.fillCart(t, "sess-1")

	_, err := f.uc.SelectMethod(ctx, "sess-1", PaymentGateway)
	require.NoError(t, err)

	v, err := f.uc.StartGatewayPayment(ctx, "sess-1")
	require.Error(t, err)

	// back to selection with a user-visible retry message; cart untouched
	assert.Equal(t, StateMethodSelected, v.State)
	assert.Equal(t, PaymentGateway, v.Method)
	assert.NotEmpty(t, v.Error)
	assert.Equal(t, 0, f.cartRepo.clearCalls)
	assert.Empty(t, f.orders.orders)

	// a retry can succeed
	gw.err = nil
	gw.session = GatewaySession{ID: "gw-2", RedirectURL: "https://pay.example/s/gw-2"}
	v, err = f.uc.StartGatewayPayment(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, v.State)
}

func TestCheckoutGatewayDuplicateStartRejected(t *testing.T) {
	gw := &fakeGateway{
		session: GatewaySession{ID: "gw-1", RedirectURL: "https://pay.example/s/gw-1"},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	f := newCheckoutFixture(t, gw)
	ctx := context.Background()
	f.fillCart(t, "sess-1")

	_, err := f.uc.SelectMethod(ctx, "sess-1", PaymentGateway)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := f.uc.StartGatewayPayment(ctx, "sess-1")
		done <- err
	}()

	<-gw.started

	// second start while the first is in flight
	_, err = f.uc.StartGatewayPayment(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrCheckoutInFlight)

	close(gw.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, gw.calls)
}

func TestCheckoutPayRequiresGatewaySelection(t *testing.T) {
	gw := &fakeGateway{session: GatewaySession{ID: "gw-1", RedirectURL: "https://pay.example/s/gw-1"}}
	f := newCheckoutFixture(t, gw)
	ctx := context.Background()
	f.fillCart(t, "sess-1")

	_, err := f.uc.StartGatewayPayment(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrCheckoutInvalidTransition)

	_, err = f.uc.SelectMethod(ctx, "sess-1", PaymentMessageHandoff)
	require.NoError(t, err)
	_, err = f.uc.StartGatewayPayment(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrCheckoutInvalidTransition)
}

// ------------------------------------------------------------
// life after completion
// ------------------------------------------------------------

func TestCheckoutCompletedSessionCanCheckoutAgain(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	ctx := context.Background()
	f.fillCart(t, "sess-1")

	_, err := f.uc.SelectMethod(ctx, "sess-1", PaymentMessageHandoff)
	require.NoError(t, err)
	_, err = f.uc.StartCollectingInfo(ctx, "sess-1")
	require.NoError(t, err)
	v, err := f.uc.SubmitCustomerInfo(ctx, "sess-1", validRaw())
	require.NoError(t, err)
	require.Equal(t, StateCompleted, v.State)

	// the confirmation stays up while the cart is still empty
	v, err = f.uc.View(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, v.State)
	assert.Equal(t, "ref-0001", v.Reference)

	// refilling the cart starts a fresh checkout
	f.fillCart(t, "sess-1")
	v, err = f.uc.View(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, StateIdle, v.State)
	assert.Empty(t, v.Method)
	assert.Empty(t, v.Reference)
	assert.Empty(t, v.DeepLink)

	// the second order goes all the way through
	_, err = f.uc.SelectMethod(ctx, "sess-1", PaymentMessageHandoff)
	require.NoError(t, err)
	_, err = f.uc.StartCollectingInfo(ctx, "sess-1")
	require.NoError(t, err)
	v, err = f.uc.SubmitCustomerInfo(ctx, "sess-1", validRaw())
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, v.State)
	assert.Equal(t, "ref-0002", v.Reference)

	require.Len(t, f.orders.orders, 2)
	assert.Equal(t, 2, f.cartRepo.clearCalls)
}

func TestCheckoutCancelLeavesConfirmation(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	ctx := context.Background()
	f.fillCart(t, "sess-1")

	_, err := f.uc.SelectMethod(ctx, "sess-1", PaymentMessageHandoff)
	require.NoError(t, err)
	_, err = f.uc.StartCollectingInfo(ctx, "sess-1")
	require.NoError(t, err)
	_, err = f.uc.SubmitCustomerInfo(ctx, "sess-1", validRaw())
	require.NoError(t, err)

	// dismissing the confirmation with the cart still empty
	v, err := f.uc.Cancel(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, StateEmptyCart, v.State)
	assert.Empty(t, v.Reference)

	f.fillCart(t, "sess-1")
	v, err = f.uc.SelectMethod(ctx, "sess-1", PaymentMessageHandoff)
	require.NoError(t, err)
	assert.Equal(t, StateMethodSelected, v.State)
}

func TestCheckoutIdleEnginesAreEvicted(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	ctx := context.Background()

	now := cartTestNow
	f.uc.now = func() time.Time { return now }

	_, err := f.uc.View(ctx, "sess-old")
	require.NoError(t, err)

	f.uc.mu.Lock()
	assert.Len(t, f.uc.sessions, 1)
	f.uc.mu.Unlock()

	// untouched past its TTL: the next access sweeps it out
	now = now.Add(checkoutSessionTTL + time.Hour)
	_, err = f.uc.View(ctx, "sess-new")
	require.NoError(t, err)

	f.uc.mu.Lock()
	defer f.uc.mu.Unlock()
	require.Len(t, f.uc.sessions, 1)
	_, ok := f.uc.sessions["sess-new"]
	assert.True(t, ok)
}

// ------------------------------------------------------------
// isolation
// ------------------------------------------------------------

func TestCheckoutSessionsAreIsolated(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	ctx := context.Background()
	f.fillCart(t, "sess-1")
	f.fillCart(t, "sess-2")

	_, err := f.uc.SelectMethod(ctx, "sess-1", PaymentMessageHandoff)
	require.NoError(t, err)

	v, err := f.uc.View(ctx, "sess-2")
	require.NoError(t, err)
	assert.Equal(t, StateIdle, v.State)
	assert.Empty(t, v.Method)
}
