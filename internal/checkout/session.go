// Package checkout drives the card-payment handshake: register with the
// backend, tokenize and authorize with the gateway, capture with the backend.
// The session's step machine keeps the sequence strict and maps every failure
// back to a recoverable step with a user-facing message.
package checkout

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"storefront-checkout/internal/backend"
	"storefront-checkout/internal/card"
	"storefront-checkout/internal/gateway"
	"storefront-checkout/internal/logcontext"

	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
)

var (
	registerSuccessCounter = metrics.GetOrCreateCounter(`checkout_step_total{step="register",result="success"}`)
	registerFailureCounter = metrics.GetOrCreateCounter(`checkout_step_total{step="register",result="failure"}`)

	tokenizeSuccessCounter = metrics.GetOrCreateCounter(`checkout_step_total{step="tokenize",result="success"}`)
	tokenizeFailureCounter = metrics.GetOrCreateCounter(`checkout_step_total{step="tokenize",result="failure"}`)

	authorizeSuccessCounter = metrics.GetOrCreateCounter(`checkout_step_total{step="authorize",result="success"}`)
	authorizeFailureCounter = metrics.GetOrCreateCounter(`checkout_step_total{step="authorize",result="failure"}`)

	captureSuccessCounter = metrics.GetOrCreateCounter(`checkout_step_total{step="capture",result="success"}`)
	captureFailureCounter = metrics.GetOrCreateCounter(`checkout_step_total{step="capture",result="failure"}`)

	stepDurationHistogram = metrics.GetOrCreateHistogram(`checkout_step_duration_milliseconds`)
)

// Context is the cart snapshot a checkout session is opened with. Immutable
// for the session's lifetime.
type Context struct {
	ProductID   int64
	SellerID    int64
	Quantity    int
	TotalAmount int64
}

// Backend is the slice of the backend client the session needs.
type Backend interface {
	RegisterPayment(ctx context.Context, amount int64) (*backend.RegisteredPayment, error)
	CapturePayment(ctx context.Context, orderID string) error
}

// Gateway is one constructed gateway client, bound to a public key.
type Gateway interface {
	CreateToken(ctx context.Context, c gateway.Card) (string, error)
	ExecutePayment(ctx context.Context, p gateway.Payment) error
}

// GatewayFactory builds a gateway client for the public key the backend
// registered. Construction fails when the key is rejected.
type GatewayFactory func(publicKey string) (Gateway, error)

// Session is one checkout attempt. All state is in memory; closing the
// session discards it. Operations are serialized by a busy flag: a second
// call while one is in flight gets ErrBusy.
type Session struct {
	mu        sync.Mutex
	busy      bool
	closed    bool
	step      Step
	errMsg    string
	order     *backend.RegisteredPayment
	navigated bool

	checkout Context
	backend  Backend
	gateways GatewayFactory
	navigate func(orderID string)
	logger   *slog.Logger
	id       string
}

// NewSession opens a session in the review step. navigate is invoked exactly
// once, with the gateway order id, when the checkout reaches success.
func NewSession(cc Context, b Backend, gf GatewayFactory, navigate func(orderID string), logger *slog.Logger) *Session {
	return &Session{
		step:     StepReview,
		checkout: cc,
		backend:  b,
		gateways: gf,
		navigate: navigate,
		logger:   logger,
		id:       uuid.New().String(),
	}
}

// Step returns the current step.
func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// ErrorMessage returns the message to render inline in the current step,
// empty when the last operation succeeded.
func (s *Session) ErrorMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Order returns the registered gateway session, once the review step has
// completed.
func (s *Session) Order() (backend.RegisteredPayment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.order == nil {
		return backend.RegisteredPayment{}, false
	}
	return *s.order, true
}

// InitializePayment moves review → payment: registers the total with the
// backend and validates the returned public key before anything touches the
// gateway. On any failure the session stays in review with the error
// surfaced.
func (s *Session) InitializePayment(ctx context.Context) error {
	if err := s.begin(StepReview); err != nil {
		return err
	}
	defer s.finish()

	ctx = logcontext.AppendCtx(ctx, slog.String("checkoutId", s.id))
	start := time.Now()
	defer func() { stepDurationHistogram.Update(float64(time.Since(start).Milliseconds())) }()

	s.logger.InfoContext(ctx, "Registering payment", "amount", s.checkout.TotalAmount)

	order, err := s.backend.RegisterPayment(ctx, s.checkout.TotalAmount)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error registering payment", "error", err)
		registerFailureCounter.Inc()
		return s.fail(StepReview, err)
	}

	if err := gateway.ValidatePublicKey(order.PublicKey, "payment initialization"); err != nil {
		s.logger.ErrorContext(ctx, "Rejected public key from register response", "error", err)
		registerFailureCounter.Inc()
		return s.fail(StepReview, err)
	}

	registerSuccessCounter.Inc()
	s.logger.InfoContext(ctx, "Payment registered", "orderId", order.OrderID)

	s.mu.Lock()
	s.order = order
	s.step = StepPayment
	s.mu.Unlock()
	return nil
}

// ExecutePayment moves payment → processing → confirmed: tokenizes the card,
// then authorizes with the token. Both gateway calls must succeed in order.
// On either failure the session returns to payment with the registered order
// intact, so the user can retry card entry without re-registering.
func (s *Session) ExecutePayment(ctx context.Context, in card.Input) error {
	if err := s.begin(StepPayment); err != nil {
		return err
	}
	defer s.finish()

	s.mu.Lock()
	s.step = StepProcessing
	order := *s.order
	s.mu.Unlock()

	ctx = logcontext.AppendCtx(ctx,
		slog.String("checkoutId", s.id),
		slog.String("orderId", order.OrderID),
	)
	start := time.Now()
	defer func() { stepDurationHistogram.Update(float64(time.Since(start).Milliseconds())) }()

	if err := gateway.ValidatePublicKey(order.PublicKey, "payment execution"); err != nil {
		tokenizeFailureCounter.Inc()
		return s.fail(StepPayment, err)
	}

	gw, err := s.gateways(order.PublicKey)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error constructing gateway client", "error", err)
		tokenizeFailureCounter.Inc()
		return s.fail(StepPayment, err)
	}

	norm := card.Normalize(in)
	wire := gateway.Card{
		Number:       card.WireNumber(norm.Number),
		Expire:       card.WireExpire(norm.Expiry),
		HolderName:   norm.HolderName,
		SecurityCode: norm.CVV,
	}

	s.logger.InfoContext(ctx, "Tokenizing card")
	token, err := gw.CreateToken(ctx, wire)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error tokenizing card", "error", err)
		tokenizeFailureCounter.Inc()
		return s.fail(StepPayment, err)
	}
	tokenizeSuccessCounter.Inc()

	s.logger.InfoContext(ctx, "Executing payment")
	err = gw.ExecutePayment(ctx, gateway.Payment{
		ID:       order.OrderID,
		PayType:  "Card",
		AccessID: order.AccessID,
		Token:    token,
		Method:   "1",
		Card:     wire,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Error executing payment", "error", err)
		authorizeFailureCounter.Inc()
		return s.fail(StepPayment, err)
	}
	authorizeSuccessCounter.Inc()

	s.logger.InfoContext(ctx, "Payment authorized")

	s.mu.Lock()
	s.step = StepConfirmed
	s.mu.Unlock()
	return nil
}

// CapturePayment moves confirmed → success: asks the backend to capture the
// authorized payment. A failed capture leaves the session in confirmed so
// capture can be retried. On success the navigation hook fires exactly once.
func (s *Session) CapturePayment(ctx context.Context) error {
	if err := s.begin(StepConfirmed); err != nil {
		return err
	}
	defer s.finish()

	s.mu.Lock()
	order := *s.order
	s.mu.Unlock()

	ctx = logcontext.AppendCtx(ctx,
		slog.String("checkoutId", s.id),
		slog.String("orderId", order.OrderID),
	)
	start := time.Now()
	defer func() { stepDurationHistogram.Update(float64(time.Since(start).Milliseconds())) }()

	s.logger.InfoContext(ctx, "Capturing payment")

	if err := s.backend.CapturePayment(ctx, order.OrderID); err != nil {
		s.logger.ErrorContext(ctx, "Error capturing payment", "error", err)
		captureFailureCounter.Inc()
		return s.fail(StepConfirmed, err)
	}
	captureSuccessCounter.Inc()

	s.logger.InfoContext(ctx, "Payment captured")

	s.mu.Lock()
	s.step = StepSuccess
	var navigate func(string)
	if !s.navigated && s.navigate != nil {
		s.navigated = true
		navigate = s.navigate
	}
	s.mu.Unlock()

	if navigate != nil {
		navigate(order.OrderID)
	}
	return nil
}

// CanClose reports whether the session may still be abandoned. Once success
// is reached the flow must complete; the close affordance disappears.
func (s *Session) CanClose() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.step != StepSuccess
}

// Close abandons the session and discards its in-memory state. No
// compensating request is issued: an authorized-but-uncaptured payment left
// behind is reconciled by the backend, not here.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step == StepSuccess {
		return ErrCompleted
	}
	if s.closed {
		return ErrClosed
	}

	s.closed = true
	s.order = nil
	s.errMsg = ""
	return nil
}

// begin gates an operation: the session must be open, idle, and sitting in
// the operation's predecessor step.
func (s *Session) begin(from Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.busy {
		return ErrBusy
	}
	if s.step != from {
		return ErrInvalidStep
	}

	s.busy = true
	s.errMsg = ""
	return nil
}

func (s *Session) finish() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// fail returns the session to a recoverable step and records the message to
// render there.
func (s *Session) fail(step Step, err error) error {
	s.mu.Lock()
	s.step = step
	s.errMsg = err.Error()
	s.mu.Unlock()
	return err
}
