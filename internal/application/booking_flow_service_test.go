package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sotsvc/service-estimate/internal/domain"
	bookingDomain "github.com/sotsvc/service-estimate/internal/domain/booking"
	"github.com/sotsvc/service-estimate/internal/domain/pricing"
	"github.com/sotsvc/service-estimate/internal/domain/schedule"
	"github.com/sotsvc/service-estimate/internal/events"
	"github.com/sotsvc/service-estimate/internal/payment"
)

// Monday within business hours.
var flowTestNow = time.Date(2026, 8, 24, 10, 0, 0, 0, time.Local)

type fakeDraftRepo struct {
	drafts map[string]*bookingDomain.Draft
}

func newFakeDraftRepo() *fakeDraftRepo {
	return &fakeDraftRepo{drafts: make(map[string]*bookingDomain.Draft)}
}

func (r *fakeDraftRepo) FindBySession(_ context.Context, sessionID string) (*bookingDomain.Draft, error) {
	d, ok := r.drafts[sessionID]
	if !ok {
		return nil, domain.NewNotFoundError("Draft", sessionID)
	}
	return d, nil
}

func (r *fakeDraftRepo) Save(_ context.Context, d *bookingDomain.Draft) error {
	r.drafts[d.SessionID()] = d
	return nil
}

func (r *fakeDraftRepo) Update(_ context.Context, d *bookingDomain.Draft) error {
	if _, ok := r.drafts[d.SessionID()]; !ok {
		return domain.NewNotFoundError("Draft", d.SessionID())
	}
	r.drafts[d.SessionID()] = d
	return nil
}

func (r *fakeDraftRepo) Delete(_ context.Context, sessionID string) error {
	delete(r.drafts, sessionID)
	return nil
}

type fakeProcessor struct {
	charge func(payment.ChargeRequest) (payment.ChargeResult, error)
	calls  int
}

func (p *fakeProcessor) Charge(_ context.Context, req payment.ChargeRequest) (payment.ChargeResult, error) {
	p.calls++
	return p.charge(req)
}

type fakePublisher struct {
	published []events.CloudEvent
}

func (p *fakePublisher) PublishEvent(_ context.Context, _ string, event events.CloudEvent) error {
	p.published = append(p.published, event)
	return nil
}

func (p *fakePublisher) types() []string {
	out := make([]string, len(p.published))
	for i, e := range p.published {
		out[i] = e.Type
	}
	return out
}

func newFlowService(t *testing.T, repo *fakeDraftRepo, proc *fakeProcessor, pub *fakePublisher) *BookingFlowService {
	t.Helper()
	engine, err := pricing.NewEngine(pricing.DefaultRateTable())
	require.NoError(t, err)

	s := NewBookingFlowService(repo, engine, schedule.DefaultWeekSchedule(), proc, pub, zap.NewNop())
	s.now = func() time.Time { return flowTestNow }
	return s
}

func configureRequest() ConfigureDraftRequest {
	return ConfigureDraftRequest{
		ServiceType: "deep-cleaning",
		Sqft:        1000,
		Frequency:   "weekly",
		AddOns:      []string{"windows"},
	}
}

// walkToCheckoutReady drives a fresh draft through configure, quote, and
// slot selection.
func walkToCheckoutReady(t *testing.T, s *BookingFlowService, sessionID string) {
	t.Helper()
	_, err := s.StartDraft(context.Background(), sessionID)
	require.NoError(t, err)
	_, err = s.Configure(context.Background(), sessionID, configureRequest())
	require.NoError(t, err)
	_, err = s.CalculateQuote(context.Background(), sessionID)
	require.NoError(t, err)
	dto, err := s.SelectSlot(context.Background(), sessionID, SelectSlotRequest{Date: "2026-08-25", Time: "09:00"})
	require.NoError(t, err)
	require.True(t, dto.CheckoutReady)
	require.Equal(t, string(bookingDomain.StateCheckoutReady), dto.State)
}

func TestStartDraftIsIdempotentPerSession(t *testing.T) {
	repo := newFakeDraftRepo()
	s := newFlowService(t, repo, &fakeProcessor{}, &fakePublisher{})

	first, err := s.StartDraft(context.Background(), "sess-1")
	require.NoError(t, err)
	second, err := s.StartDraft(context.Background(), "sess-1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestCalculateQuoteAttachesDiscountedTotal(t *testing.T) {
	repo := newFakeDraftRepo()
	s := newFlowService(t, repo, &fakeProcessor{}, &fakePublisher{})

	_, err := s.StartDraft(context.Background(), "sess-1")
	require.NoError(t, err)
	_, err = s.Configure(context.Background(), "sess-1", configureRequest())
	require.NoError(t, err)

	dto, err := s.CalculateQuote(context.Background(), "sess-1")

	require.NoError(t, err)
	require.NotNil(t, dto.Quote)
	// deep-cleaning 1000 sqft weekly: (150 + 1000*0.20) * 0.80 = 280, + 50 windows
	assert.Equal(t, int64(330), dto.Quote.Total)
	assert.Equal(t, string(bookingDomain.StateQuoted), dto.State)
}

func TestCalculateQuoteRequiresConfiguration(t *testing.T) {
	repo := newFakeDraftRepo()
	s := newFlowService(t, repo, &fakeProcessor{}, &fakePublisher{})

	_, err := s.StartDraft(context.Background(), "sess-1")
	require.NoError(t, err)

	_, err = s.CalculateQuote(context.Background(), "sess-1")

	require.Error(t, err)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}

func TestConfigureAfterQuoteInvalidatesIt(t *testing.T) {
	repo := newFakeDraftRepo()
	s := newFlowService(t, repo, &fakeProcessor{}, &fakePublisher{})

	_, err := s.StartDraft(context.Background(), "sess-1")
	require.NoError(t, err)
	_, err = s.Configure(context.Background(), "sess-1", configureRequest())
	require.NoError(t, err)
	_, err = s.CalculateQuote(context.Background(), "sess-1")
	require.NoError(t, err)

	req := configureRequest()
	req.Sqft = 2000
	dto, err := s.Configure(context.Background(), "sess-1", req)

	require.NoError(t, err)
	assert.Nil(t, dto.Quote)
	assert.Equal(t, string(bookingDomain.StateConfiguring), dto.State)
}

func TestCheckoutSucceedsAndClearsDraft(t *testing.T) {
	repo := newFakeDraftRepo()
	proc := &fakeProcessor{charge: func(req payment.ChargeRequest) (payment.ChargeResult, error) {
		return payment.ChargeResult{TransactionID: "pi_123", AmountCharged: req.Amount * 100}, nil
	}}
	pub := &fakePublisher{}
	s := newFlowService(t, repo, proc, pub)
	walkToCheckoutReady(t, s, "sess-1")

	result, err := s.Checkout(context.Background(), "sess-1", CheckoutRequest{PaymentMethodID: "pm_card_visa"})

	require.NoError(t, err)
	assert.Equal(t, "pi_123", result.TransactionID)
	assert.Equal(t, int64(330), result.Amount)
	assert.Equal(t, "2026-08-25", result.ServiceDate)

	_, err = s.GetDraft(context.Background(), "sess-1")
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(err))

	assert.Equal(t, []string{events.BookingCheckoutStarted, events.BookingPaymentSucceeded}, pub.types())
}

func TestCheckoutFailureCountsAttemptAndAllowsRetry(t *testing.T) {
	repo := newFakeDraftRepo()
	proc := &fakeProcessor{charge: func(payment.ChargeRequest) (payment.ChargeResult, error) {
		return payment.ChargeResult{}, domain.NewPaymentError("card declined", true)
	}}
	pub := &fakePublisher{}
	s := newFlowService(t, repo, proc, pub)
	walkToCheckoutReady(t, s, "sess-1")

	_, err := s.Checkout(context.Background(), "sess-1", CheckoutRequest{PaymentMethodID: "pm_card_visa"})

	require.Error(t, err)
	assert.Equal(t, domain.CodePayment, domain.CodeOf(err))
	assert.True(t, domain.IsRetryable(err))

	dto, err := s.GetDraft(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, string(bookingDomain.StateCheckoutReady), dto.State)
	assert.Equal(t, 2, dto.AttemptsRemaining)
	assert.Equal(t, []string{events.BookingCheckoutStarted, events.BookingPaymentFailed}, pub.types())
}

func TestThirdFailureLocksCheckout(t *testing.T) {
	repo := newFakeDraftRepo()
	proc := &fakeProcessor{charge: func(payment.ChargeRequest) (payment.ChargeResult, error) {
		return payment.ChargeResult{}, domain.NewPaymentError("card declined", true)
	}}
	s := newFlowService(t, repo, proc, &fakePublisher{})
	walkToCheckoutReady(t, s, "sess-1")

	for i := 0; i < 2; i++ {
		_, err := s.Checkout(context.Background(), "sess-1", CheckoutRequest{PaymentMethodID: "pm_card_visa"})
		require.Error(t, err)
	}
	_, err := s.Checkout(context.Background(), "sess-1", CheckoutRequest{PaymentMethodID: "pm_card_visa"})
	require.Error(t, err)
	assert.False(t, domain.IsRetryable(err))

	dto, derr := s.GetDraft(context.Background(), "sess-1")
	require.NoError(t, derr)
	assert.Equal(t, 0, dto.AttemptsRemaining)
	assert.NotNil(t, dto.LockedUntil)
}

func TestLockedCheckoutNeverReachesProcessor(t *testing.T) {
	repo := newFakeDraftRepo()
	proc := &fakeProcessor{charge: func(payment.ChargeRequest) (payment.ChargeResult, error) {
		return payment.ChargeResult{}, domain.NewPaymentError("card declined", true)
	}}
	s := newFlowService(t, repo, proc, &fakePublisher{})
	walkToCheckoutReady(t, s, "sess-1")

	for i := 0; i < 3; i++ {
		_, _ = s.Checkout(context.Background(), "sess-1", CheckoutRequest{PaymentMethodID: "pm_card_visa"})
	}
	callsBefore := proc.calls

	_, err := s.Checkout(context.Background(), "sess-1", CheckoutRequest{PaymentMethodID: "pm_card_visa"})

	require.Error(t, err)
	assert.Equal(t, domain.CodePayment, domain.CodeOf(err))
	assert.Equal(t, callsBefore, proc.calls)
}

func TestCheckoutRejectsUnreadyDraft(t *testing.T) {
	repo := newFakeDraftRepo()
	proc := &fakeProcessor{charge: func(payment.ChargeRequest) (payment.ChargeResult, error) {
		t.Fatal("processor must not be called")
		return payment.ChargeResult{}, nil
	}}
	s := newFlowService(t, repo, proc, &fakePublisher{})

	_, err := s.StartDraft(context.Background(), "sess-1")
	require.NoError(t, err)

	_, err = s.Checkout(context.Background(), "sess-1", CheckoutRequest{PaymentMethodID: "pm_card_visa"})

	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidState, domain.CodeOf(err))
}

func TestSelectSlotRejectsClosedDay(t *testing.T) {
	repo := newFakeDraftRepo()
	s := newFlowService(t, repo, &fakeProcessor{}, &fakePublisher{})

	_, err := s.StartDraft(context.Background(), "sess-1")
	require.NoError(t, err)
	_, err = s.Configure(context.Background(), "sess-1", configureRequest())
	require.NoError(t, err)
	_, err = s.CalculateQuote(context.Background(), "sess-1")
	require.NoError(t, err)

	// 2026-08-29 is a Saturday.
	_, err = s.SelectSlot(context.Background(), "sess-1", SelectSlotRequest{Date: "2026-08-29", Time: "09:00"})

	require.Error(t, err)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}

func TestAbandonDiscardsDraft(t *testing.T) {
	repo := newFakeDraftRepo()
	s := newFlowService(t, repo, &fakeProcessor{}, &fakePublisher{})
	walkToCheckoutReady(t, s, "sess-1")

	require.NoError(t, s.Abandon(context.Background(), "sess-1"))

	_, err := s.GetDraft(context.Background(), "sess-1")
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(err))
}
