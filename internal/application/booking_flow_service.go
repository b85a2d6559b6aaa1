package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sotsvc/service-estimate/internal/domain"
	bookingDomain "github.com/sotsvc/service-estimate/internal/domain/booking"
	"github.com/sotsvc/service-estimate/internal/domain/pricing"
	"github.com/sotsvc/service-estimate/internal/domain/schedule"
	"github.com/sotsvc/service-estimate/internal/events"
	"github.com/sotsvc/service-estimate/internal/metrics"
	"github.com/sotsvc/service-estimate/internal/payment"
)

// paymentTimeout bounds one charge attempt end to end. The timer is
// cancelled as soon as the processor answers.
const paymentTimeout = 5 * time.Minute

// eventSource identifies this service in published CloudEvents.
const eventSource = "service-estimate"

// EventPublisher is the outbound event bus boundary. The publisher owns its
// topic; callers supply only the partition key.
type EventPublisher interface {
	PublishEvent(ctx context.Context, key string, event events.CloudEvent) error
}

// ConfigureDraftRequest holds the calculator selections for a draft.
type ConfigureDraftRequest struct {
	ServiceType    string   `json:"service_type" binding:"required"`
	Sqft           int      `json:"sqft" binding:"required"`
	Frequency      string   `json:"frequency" binding:"required"`
	AddOns         []string `json:"add_ons"`
	SpecialDetails string   `json:"special_details"`
}

// SelectSlotRequest holds the calendar selection for a draft.
type SelectSlotRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

// CheckoutRequest holds the payment submission for a checkout-ready draft.
type CheckoutRequest struct {
	PaymentMethodID string `json:"payment_method_id" binding:"required"`
	Email           string `json:"email"`
}

// DraftDTO is the response representation of a booking draft.
type DraftDTO struct {
	ID                uuid.UUID  `json:"id"`
	ServiceType       string     `json:"service_type,omitempty"`
	Sqft              int        `json:"sqft,omitempty"`
	Frequency         string     `json:"frequency,omitempty"`
	AddOns            []string   `json:"add_ons,omitempty"`
	SpecialDetails    string     `json:"special_details,omitempty"`
	Quote             *QuoteDTO  `json:"quote,omitempty"`
	SelectedDate      string     `json:"selected_date,omitempty"`
	SelectedTime      string     `json:"selected_time,omitempty"`
	State             string     `json:"state"`
	CheckoutReady     bool       `json:"checkout_ready"`
	AttemptsRemaining int        `json:"attempts_remaining"`
	LockedUntil       *time.Time `json:"locked_until,omitempty"`
	LastFailure       string     `json:"last_failure,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// CheckoutResultDTO is the response for a settled checkout.
type CheckoutResultDTO struct {
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
	ServiceType   string `json:"service_type"`
	ServiceDate   string `json:"service_date"`
	ServiceTime   string `json:"service_time"`
}

// BookingFlowService orchestrates the calculator -> calendar -> checkout
// flow for one session's draft.
type BookingFlowService struct {
	drafts    bookingDomain.DraftRepository
	engine    *pricing.Engine
	sched     schedule.WeekSchedule
	processor payment.Processor
	producer  EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewBookingFlowService creates a new BookingFlowService.
func NewBookingFlowService(
	drafts bookingDomain.DraftRepository,
	engine *pricing.Engine,
	sched schedule.WeekSchedule,
	processor payment.Processor,
	producer EventPublisher,
	logger *zap.Logger,
) *BookingFlowService {
	return &BookingFlowService{
		drafts:    drafts,
		engine:    engine,
		sched:     sched,
		processor: processor,
		producer:  producer,
		logger:    logger,
		now:       time.Now,
	}
}

// StartDraft returns the session's draft, creating an empty one if the
// session has none yet.
func (s *BookingFlowService) StartDraft(ctx context.Context, sessionID string) (*DraftDTO, error) {
	existing, err := s.drafts.FindBySession(ctx, sessionID)
	if err == nil {
		result := toDraftDTO(existing)
		return &result, nil
	}
	if domain.CodeOf(err) != domain.CodeNotFound {
		return nil, err
	}

	draft, err := bookingDomain.NewDraft(sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}

	result := toDraftDTO(draft)
	return &result, nil
}

// GetDraft retrieves the session's draft.
func (s *BookingFlowService) GetDraft(ctx context.Context, sessionID string) (*DraftDTO, error) {
	draft, err := s.drafts.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	result := toDraftDTO(draft)
	return &result, nil
}

// Configure records the calculator selections on the session's draft. Any
// edit invalidates the current quote.
func (s *BookingFlowService) Configure(ctx context.Context, sessionID string, req ConfigureDraftRequest) (*DraftDTO, error) {
	draft, err := s.drafts.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	serviceType, sqft, frequency, addOns, err := parseQuoteInputs(req.ServiceType, req.Sqft, req.Frequency, req.AddOns)
	if err != nil {
		return nil, err
	}

	if err := draft.Configure(serviceType, sqft, frequency, addOns, req.SpecialDetails); err != nil {
		return nil, err
	}

	if err := s.persist(ctx, draft); err != nil {
		return nil, err
	}

	result := toDraftDTO(draft)
	return &result, nil
}

// CalculateQuote computes and attaches a quote to the session's draft.
func (s *BookingFlowService) CalculateQuote(ctx context.Context, sessionID string) (*DraftDTO, error) {
	draft, err := s.drafts.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !draft.ServiceType().IsValid() || draft.Sqft() <= 0 {
		return nil, domain.NewValidationError("draft is not configured yet")
	}

	quote, err := s.engine.Quote(draft.ServiceType(), draft.Sqft(), draft.Frequency(), draft.AddOns())
	if err != nil {
		return nil, err
	}

	if err := draft.AttachQuote(quote); err != nil {
		return nil, err
	}
	metrics.QuotesComputedTotal.WithLabelValues(string(draft.ServiceType())).Inc()

	if err := s.persist(ctx, draft); err != nil {
		return nil, err
	}

	result := toDraftDTO(draft)
	return &result, nil
}

// SelectSlot records the chosen service date and time slot.
func (s *BookingFlowService) SelectSlot(ctx context.Context, sessionID string, req SelectSlotRequest) (*DraftDTO, error) {
	draft, err := s.drafts.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		return nil, domain.NewValidationError("date must be in YYYY-MM-DD form")
	}

	if err := draft.SelectSlot(date, req.Time, s.now(), s.sched); err != nil {
		return nil, err
	}

	if err := s.persist(ctx, draft); err != nil {
		return nil, err
	}

	result := toDraftDTO(draft)
	return &result, nil
}

// Checkout submits a checkout-ready draft for payment. The draft is
// persisted in submitting before the processor is called, so a crash
// mid-charge leaves an auditable trail. On success the draft is cleared;
// on failure the attempt is counted and the draft returns to
// checkout_ready until the lockout triggers.
func (s *BookingFlowService) Checkout(ctx context.Context, sessionID string, req CheckoutRequest) (*CheckoutResultDTO, error) {
	draft, err := s.drafts.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := draft.BeginSubmission(s.now()); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, draft); err != nil {
		return nil, err
	}

	s.publishCheckoutStarted(ctx, draft)

	chargeCtx, cancel := context.WithTimeout(ctx, paymentTimeout)
	defer cancel()

	result, err := s.processor.Charge(chargeCtx, payment.ChargeRequest{
		Amount:          draft.Quote().Total,
		PaymentMethodID: req.PaymentMethodID,
		Description:     chargeDescription(draft),
		ReceiptEmail:    req.Email,
	})
	if err != nil {
		return nil, s.recordFailure(ctx, draft, err)
	}

	if err := draft.MarkSucceeded(); err != nil {
		return nil, err
	}
	metrics.PaymentSubmissionsTotal.WithLabelValues("succeeded").Inc()
	s.publishPaymentSucceeded(ctx, draft, result)

	// The draft has served its purpose; the next visit starts fresh.
	if err := s.drafts.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("failed to clear draft after successful payment",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}

	return &CheckoutResultDTO{
		TransactionID: result.TransactionID,
		Amount:        draft.Quote().Total,
		ServiceType:   string(draft.ServiceType()),
		ServiceDate:   draft.SelectedDate().Format("2006-01-02"),
		ServiceTime:   draft.SelectedTime(),
	}, nil
}

// Abandon discards the session's draft.
func (s *BookingFlowService) Abandon(ctx context.Context, sessionID string) error {
	return s.drafts.Delete(ctx, sessionID)
}

// --- Helpers ---

// recordFailure counts the failed submission and surfaces the original
// charge error. The persistence failure path only logs: the user-facing
// answer is the payment outcome either way.
func (s *BookingFlowService) recordFailure(ctx context.Context, draft *bookingDomain.Draft, chargeErr error) error {
	metrics.PaymentSubmissionsTotal.WithLabelValues("failed").Inc()

	locked, err := draft.MarkFailed(chargeErr.Error(), s.now())
	if err != nil {
		s.logger.Error("failed to record payment failure", zap.Error(err))
		return chargeErr
	}
	if err := s.persist(ctx, draft); err != nil {
		s.logger.Error("failed to persist payment failure",
			zap.String("session_id", draft.SessionID()),
			zap.Error(err),
		)
	}
	s.publishPaymentFailed(ctx, draft, locked)

	if locked {
		return domain.NewPaymentError("too many failed attempts, please try again in 24 hours", false)
	}
	return chargeErr
}

func (s *BookingFlowService) persist(ctx context.Context, draft *bookingDomain.Draft) error {
	draft.IncrementVersion()
	return s.drafts.Update(ctx, draft)
}

func chargeDescription(d *bookingDomain.Draft) string {
	return fmt.Sprintf("%s cleaning on %s (%s)",
		d.ServiceType(), d.SelectedDate().Format("2006-01-02"), d.SelectedTime())
}

func toDraftDTO(d *bookingDomain.Draft) DraftDTO {
	dto := DraftDTO{
		ID:             d.ID(),
		ServiceType:    string(d.ServiceType()),
		Sqft:           d.Sqft(),
		Frequency:      string(d.Frequency()),
		SpecialDetails: d.SpecialDetails(),
		SelectedTime:   d.SelectedTime(),
		State:          string(d.State()),
		CheckoutReady:  d.IsCheckoutReady(),
		LastFailure:    d.LastFailure(),
		CreatedAt:      d.CreatedAt(),
		UpdatedAt:      d.UpdatedAt(),
	}

	addOns := make([]string, len(d.AddOns()))
	for i, a := range d.AddOns() {
		addOns[i] = string(a)
	}
	dto.AddOns = addOns

	if d.Quote() != nil {
		q := toQuoteDTO(*d.Quote())
		dto.Quote = &q
	}
	if d.SelectedDate() != nil {
		dto.SelectedDate = d.SelectedDate().Format("2006-01-02")
	}

	attempts := d.Attempts()
	remaining := bookingDomain.MaxPaymentAttempts - attempts.Count
	if remaining < 0 {
		remaining = 0
	}
	dto.AttemptsRemaining = remaining
	dto.LockedUntil = attempts.LockoutUntil

	return dto
}

// --- Event publishing ---

func (s *BookingFlowService) publishCheckoutStarted(ctx context.Context, d *bookingDomain.Draft) {
	evt := events.CheckoutStartedEvent{
		DraftID:     d.ID(),
		SessionID:   d.SessionID(),
		ServiceType: string(d.ServiceType()),
		Amount:      d.Quote().Total,
		OccurredAt:  time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingCheckoutStarted, d.ID().String(), evt)
}

func (s *BookingFlowService) publishPaymentSucceeded(ctx context.Context, d *bookingDomain.Draft, result payment.ChargeResult) {
	evt := events.PaymentSucceededEvent{
		DraftID:       d.ID(),
		SessionID:     d.SessionID(),
		ServiceType:   string(d.ServiceType()),
		ServiceDate:   d.SelectedDate().Format("2006-01-02"),
		ServiceTime:   d.SelectedTime(),
		Amount:        d.Quote().Total,
		TransactionID: result.TransactionID,
		OccurredAt:    time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingPaymentSucceeded, d.ID().String(), evt)
}

func (s *BookingFlowService) publishPaymentFailed(ctx context.Context, d *bookingDomain.Draft, locked bool) {
	evt := events.PaymentFailedEvent{
		DraftID:    d.ID(),
		SessionID:  d.SessionID(),
		Reason:     d.LastFailure(),
		Attempt:    d.Attempts().Count,
		LockedOut:  locked,
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingPaymentFailed, d.ID().String(), evt)
}

func (s *BookingFlowService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
	cloudEvent, err := events.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
