package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/sotsvc/service-estimate/internal/domain"
	"github.com/sotsvc/service-estimate/internal/domain/pricing"
	"github.com/sotsvc/service-estimate/internal/domain/schedule"
)

// Draft is the aggregate for one in-progress booking attempt. It is owned by
// a single session: fields are filled incrementally as the user walks the
// calculator -> calendar -> checkout flow, and the attached quote is
// invalidated whenever the configuration changes. A draft that is not
// checkout-ready must never reach the payment adapter.
type Draft struct {
	id             uuid.UUID
	sessionID      string
	serviceType    pricing.ServiceType
	sqft           int
	frequency      pricing.Frequency
	addOns         []pricing.AddOn
	specialDetails string
	quote          *pricing.Quote
	selectedDate   *time.Time
	selectedTime   string
	state          FlowState
	attempts       PaymentAttempt
	lastFailure    string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewDraft creates an empty draft in the configuring state for a session.
func NewDraft(sessionID string) (*Draft, error) {
	if sessionID == "" {
		return nil, domain.NewValidationError("session ID is required")
	}
	now := time.Now().UTC()
	return &Draft{
		id:        uuid.New(),
		sessionID: sessionID,
		state:     StateConfiguring,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructDraft rebuilds a Draft from persistence data (no validation).
func ReconstructDraft(
	id uuid.UUID,
	sessionID string,
	serviceType pricing.ServiceType,
	sqft int,
	frequency pricing.Frequency,
	addOns []pricing.AddOn,
	specialDetails string,
	quote *pricing.Quote,
	selectedDate *time.Time,
	selectedTime string,
	state FlowState,
	attempts PaymentAttempt,
	lastFailure string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Draft {
	return &Draft{
		id:             id,
		sessionID:      sessionID,
		serviceType:    serviceType,
		sqft:           sqft,
		frequency:      frequency,
		addOns:         addOns,
		specialDetails: specialDetails,
		quote:          quote,
		selectedDate:   selectedDate,
		selectedTime:   selectedTime,
		state:          state,
		attempts:       attempts,
		lastFailure:    lastFailure,
		version:        version,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// --- Getters ---

// ID returns the draft's unique identifier.
func (d *Draft) ID() uuid.UUID { return d.id }

// SessionID returns the owning session identifier.
func (d *Draft) SessionID() string { return d.sessionID }

// ServiceType returns the selected service type.
func (d *Draft) ServiceType() pricing.ServiceType { return d.serviceType }

// Sqft returns the entered square footage.
func (d *Draft) Sqft() int { return d.sqft }

// Frequency returns the selected service frequency.
func (d *Draft) Frequency() pricing.Frequency { return d.frequency }

// AddOns returns the selected add-ons.
func (d *Draft) AddOns() []pricing.AddOn { return d.addOns }

// SpecialDetails returns the free-text notes for the crew.
func (d *Draft) SpecialDetails() string { return d.specialDetails }

// Quote returns the attached quote, or nil if none is current.
func (d *Draft) Quote() *pricing.Quote { return d.quote }

// SelectedDate returns the chosen service date, or nil if unset.
func (d *Draft) SelectedDate() *time.Time { return d.selectedDate }

// SelectedTime returns the chosen time-slot label, or empty if unset.
func (d *Draft) SelectedTime() string { return d.selectedTime }

// State returns the current flow state.
func (d *Draft) State() FlowState { return d.state }

// Attempts returns the payment attempt tracker.
func (d *Draft) Attempts() PaymentAttempt { return d.attempts }

// LastFailure returns the most recent payment failure reason.
func (d *Draft) LastFailure() string { return d.lastFailure }

// Version returns the entity version for optimistic locking.
func (d *Draft) Version() int64 { return d.version }

// CreatedAt returns the creation timestamp.
func (d *Draft) CreatedAt() time.Time { return d.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (d *Draft) UpdatedAt() time.Time { return d.updatedAt }

// --- Behavior ---

// Configure records the user's service selections. Edits are locked once
// submission has started; before that, any edit invalidates the current
// quote and drops the draft back to configuring.
func (d *Draft) Configure(serviceType pricing.ServiceType, sqft int, frequency pricing.Frequency, addOns []pricing.AddOn, specialDetails string) error {
	if d.state == StateSubmitting || d.state.IsTerminal() {
		return domain.NewInvalidStateError(string(d.state), string(StateConfiguring))
	}
	if !serviceType.IsValid() {
		return domain.NewValidationError("invalid service type")
	}
	if sqft <= 0 {
		return domain.NewValidationError("square footage must be positive")
	}
	if !frequency.IsValid() {
		return domain.NewValidationError("invalid frequency")
	}
	for _, a := range addOns {
		if !a.IsValid() {
			return domain.NewValidationError("invalid add-on: " + string(a))
		}
	}

	d.serviceType = serviceType
	d.sqft = sqft
	d.frequency = frequency
	d.addOns = pricing.NormalizeAddOns(addOns)
	d.specialDetails = specialDetails
	d.quote = nil
	d.state = StateConfiguring
	d.touch()
	return nil
}

// AttachQuote stores a freshly computed quote and moves the draft to quoted.
func (d *Draft) AttachQuote(q pricing.Quote) error {
	if !d.state.CanTransitionTo(StateQuoted) {
		return domain.NewInvalidStateError(string(d.state), string(StateQuoted))
	}
	d.quote = &q
	d.state = StateQuoted
	d.touch()
	return nil
}

// SelectSlot records the chosen date and time slot. The date must not be in
// the past and must fall on a day the schedule marks open; otherwise the
// selection is rejected with no state change. Once date, time, and quote are
// all present the draft derives checkout_ready on its own.
func (d *Draft) SelectSlot(date time.Time, timeLabel string, now time.Time, sched schedule.WeekSchedule) error {
	if !d.state.CanTransitionTo(StateSlotSelected) {
		return domain.NewInvalidStateError(string(d.state), string(StateSlotSelected))
	}
	if timeLabel == "" {
		return domain.NewValidationError("a time slot is required")
	}
	if dateOnly(date).Before(dateOnly(now)) {
		return domain.NewValidationError("selected date is in the past")
	}
	if !sched.IsOpenDay(date) {
		return domain.NewValidationError("we are closed on the selected date")
	}

	day := dateOnly(date)
	d.selectedDate = &day
	d.selectedTime = timeLabel
	d.state = StateSlotSelected
	d.refreshCheckoutReady()
	d.touch()
	return nil
}

// IsCheckoutReady is the derived predicate: quote, date, and time slot are
// all present.
func (d *Draft) IsCheckoutReady() bool {
	return d.quote != nil && d.selectedDate != nil && d.selectedTime != ""
}

// refreshCheckoutReady promotes slot_selected to checkout_ready once the
// predicate holds. Not a user action.
func (d *Draft) refreshCheckoutReady() {
	if d.state == StateSlotSelected && d.IsCheckoutReady() {
		d.state = StateCheckoutReady
	}
}

// BeginSubmission moves a checkout-ready draft into submitting. Rejected
// while a payment lockout is active; the rejection happens before any
// network call is made.
func (d *Draft) BeginSubmission(now time.Time) error {
	if !d.attempts.CanAttempt(now) {
		return domain.NewPaymentError("too many failed attempts, please try again in 24 hours", false)
	}
	if !d.state.CanTransitionTo(StateSubmitting) {
		return domain.NewInvalidStateError(string(d.state), string(StateSubmitting))
	}
	if !d.IsCheckoutReady() {
		return domain.NewInvalidStateError(string(d.state), string(StateSubmitting))
	}
	d.state = StateSubmitting
	d.touch()
	return nil
}

// MarkSucceeded records payment confirmation. Terminal.
func (d *Draft) MarkSucceeded() error {
	if !d.state.CanTransitionTo(StateSucceeded) {
		return domain.NewInvalidStateError(string(d.state), string(StateSucceeded))
	}
	d.state = StateSucceeded
	d.attempts.Reset()
	d.lastFailure = ""
	d.touch()
	return nil
}

// MarkFailed records a retryable payment failure. Returns true if this
// failure triggered the 24-hour lockout; otherwise the draft returns to
// checkout_ready so the user may retry.
func (d *Draft) MarkFailed(reason string, now time.Time) (bool, error) {
	if !d.state.CanTransitionTo(StateFailed) {
		return false, domain.NewInvalidStateError(string(d.state), string(StateFailed))
	}
	d.state = StateFailed
	d.lastFailure = reason
	locked := d.attempts.RecordFailure(now)
	if !locked {
		d.state = StateCheckoutReady
	}
	d.touch()
	return locked, nil
}

// IncrementVersion bumps the version for optimistic locking.
func (d *Draft) IncrementVersion() {
	d.version++
	d.updatedAt = time.Now().UTC()
}

func (d *Draft) touch() {
	d.updatedAt = time.Now().UTC()
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
