package events

import (
	"time"

	"github.com/google/uuid"
)

// TopicBookingEvents is the default topic carrying booking lifecycle
// events. Deployments pick the actual topic through configuration.
const TopicBookingEvents = "booking.events"

// Event types published on the booking topic.
const (
	BookingCheckoutStarted  = "booking.checkout_started"
	BookingPaymentSucceeded = "booking.payment_succeeded"
	BookingPaymentFailed    = "booking.payment_failed"
	LeadSubmitted           = "lead.submitted"
)

// CheckoutStartedEvent is published when a draft enters submission.
type CheckoutStartedEvent struct {
	DraftID     uuid.UUID `json:"draft_id"`
	SessionID   string    `json:"session_id"`
	ServiceType string    `json:"service_type"`
	Amount      int64     `json:"amount"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// PaymentSucceededEvent is published when a checkout completes.
type PaymentSucceededEvent struct {
	DraftID       uuid.UUID `json:"draft_id"`
	SessionID     string    `json:"session_id"`
	ServiceType   string    `json:"service_type"`
	ServiceDate   string    `json:"service_date"`
	ServiceTime   string    `json:"service_time"`
	Amount        int64     `json:"amount"`
	TransactionID string    `json:"transaction_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// PaymentFailedEvent is published when a submission fails.
type PaymentFailedEvent struct {
	DraftID    uuid.UUID `json:"draft_id"`
	SessionID  string    `json:"session_id"`
	Reason     string    `json:"reason"`
	Attempt    int       `json:"attempt"`
	LockedOut  bool      `json:"locked_out"`
	OccurredAt time.Time `json:"occurred_at"`
}

// LeadSubmittedEvent is published after a lead is relayed to intake.
type LeadSubmittedEvent struct {
	FormType   string    `json:"form_type"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}
