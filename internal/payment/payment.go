// Package payment charges a quoted booking total through the card
// processor. One charge attempt per call; retry policy lives with the
// booking flow, not here.
package payment

import (
	"context"
)

// ChargeRequest describes one charge attempt for a booking draft.
type ChargeRequest struct {
	// Amount is the quoted total in whole dollars.
	Amount int64
	// PaymentMethodID references a tokenized card collected client-side.
	PaymentMethodID string
	// Description appears on the processor dashboard and the receipt.
	Description string
	// ReceiptEmail, when set, triggers a processor-side receipt.
	ReceiptEmail string
}

// ChargeResult reports a completed charge.
type ChargeResult struct {
	// TransactionID is the processor's identifier for the charge.
	TransactionID string
	// AmountCharged is the settled amount in cents.
	AmountCharged int64
}

// Processor is the outbound boundary for card charges.
type Processor interface {
	// Charge performs exactly one charge attempt. Declines and timeouts
	// come back as retryable payment errors; out-of-bounds amounts are
	// configuration faults detected before any network call.
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}
