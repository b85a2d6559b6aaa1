package booking

import "time"

const (
	// MaxPaymentAttempts is how many failed submissions are tolerated before
	// the checkout locks.
	MaxPaymentAttempts = 3
	// PaymentLockoutPeriod is how long a locked checkout stays locked.
	PaymentLockoutPeriod = 24 * time.Hour
)

// PaymentAttempt tracks failed payment submissions for one checkout session.
// Once Count reaches MaxPaymentAttempts further submissions are rejected
// until LockoutUntil passes, at which point the counter resets.
type PaymentAttempt struct {
	Count        int        `json:"count"`
	LockoutUntil *time.Time `json:"lockout_until,omitempty"`
}

// CanAttempt reports whether a submission is allowed at the given time. An
// expired lockout clears itself and resets the counter.
func (p *PaymentAttempt) CanAttempt(now time.Time) bool {
	if p.LockoutUntil != nil {
		if now.Before(*p.LockoutUntil) {
			return false
		}
		p.Count = 0
		p.LockoutUntil = nil
	}
	return p.Count < MaxPaymentAttempts
}

// RecordFailure increments the counter and returns true if this failure
// triggered the lockout.
func (p *PaymentAttempt) RecordFailure(now time.Time) bool {
	p.Count++
	if p.Count >= MaxPaymentAttempts {
		until := now.Add(PaymentLockoutPeriod)
		p.LockoutUntil = &until
		return true
	}
	return false
}

// Reset clears the counter and any lockout, used after a successful payment.
func (p *PaymentAttempt) Reset() {
	p.Count = 0
	p.LockoutUntil = nil
}

// LockedOut reports whether a lockout is active at the given time without
// mutating state.
func (p PaymentAttempt) LockedOut(now time.Time) bool {
	return p.LockoutUntil != nil && now.Before(*p.LockoutUntil)
}
