package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"go.uber.org/zap"

	"github.com/sotsvc/service-estimate/internal/domain"
)

// Bounds holds the accepted charge range in whole dollars. A quote
// outside the range means the rate table is corrupt, not that the
// customer did anything wrong.
type Bounds struct {
	MinAmount int64
	MaxAmount int64
}

// StripeProcessor charges cards through Stripe payment intents.
type StripeProcessor struct {
	bounds Bounds
	logger *zap.Logger
}

// NewStripeProcessor configures the Stripe client with the account
// secret key and the accepted amount range.
func NewStripeProcessor(secretKey string, bounds Bounds, logger *zap.Logger) (*StripeProcessor, error) {
	if secretKey == "" {
		return nil, domain.NewConfigurationError("stripe secret key is required")
	}
	if bounds.MinAmount <= 0 || bounds.MaxAmount < bounds.MinAmount {
		return nil, domain.NewConfigurationError("invalid payment amount bounds")
	}
	stripe.Key = secretKey
	return &StripeProcessor{bounds: bounds, logger: logger}, nil
}

// Charge creates and confirms one payment intent. Each call carries a
// fresh idempotency key so a retry after a decline is a new charge
// attempt rather than a replay of the failed one.
func (p *StripeProcessor) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	if err := p.validateAmount(req.Amount); err != nil {
		return ChargeResult{}, err
	}
	if req.PaymentMethodID == "" {
		return ChargeResult{}, domain.NewValidationError("payment method is required")
	}

	cents := req.Amount * 100
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(cents),
		Currency:      stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethod: stripe.String(req.PaymentMethodID),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	if req.ReceiptEmail != "" {
		params.ReceiptEmail = stripe.String(req.ReceiptEmail)
	}
	params.Context = ctx
	params.SetIdempotencyKey(uuid.NewString())

	intent, err := paymentintent.New(params)
	if err != nil {
		return ChargeResult{}, p.classify(err)
	}

	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		p.logger.Warn("payment intent did not settle",
			zap.String("intent_id", intent.ID),
			zap.String("status", string(intent.Status)),
		)
		return ChargeResult{}, domain.NewPaymentError(
			fmt.Sprintf("payment not completed: %s", intent.Status), true)
	}

	return ChargeResult{
		TransactionID: intent.ID,
		AmountCharged: intent.Amount,
	}, nil
}

// validateAmount enforces the accepted charge range before any network
// call is made.
func (p *StripeProcessor) validateAmount(amount int64) error {
	if amount < p.bounds.MinAmount || amount > p.bounds.MaxAmount {
		return domain.NewConfigurationError(
			fmt.Sprintf("charge amount %d outside accepted range [%d, %d]",
				amount, p.bounds.MinAmount, p.bounds.MaxAmount))
	}
	return nil
}

// classify tags a Stripe API error exactly once. Card declines and
// timeouts are retryable; everything else ends the attempt.
func (p *StripeProcessor) classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewPaymentError("payment timed out", true).WithCause(err)
	}
	if errors.Is(err, context.Canceled) {
		return domain.NewPaymentError("payment canceled", false).WithCause(err)
	}

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch stripeErr.Type {
		case stripe.ErrorTypeCard:
			p.logger.Info("card declined",
				zap.String("decline_code", string(stripeErr.DeclineCode)),
			)
			return domain.NewPaymentError("card declined", true).WithCause(err)
		case stripe.ErrorTypeAPI:
			return domain.NewUnavailableError("payment processor unavailable").WithCause(err)
		case stripe.ErrorTypeInvalidRequest:
			return domain.NewPaymentError("payment request rejected", false).WithCause(err)
		}
	}
	return domain.NewPaymentError("payment failed", false).WithCause(err)
}
