//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sotsvc/service-estimate/internal/domain"
	"github.com/sotsvc/service-estimate/internal/events"
)

// TestCheckoutFlow_SettlesAndPublishes drives a draft through the full
// calculator -> calendar -> checkout flow against real Postgres and Kafka,
// then verifies the draft row is cleared and the settlement event lands on
// the booking topic.
func TestCheckoutFlow_SettlesAndPublishes(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupEstimateStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	ctx := context.Background()
	sessionID := "integration-session-1"

	_, err := stack.Flow.StartDraft(ctx, sessionID)
	require.NoError(t, err)

	_, err = stack.Flow.Configure(ctx, sessionID, configureDraftRequest())
	require.NoError(t, err)

	quoted, err := stack.Flow.CalculateQuote(ctx, sessionID)
	require.NoError(t, err)
	require.NotNil(t, quoted.Quote)
	// deep-cleaning 1000 sqft weekly: (150 + 200) * 0.80 = 280, + 50 windows
	require.Equal(t, int64(330), quoted.Quote.Total)

	ready, err := stack.Flow.SelectSlot(ctx, sessionID, selectSlotRequest())
	require.NoError(t, err)
	require.True(t, ready.CheckoutReady)

	result, err := stack.Flow.Checkout(ctx, sessionID, checkoutRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(330), result.Amount)
	assert.NotEmpty(t, result.TransactionID)

	// The draft row is gone once payment settles.
	_, err = stack.Flow.GetDraft(ctx, sessionID)
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(err))

	// The settlement event lands on the booking topic.
	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicBookingEvents,
		events.BookingPaymentSucceeded, 15*time.Second)

	var settled events.PaymentSucceededEvent
	require.NoError(t, ce.ParseData(&settled))
	assert.Equal(t, sessionID, settled.SessionID)
	assert.Equal(t, int64(330), settled.Amount)
	assert.Equal(t, result.TransactionID, settled.TransactionID)
}

// TestCheckoutFlow_DeclineCountsAttempt verifies a declined charge leaves
// the draft retryable with one attempt consumed, persisted across reloads.
func TestCheckoutFlow_DeclineCountsAttempt(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupEstimateStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	ctx := context.Background()
	sessionID := "integration-session-2"

	_, err := stack.Flow.StartDraft(ctx, sessionID)
	require.NoError(t, err)
	_, err = stack.Flow.Configure(ctx, sessionID, configureDraftRequest())
	require.NoError(t, err)
	_, err = stack.Flow.CalculateQuote(ctx, sessionID)
	require.NoError(t, err)
	_, err = stack.Flow.SelectSlot(ctx, sessionID, selectSlotRequest())
	require.NoError(t, err)

	stack.Processor.Err = domain.NewPaymentError("card declined", true)
	_, err = stack.Flow.Checkout(ctx, sessionID, checkoutRequest())
	require.Error(t, err)
	assert.Equal(t, domain.CodePayment, domain.CodeOf(err))

	draft, err := stack.Flow.GetDraft(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, "checkout_ready", draft.State)
	assert.Equal(t, 2, draft.AttemptsRemaining)

	// The failure is durable: a retry with a working card settles.
	stack.Processor.Err = nil
	result, err := stack.Flow.Checkout(ctx, sessionID, checkoutRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, result.TransactionID)
}
