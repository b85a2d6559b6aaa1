package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoRetriesUntilSuccess(t *testing.T) {
	p := Policy{MaxRetries: 3, InitialInterval: time.Millisecond, Multiplier: 2}

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoGivesUpAfterMaxRetries(t *testing.T) {
	p := Policy{MaxRetries: 3, InitialInterval: time.Millisecond, Multiplier: 2}

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return errors.New("still failing")
	})

	require.Error(t, err)
	// first attempt plus three retries
	assert.Equal(t, 4, calls)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	p := DefaultPolicy()

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return Permanent(errors.New("bad request"))
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRespectsContextCancellation(t *testing.T) {
	p := Policy{MaxRetries: 10, InitialInterval: 50 * time.Millisecond, Multiplier: 2}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := p.Do(ctx, func() error {
		calls++
		return errors.New("transient")
	})

	require.Error(t, err)
	assert.LessOrEqual(t, calls, 2)
}
