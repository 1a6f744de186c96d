package reliability

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, time.Minute, nil)
	failing := errors.New("fail")

	for i := 0; i < 3; i++ {
		err := cb.Execute(func() error { return failing })
		require.ErrorIs(t, err, failing)
	}

	assert.Equal(t, StateOpen, cb.State())

	err := cb.Execute(func() error { return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreakerHalfOpenAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 10*time.Millisecond, nil)

	err := cb.Execute(func() error { return errors.New("fail") })
	require.Error(t, err)
	assert.Equal(t, StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)

	called := false
	err = cb.Execute(func() error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreakerReopensOnFailedProbe(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 10*time.Millisecond, nil)

	_ = cb.Execute(func() error { return errors.New("fail") })
	time.Sleep(20 * time.Millisecond)

	err := cb.Execute(func() error { return errors.New("still failing") })
	require.Error(t, err)
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreakerReset(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, time.Minute, nil)
	_ = cb.Execute(func() error { return errors.New("fail") })
	assert.Equal(t, StateOpen, cb.State())

	cb.Reset()
	assert.Equal(t, StateClosed, cb.State())
}
