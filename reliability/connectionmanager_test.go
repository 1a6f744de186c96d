package reliability

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConnectionManagerReconnectsAfterFailure(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)

	var unhealthyCount, reconnectedCount int32
	var mu sync.Mutex
	var reconnectAttempts []int

	check := func(ctx context.Context) error {
		if healthy.Load() {
			return nil
		}
		return errors.New("down")
	}
	reconnect := func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		healthy.Store(true)
		return nil
	}

	events := ConnectionEvents{
		OnUnhealthy: func(err error) { atomic.AddInt32(&unhealthyCount, 1) },
		OnReconnecting: func(attempt int) {
			mu.Lock()
			reconnectAttempts = append(reconnectAttempts, attempt)
			mu.Unlock()
		},
		OnReconnected: func() { atomic.AddInt32(&reconnectedCount, 1) },
	}

	cm := NewConnectionManager(ConnectionManagerOptions{
		HealthCheckInterval:  10 * time.Millisecond,
		ReconnectDelay:       5 * time.Millisecond,
		MaxReconnectAttempts: 5,
	}, check, reconnect, events, nil)

	healthy.Store(false)
	cm.Start(context.Background())
	defer cm.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&reconnectedCount) > 0
	}, time.Second, 5*time.Millisecond)

	assert.True(t, cm.Healthy())
	assert.GreaterOrEqual(t, atomic.LoadInt32(&unhealthyCount), int32(1))
}

func TestConnectionManagerMaxAttemptsReached(t *testing.T) {
	var maxReachedCount int32

	check := func(ctx context.Context) error { return errors.New("always down") }
	reconnect := func(ctx context.Context) error { return errors.New("reconnect fails") }

	events := ConnectionEvents{
		OnMaxReconnectAttemptsReached: func() { atomic.AddInt32(&maxReachedCount, 1) },
	}

	cm := NewConnectionManager(ConnectionManagerOptions{
		HealthCheckInterval:  10 * time.Millisecond,
		ReconnectDelay:       2 * time.Millisecond,
		MaxReconnectAttempts: 2,
	}, check, reconnect, events, nil)

	cm.Start(context.Background())
	defer cm.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&maxReachedCount) > 0
	}, time.Second, 5*time.Millisecond)
}
