package reliability

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ConnectionEvents holds optional callbacks for ConnectionManager state
// transitions. Callbacks run on the manager's health-check goroutine and
// MUST NOT block.
type ConnectionEvents struct {
	OnHealthy                     func()
	OnUnhealthy                   func(err error)
	OnReconnecting                func(attempt int)
	OnReconnected                 func()
	OnReconnectFailed             func(attempt int, err error)
	OnMaxReconnectAttemptsReached func()
}

// ConnectionManagerOptions configures ConnectionManager.
type ConnectionManagerOptions struct {
	// HealthCheckInterval is the period between health probes. OPTIONAL:
	// defaults to 30s.
	HealthCheckInterval time.Duration

	// ReconnectDelay scales linearly with attempt number: the Nth
	// reconnect waits ReconnectDelay*N. OPTIONAL: defaults to 1s.
	ReconnectDelay time.Duration

	// MaxReconnectAttempts bounds reconnect attempts per unhealthy
	// transition. OPTIONAL: defaults to 5.
	MaxReconnectAttempts int
}

func (o ConnectionManagerOptions) withDefaults() ConnectionManagerOptions {
	if o.HealthCheckInterval <= 0 {
		o.HealthCheckInterval = 30 * time.Second
	}
	if o.ReconnectDelay <= 0 {
		o.ReconnectDelay = time.Second
	}
	if o.MaxReconnectAttempts <= 0 {
		o.MaxReconnectAttempts = 5
	}
	return o
}

// ConnectionManager periodically probes a connection's health via a
// caller-supplied check, attempting reconnects with linearly growing
// delay when the probe starts failing.
type ConnectionManager struct {
	opts      ConnectionManagerOptions
	check     func(ctx context.Context) error
	reconnect func(ctx context.Context) error
	events    ConnectionEvents
	logger    *slog.Logger

	mu      sync.Mutex
	healthy bool

	cancel context.CancelFunc
	done   chan struct{}
}

// NewConnectionManager builds a ConnectionManager. check probes the
// current connection (e.g. testConnection); reconnect re-establishes it
// after a failed probe (e.g. disconnect followed by connect). A nil
// logger falls back to slog.Default().
func NewConnectionManager(opts ConnectionManagerOptions, check, reconnect func(ctx context.Context) error, events ConnectionEvents, logger *slog.Logger) *ConnectionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConnectionManager{
		opts:      opts.withDefaults(),
		check:     check,
		reconnect: reconnect,
		events:    events,
		logger:    logger,
		healthy:   true,
	}
}

// Start begins periodic health checking. Stop it by cancelling ctx or by
// calling Stop.
func (cm *ConnectionManager) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	cm.cancel = cancel
	cm.done = make(chan struct{})

	go cm.run(ctx)
}

// Stop halts health checking and waits for the background goroutine to
// exit.
func (cm *ConnectionManager) Stop() {
	if cm.cancel == nil {
		return
	}
	cm.cancel()
	<-cm.done
}

func (cm *ConnectionManager) run(ctx context.Context) {
	defer close(cm.done)

	ticker := time.NewTicker(cm.opts.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cm.probe(ctx)
		}
	}
}

func (cm *ConnectionManager) probe(ctx context.Context) {
	err := cm.check(ctx)

	cm.mu.Lock()
	wasHealthy := cm.healthy
	cm.mu.Unlock()

	if err == nil {
		if !wasHealthy {
			cm.setHealthy(true)
			if cm.events.OnReconnected != nil {
				cm.events.OnReconnected()
			}
		}
		if cm.events.OnHealthy != nil {
			cm.events.OnHealthy()
		}
		return
	}

	if wasHealthy {
		cm.setHealthy(false)
		cm.logger.Warn("connection unhealthy", "error", err)
		if cm.events.OnUnhealthy != nil {
			cm.events.OnUnhealthy(err)
		}
	}

	cm.attemptReconnects(ctx)
}

func (cm *ConnectionManager) attemptReconnects(ctx context.Context) {
	for attempt := 1; attempt <= cm.opts.MaxReconnectAttempts; attempt++ {
		if cm.events.OnReconnecting != nil {
			cm.events.OnReconnecting(attempt)
		}

		delay := cm.opts.ReconnectDelay * time.Duration(attempt)
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		if err := cm.reconnect(ctx); err != nil {
			cm.logger.Warn("reconnect attempt failed", "attempt", attempt, "error", err)
			if cm.events.OnReconnectFailed != nil {
				cm.events.OnReconnectFailed(attempt, err)
			}
			continue
		}

		if err := cm.check(ctx); err == nil {
			cm.setHealthy(true)
			cm.logger.Info("reconnected", "attempt", attempt)
			if cm.events.OnReconnected != nil {
				cm.events.OnReconnected()
			}
			return
		}
	}

	cm.logger.Error("max reconnect attempts reached", "max_attempts", cm.opts.MaxReconnectAttempts)
	if cm.events.OnMaxReconnectAttemptsReached != nil {
		cm.events.OnMaxReconnectAttemptsReached()
	}
}

func (cm *ConnectionManager) setHealthy(healthy bool) {
	cm.mu.Lock()
	cm.healthy = healthy
	cm.mu.Unlock()
}

// Healthy reports whether the last probe succeeded.
func (cm *ConnectionManager) Healthy() bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.healthy
}
