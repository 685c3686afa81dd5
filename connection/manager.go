// Package connection owns the lifecycle of the push channel: dialing,
// health tracking, bounded-backoff reconnection and in-order event
// dispatch. It never queues or retries a command; send-with-fallback
// is the synchronizer's responsibility.
package connection

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"campus-chat/contract"
	"campus-chat/domain"
	"campus-chat/errors"
)

const (
	defaultBaseDelay   = 500 * time.Millisecond
	defaultMaxDelay    = 30 * time.Second
	defaultMaxAttempts = 8
)

type Option func(*Manager)

func WithBackoff(base, max time.Duration, attempts int) Option {
	return func(m *Manager) {
		m.baseDelay = base
		m.maxDelay = max
		m.maxAttempts = attempts
	}
}

// Manager maintains a single logical push channel per session.
// It implements contract.CommandSender for outbound commands and
// contract.Worker for the supervised read loop.
type Manager struct {
	log         *slog.Logger
	channel     contract.PushChannel
	connected   atomic.Bool
	baseDelay   time.Duration
	maxDelay    time.Duration
	maxAttempts int

	mu    sync.Mutex
	sinks []contract.EventSink
}

func NewManager(log *slog.Logger, channel contract.PushChannel, opts ...Option) *Manager {
	m := &Manager{
		log:         log,
		channel:     channel,
		baseDelay:   defaultBaseDelay,
		maxDelay:    defaultMaxDelay,
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnEvent registers a sink invoked for every server event, in the
// order the channel delivered them. Registration must happen before
// Run starts.
func (m *Manager) OnEvent(sinks ...contract.EventSink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinks = append(m.sinks, sinks...)
}

// IsConnected reflects channel health. It flips to false on the first
// detected transport failure, before any reconnection attempt.
func (m *Manager) IsConnected() bool {
	return m.connected.Load()
}

// Send transmits a command on the current channel. It fails fast with
// ErrChannelDown when the channel is unhealthy and reports, never
// hides, a transport error discovered during the write.
func (m *Manager) Send(ctx context.Context, cmd domain.Command) error {
	if !m.connected.Load() {
		return errors.ErrChannelDown
	}
	if err := m.channel.Send(ctx, cmd); err != nil {
		m.connected.Store(false)
		return fmt.Errorf("%w: %v", errors.ErrChannelDown, err)
	}
	return nil
}

// Run dials the channel and pumps events to the registered sinks until
// the context is canceled. On a transport failure it flips the health
// flag and redials with bounded exponential backoff; when the attempt
// budget for one outage is exhausted it returns ErrReconnectExhausted
// and leaves any further restart policy to the supervisor.
func (m *Manager) Run(ctx context.Context) error {
	for {
		if err := m.dialWithBackoff(ctx); err != nil {
			return err
		}
		m.connected.Store(true)
		m.log.Info("Push channel connected")

		err := m.pump(ctx)
		m.connected.Store(false)
		_ = m.channel.Close()
		if ctx.Err() != nil {
			m.log.Info("Push channel stopped")
			return nil
		}
		m.log.Warn("Push channel lost, reconnecting", "error", err)
	}
}

func (m *Manager) dialWithBackoff(ctx context.Context) error {
	delay := m.baseDelay
	for attempt := 1; ; attempt++ {
		err := m.channel.Dial(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
		if attempt >= m.maxAttempts {
			return fmt.Errorf("%w after %d attempts: %v", errors.ErrReconnectExhausted, attempt, err)
		}
		m.log.Debug("Dial failed, backing off", "attempt", attempt, "delay", delay, "error", err)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
		delay *= 2
		if delay > m.maxDelay {
			delay = m.maxDelay
		}
	}
}

// pump reads events one at a time and hands them to every sink in
// registration order. A sink error is logged and does not stop the
// pump; a transport error does.
func (m *Manager) pump(ctx context.Context) error {
	for {
		evt, err := m.channel.Receive(ctx)
		if err != nil {
			return err
		}
		m.mu.Lock()
		sinks := make([]contract.EventSink, len(m.sinks))
		copy(sinks, m.sinks)
		m.mu.Unlock()
		for _, sink := range sinks {
			if err := sink.Consume(ctx, evt); err != nil {
				m.log.Error("Event sink failed", "error", err)
			}
		}
	}
}
