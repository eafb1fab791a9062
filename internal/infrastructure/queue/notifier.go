// Package queue delivers session-expired events from the request executors
// to their subscribers on a background worker.
package queue

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agrisure/portal/internal/api/metrics"
	"github.com/agrisure/portal/internal/core/ports"
)

const channelBuffer = 64

// Subscriber handles one event. It runs on the notifier's worker goroutine.
type Subscriber func(ctx context.Context, ev ports.SessionExpired)

// SessionNotifier fans session-expired events out to subscribers in publish
// order.
type SessionNotifier struct {
	events chan ports.SessionExpired
	log    zerolog.Logger

	mu   sync.RWMutex
	subs []Subscriber
}

// NewSessionNotifier creates a notifier with the given queue size. If
// buffer <= 0, channelBuffer is used.
func NewSessionNotifier(buffer int, log zerolog.Logger) *SessionNotifier {
	if buffer <= 0 {
		buffer = channelBuffer
	}
	return &SessionNotifier{
		events: make(chan ports.SessionExpired, buffer),
		log:    log.With().Str("component", "session_notifier").Logger(),
	}
}

func (n *SessionNotifier) Subscribe(fn Subscriber) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, fn)
}

// Publish never blocks. When the queue is full the event is dropped.
func (n *SessionNotifier) Publish(_ context.Context, ev ports.SessionExpired) {
	select {
	case n.events <- ev:
	default:
		metrics.SessionEventsDropped.Inc()
		n.log.Warn().Str("path", ev.Path).Msg("session event queue full, event dropped")
	}
}

// Start launches the worker goroutine. It stops when ctx is cancelled.
func (n *SessionNotifier) Start(ctx context.Context) {
	go n.run(ctx)
}

func (n *SessionNotifier) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-n.events:
			n.deliver(ctx, ev)
		}
	}
}

func (n *SessionNotifier) deliver(ctx context.Context, ev ports.SessionExpired) {
	n.mu.RLock()
	subs := append([]Subscriber(nil), n.subs...)
	n.mu.RUnlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					n.log.Error().Interface("panic", r).Msg("session subscriber panicked")
				}
			}()
			fn(ctx, ev)
		}()
	}
}
