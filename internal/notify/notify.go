// Package notify delivers transient user-facing notifications raised by the data layer.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/honeycarbs/hirepipe/pkg/logging"
)

// Level is the severity of a notification
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is one user-visible message
type Notification struct {
	ID      uuid.UUID `json:"id"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier surfaces messages to whoever is presenting the dashboard
type Notifier interface {
	Success(ctx context.Context, msg string)
	Error(ctx context.Context, msg string)
}

// Hub fans notifications out to subscribers and to any collector bound to the context
type Hub struct {
	logger *logging.Logger
	clock  func() time.Time

	mu   sync.Mutex
	subs map[chan Notification]struct{}
}

// NewHub creates an empty hub
func NewHub(logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Hub{
		logger: logger,
		clock:  time.Now,
		subs:   make(map[chan Notification]struct{}),
	}
}

func (h *Hub) Success(ctx context.Context, msg string) {
	h.publish(ctx, LevelSuccess, msg)
}

func (h *Hub) Error(ctx context.Context, msg string) {
	h.publish(ctx, LevelError, msg)
}

// Subscribe returns a buffered channel receiving every notification
func (h *Hub) Subscribe() chan Notification {
	ch := make(chan Notification, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe detaches and closes ch
func (h *Hub) Unsubscribe(ch chan Notification) {
	h.mu.Lock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

func (h *Hub) publish(ctx context.Context, level Level, msg string) {
	n := Notification{
		ID:      uuid.New(),
		Level:   level,
		Message: msg,
		At:      h.clock().UTC(),
	}

	if level == LevelError {
		h.logger.Warn("notification", "level", level, "message", msg)
	} else {
		h.logger.Debug("notification", "level", level, "message", msg)
	}

	if c := collectorFrom(ctx); c != nil {
		c.add(n)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- n:
		default:
			// slow subscriber
		}
	}
}

var _ Notifier = (*Hub)(nil)
