package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// EmitterConfig configures the audit emitter.
type EmitterConfig struct {
	// MaxAttempts is the bounded retry count for appends.
	// Default: 3
	MaxAttempts int

	// RetryBackoff is the delay between append attempts.
	// Default: 50ms
	RetryBackoff time.Duration
}

// DefaultEmitterConfig returns the default emitter configuration.
func DefaultEmitterConfig() *EmitterConfig {
	return &EmitterConfig{
		MaxAttempts:  3,
		RetryBackoff: 50 * time.Millisecond,
	}
}

// Emitter appends governance events to storage with bounded retries.
// A failed emission is reported to the caller as an *EmissionError, a
// warning class distinct from execution failure; it is never swallowed.
type Emitter struct {
	storage Storage
	config  *EmitterConfig
	logger  *slog.Logger
}

// NewEmitter creates an emitter over the given storage backend.
func NewEmitter(storage Storage, config *EmitterConfig) *Emitter {
	if config == nil {
		config = DefaultEmitterConfig()
	}
	return &Emitter{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "events.emitter"),
	}
}

// EventOption customizes an event before it is appended.
type EventOption func(*Event)

// WithForum references the forum the transition happened in.
func WithForum(forumID string) EventOption {
	return func(e *Event) { e.ForumID = forumID }
}

// WithPolicy references the policy the transition happened in.
func WithPolicy(policyID string) EventOption {
	return func(e *Event) { e.PolicyID = policyID }
}

// WithDetail adds one detail key/value pair.
func WithDetail(key, value string) EventOption {
	return func(e *Event) {
		if e.Detail == nil {
			e.Detail = make(map[string]string)
		}
		e.Detail[key] = value
	}
}

// WithDetailMap merges a detail map.
func WithDetailMap(detail map[string]string) EventOption {
	return func(e *Event) {
		if len(detail) == 0 {
			return
		}
		if e.Detail == nil {
			e.Detail = make(map[string]string, len(detail))
		}
		for k, v := range detail {
			e.Detail[k] = v
		}
	}
}

// Corrects marks the event as a correction of an earlier event.
func Corrects(eventID string) EventOption {
	return func(e *Event) { e.CorrectsEventID = eventID }
}

// Emit validates the event type, stamps identity and time, and appends the
// event with bounded retries.
//
// On success it returns the appended record. When every attempt fails it
// returns the unappended record together with an *EmissionError so the
// caller can surface degraded success and re-emit later.
func (em *Emitter) Emit(ctx context.Context, eventType EventType, actor string, opts ...EventOption) (*Event, error) {
	if !eventType.Valid() {
		return nil, &InvalidEventTypeError{Type: eventType}
	}

	e := &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(e)
	}

	var lastErr error
	for attempt := 1; attempt <= em.config.MaxAttempts; attempt++ {
		lastErr = em.storage.Append(ctx, e)
		if lastErr == nil {
			em.logger.Debug("event emitted",
				"event_id", e.ID,
				"type", e.Type,
				"actor", e.Actor,
				"attempt", attempt,
			)
			return e, nil
		}

		em.logger.Warn("event append failed",
			"event_id", e.ID,
			"type", e.Type,
			"attempt", attempt,
			"max_attempts", em.config.MaxAttempts,
			"error", lastErr,
		)

		if attempt < em.config.MaxAttempts {
			select {
			case <-ctx.Done():
				return e, &EmissionError{Type: eventType, Attempts: attempt, Cause: ctx.Err()}
			case <-time.After(em.config.RetryBackoff):
			}
		}
	}

	return e, &EmissionError{Type: eventType, Attempts: em.config.MaxAttempts, Cause: lastErr}
}
