package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/config"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/events"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/governance"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/governance/authz"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/rule/ast"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/rule/parser"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/rule/validator"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/store"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/telemetry/metrics"
)

// Options assembles an Engine.
type Options struct {
	// Store is the document store. Required.
	Store store.Store

	// Emitter appends governance events. Required.
	Emitter *events.Emitter

	// Metrics records execution metrics. Optional.
	Metrics *metrics.Collector

	// Logger defaults to slog.Default.
	Logger *slog.Logger

	// Config carries execution tuning; zero values fall back to defaults.
	Config config.EngineConfig
}

// Engine executes governance rules against the document store.
type Engine struct {
	store     store.Store
	emitter   *events.Emitter
	resolver  *authz.Resolver
	validator *validator.Validator
	parser    *parser.Parser
	metrics   *metrics.Collector
	logger    *slog.Logger

	updateAttempts int

	// now and newID are swappable for tests.
	now   func() time.Time
	newID func() string
}

// New creates an engine from options.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	attempts := opts.Config.UpdateAttempts
	if attempts <= 0 {
		attempts = store.DefaultUpdateAttempts
	}

	p := parser.New()
	if opts.Config.MaxLineLength > 0 {
		p = p.WithMaxLineLength(opts.Config.MaxLineLength)
	}
	if opts.Config.MaxArgs > 0 {
		p = p.WithMaxArgs(opts.Config.MaxArgs)
	}

	return &Engine{
		store:          opts.Store,
		emitter:        opts.Emitter,
		resolver:       authz.New(),
		validator:      validator.New(),
		parser:         p,
		metrics:        opts.Metrics,
		logger:         logger.With("component", "engine"),
		updateAttempts: attempts,
		now:            func() time.Time { return time.Now().UTC() },
		newID:          func() string { return uuid.New().String() },
	}
}

// ExecutionRequest identifies the rule to execute and who is executing it.
type ExecutionRequest struct {
	// PolicyID is the policy owning the rule.
	PolicyID string

	// RuleID is the stored rule's id or statement name.
	RuleID string

	// ForumID is the governing forum, empty for forum-less execution.
	ForumID string

	// ExecutedBy is the acting user.
	ExecutedBy string
}

// ExecutionResult reports what an execution produced.
type ExecutionResult struct {
	// Kind is the executed rule's target kind.
	Kind ast.TargetKind `json:"kind"`

	// InstantiatedID is the created (or previously created) entity id.
	InstantiatedID string `json:"instantiated_id"`

	// AlreadyExecuted is true when the rule had executed before and the
	// request returned the recorded back-reference without side effects.
	AlreadyExecuted bool `json:"already_executed,omitempty"`

	// Events lists the audit records this execution appended.
	Events []*events.Event `json:"events,omitempty"`

	// Degraded is true when the execution succeeded but one or more audit
	// events could not be appended after retries.
	Degraded bool `json:"degraded,omitempty"`

	// Warning carries the emission failure text for degraded results.
	Warning string `json:"warning,omitempty"`
}

// emit appends one event and folds the outcome into the result. Emission
// failure degrades the result but never fails the execution.
func (e *Engine) emit(ctx context.Context, result *ExecutionResult, eventType events.EventType, actor string, opts ...events.EventOption) {
	ev, err := e.emitter.Emit(ctx, eventType, actor, opts...)
	if ev != nil {
		result.Events = append(result.Events, ev)
	}
	if err != nil {
		result.Degraded = true
		result.Warning = err.Error()
		if e.metrics != nil {
			e.metrics.Audit().RecordEmissionFailure(string(eventType))
		}
		e.logger.Warn("audit emission failed, continuing degraded",
			"type", eventType,
			"actor", actor,
			"error", err,
		)
		return
	}
	if e.metrics != nil {
		e.metrics.Audit().RecordEmitted(string(eventType))
	}
}

// loadForum fetches the governing forum, translating storage misses into
// NotFoundError.
func (e *Engine) loadForum(ctx context.Context, id string) (*governance.Forum, error) {
	f, _, err := e.store.GetForum(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Entity: "forum", ID: id}
		}
		return nil, err
	}
	return f, nil
}
