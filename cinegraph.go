package cinegraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/cinegraph/internal/logging"
	"github.com/aretw0/cinegraph/internal/runtime"
	"github.com/aretw0/cinegraph/pkg/adapters/memory"
	"github.com/aretw0/cinegraph/pkg/capabilities"
	"github.com/aretw0/cinegraph/pkg/domain"
	"github.com/aretw0/cinegraph/pkg/ports"
	"github.com/aretw0/cinegraph/pkg/registry"
	"github.com/aretw0/cinegraph/pkg/session"
)

// Version is the library version reported by the CLI.
const Version = "0.4.0"

// Result describes the outcome of one Invoke or Resume call.
type Result = runtime.Result

// DefaultInstruction is the system instruction sent to the decision model.
const DefaultInstruction = runtime.DefaultInstruction

// Engine is the high-level entry point for the cinegraph library.
// It wires the capability registry, the checkpointer and the runtime graph.
type Engine struct {
	runtime  *runtime.Engine
	sessions *session.Manager
	registry *registry.Registry

	model       ports.DecisionModel
	completer   ports.Completer
	reviewer    ports.Reviewer
	store       ports.CheckpointStore
	capDeps     capabilities.Deps
	sessionOpts []session.Option
	runtimeOpts []runtime.EngineOption
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithModel sets the decision model. Required.
func WithModel(m ports.DecisionModel) Option {
	return func(e *Engine) {
		e.model = m
	}
}

// WithCompleter sets the model used by the LLM-backed capabilities. When the
// decision model also implements ports.Completer it is used by default.
func WithCompleter(c ports.Completer) Option {
	return func(e *Engine) {
		e.completer = c
	}
}

// WithReviewer sets who answers human decisions. Defaults to ports.Suspend,
// which persists the pending decision and waits for Resume.
func WithReviewer(r ports.Reviewer) Option {
	return func(e *Engine) {
		e.reviewer = r
	}
}

// WithStore sets the checkpoint store. Defaults to an in-memory store.
func WithStore(s ports.CheckpointStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithRegistry replaces the built-in capabilities with a custom registry.
func WithRegistry(r *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithCapabilityDeps configures the built-in capabilities (HTTP client, search endpoint).
func WithCapabilityDeps(d capabilities.Deps) Option {
	return func(e *Engine) {
		e.capDeps = d
	}
}

// WithSessionOptions passes options to the session manager (locker, retries).
func WithSessionOptions(opts ...session.Option) Option {
	return func(e *Engine) {
		e.sessionOpts = append(e.sessionOpts, opts...)
	}
}

// WithLifecycleHooks registers observability hooks. Repeated calls merge.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithInstruction replaces the system instruction.
func WithInstruction(text string) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithInstruction(text))
	}
}

// WithMaxSteps bounds the node transitions of one turn.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithMaxSteps(n))
	}
}

// WithResearchOrder refuses article generation until search and scraping have run.
func WithResearchOrder(enforce bool) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithResearchOrder(enforce))
	}
}

// New initializes a new Engine.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.model == nil {
		return nil, errors.New("cinegraph: a decision model is required")
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.store == nil {
		eng.store = memory.NewStore()
	}
	if eng.reviewer == nil {
		eng.reviewer = ports.Suspend
	}

	if eng.registry == nil {
		if eng.completer == nil {
			c, ok := eng.model.(ports.Completer)
			if !ok {
				return nil, errors.New("cinegraph: a completer is required for the built-in capabilities")
			}
			eng.completer = c
		}
		deps := eng.capDeps
		deps.Completer = eng.completer
		if deps.Logger == nil {
			deps.Logger = eng.logger
		}
		eng.registry = registry.NewRegistry()
		if err := capabilities.Register(eng.registry, deps); err != nil {
			return nil, fmt.Errorf("failed to register capabilities: %w", err)
		}
	}

	sessionOpts := append([]session.Option{session.WithLogger(eng.logger)}, eng.sessionOpts...)
	eng.sessions = session.NewManager(eng.store, sessionOpts...)

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
	}
	runtimeOpts = append(runtimeOpts, eng.runtimeOpts...)

	rt, err := runtime.NewEngine(runtime.Services{
		Model:        eng.model,
		Capabilities: eng.registry,
		Sessions:     eng.sessions,
		Reviewer:     eng.reviewer,
	}, runtimeOpts...)
	if err != nil {
		return nil, err
	}
	eng.runtime = rt
	return eng, nil
}

// Invoke runs one human turn.
func (e *Engine) Invoke(ctx context.Context, cfg domain.SessionConfig, input string) (*Result, error) {
	return e.runtime.Invoke(ctx, cfg, input)
}

// Resume answers the pending human decision of a suspended session.
func (e *Engine) Resume(ctx context.Context, cfg domain.SessionConfig, decision domain.Decision) (*Result, error) {
	return e.runtime.Resume(ctx, cfg, decision)
}

// State returns the latest checkpoint of a session.
func (e *Engine) State(ctx context.Context, cfg domain.SessionConfig) (*domain.Checkpoint, error) {
	return e.runtime.State(ctx, cfg)
}

// Delete removes a session's checkpoint.
func (e *Engine) Delete(ctx context.Context, cfg domain.SessionConfig) error {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	return e.sessions.Delete(ctx, cfg.Key())
}

// Sessions lists every stored checkpoint key.
func (e *Engine) Sessions(ctx context.Context) ([]domain.CheckpointKey, error) {
	return e.sessions.List(ctx)
}

// Tools returns the capability contracts offered to the model.
func (e *Engine) Tools() []domain.Tool {
	return e.runtime.Tools()
}

// Registry returns the capability registry.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}
