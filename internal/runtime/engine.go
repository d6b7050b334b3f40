package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/cinegraph/internal/logging"
	"github.com/aretw0/cinegraph/pkg/domain"
	"github.com/aretw0/cinegraph/pkg/ports"
	"github.com/aretw0/cinegraph/pkg/session"
)

// DefaultMaxSteps bounds the node transitions of a single turn.
const DefaultMaxSteps = 25

// Capabilities is what the engine needs from the capability registry.
type Capabilities interface {
	Tools() []domain.Tool
	Invoke(ctx context.Context, name string, args map[string]string) string
}

// Services bundles the collaborators every node receives.
type Services struct {
	Model        ports.DecisionModel
	Capabilities Capabilities
	Sessions     *session.Manager
	Reviewer     ports.Reviewer
}

// Result describes the outcome of one turn.
type Result struct {
	Checkpoint *domain.Checkpoint      `json:"checkpoint"`
	Appended   domain.Log              `json:"appended"`
	Invoked    []domain.CapabilityCall `json:"invoked"`
	Reason     domain.Reason           `json:"reason,omitempty"`
	Suspended  *domain.Pending         `json:"suspended,omitempty"`
}

// Engine drives the orchestration graph over checkpointed sessions.
type Engine struct {
	svc           Services
	instruction   string
	maxSteps      int
	researchOrder bool
	hooks         domain.LifecycleHooks
	logger        *slog.Logger
	nodes         map[domain.NodeID]nodeFunc
}

// EngineOption configures the runtime Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithInstruction replaces the system instruction sent to the decision model.
func WithInstruction(text string) EngineOption {
	return func(e *Engine) {
		if strings.TrimSpace(text) != "" {
			e.instruction = text
		}
	}
}

// WithMaxSteps bounds the transitions of one turn.
func WithMaxSteps(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// WithResearchOrder refuses generate_article until web_search and
// scrape_website have both produced a result since the latest human message.
func WithResearchOrder(enforce bool) EngineOption {
	return func(e *Engine) {
		e.researchOrder = enforce
	}
}

// NewEngine creates a new engine. Model, Capabilities, Sessions and Reviewer are required.
func NewEngine(svc Services, opts ...EngineOption) (*Engine, error) {
	switch {
	case svc.Model == nil:
		return nil, errors.New("runtime: decision model is required")
	case svc.Capabilities == nil:
		return nil, errors.New("runtime: capabilities are required")
	case svc.Sessions == nil:
		return nil, errors.New("runtime: session manager is required")
	case svc.Reviewer == nil:
		return nil, errors.New("runtime: reviewer is required")
	}

	e := &Engine{
		svc:         svc,
		instruction: DefaultInstruction,
		maxSteps:    DefaultMaxSteps,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.nodes = map[domain.NodeID]nodeFunc{
		domain.NodeAssistant:  e.decide,
		domain.NodeTools:      e.dispatch,
		domain.NodeReview:     e.review,
		domain.NodeSuggestion: e.suggest,
	}
	return e, nil
}

// Tools returns the capability contracts offered to the model.
func (e *Engine) Tools() []domain.Tool {
	return e.svc.Capabilities.Tools()
}

// State returns the checkpoint for cfg, empty if the session has no history.
func (e *Engine) State(ctx context.Context, cfg domain.SessionConfig) (*domain.Checkpoint, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return e.svc.Sessions.Load(ctx, cfg.Key())
}

// Invoke runs one top-level turn: input becomes a human message and the graph
// runs from the assistant node until the turn ends or a human decision is needed.
func (e *Engine) Invoke(ctx context.Context, cfg domain.SessionConfig, input string) (*Result, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var res *Result
	err := e.svc.Sessions.WithThread(ctx, cfg.Key(), func(ctx context.Context, th *session.Thread) error {
		cp := th.Checkpoint()
		if cp.Awaiting() {
			return fmt.Errorf("%w: resume %s first", domain.ErrAwaitingDecision, cp.Pending.Node)
		}

		t := &turn{thread: th, cp: cp}
		t.append(domain.HumanMessage(input))
		t.cp.Next = domain.NodeAssistant
		if err := e.commit(ctx, t); err != nil {
			return err
		}

		var err error
		res, err = e.run(ctx, t)
		return err
	})
	return res, err
}

// Resume feeds a human decision into a suspended session and continues the turn.
func (e *Engine) Resume(ctx context.Context, cfg domain.SessionConfig, decision domain.Decision) (*Result, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var res *Result
	err := e.svc.Sessions.WithThread(ctx, cfg.Key(), func(ctx context.Context, th *session.Thread) error {
		cp := th.Checkpoint()
		if !cp.Awaiting() {
			return domain.ErrNoPendingDecision
		}

		t := &turn{thread: th, cp: cp, decision: &decision}
		t.cp.Next = cp.Pending.Node
		var err error
		res, err = e.run(ctx, t)
		return err
	})
	return res, err
}

// turn is the mutable state of one Invoke or Resume call.
type turn struct {
	thread   *session.Thread
	cp       *domain.Checkpoint
	appended domain.Log
	invoked  []domain.CapabilityCall
	reason   domain.Reason
	decision *domain.Decision
	pending  *domain.Pending
}

func (t *turn) append(m domain.Message) {
	t.cp.Messages = t.cp.Messages.Append(m)
	t.appended = append(t.appended, m.Clone())
}

func (t *turn) result() *Result {
	return &Result{
		Checkpoint: t.cp.Clone(),
		Appended:   t.appended.Clone(),
		Invoked:    t.invoked,
		Reason:     t.reason,
		Suspended:  t.pending,
	}
}

type nodeFunc func(ctx context.Context, t *turn) (domain.Signal, error)

// run is the graph loop: one node per iteration, a checkpoint after each transition.
func (e *Engine) run(ctx context.Context, t *turn) (*Result, error) {
	node := t.cp.Next
	threadID := t.cp.Key.ThreadID

	for steps := 0; node != domain.NodeEnd; steps++ {
		if steps >= e.maxSteps {
			return t.result(), fmt.Errorf("%w after %d transitions", domain.ErrStepLimit, steps)
		}
		if err := ctx.Err(); err != nil {
			return t.result(), err
		}

		fn, ok := e.nodes[node]
		if !ok {
			return t.result(), fmt.Errorf("unknown node %q", node)
		}

		if e.hooks.OnNodeEnter != nil {
			e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
				EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeEnter, ThreadID: threadID},
				NodeID:    node,
			})
		}
		e.logger.Debug("Enter node", "thread_id", threadID, "node", node)

		signal, err := fn(ctx, t)
		if errors.Is(err, domain.ErrAwaitingDecision) && t.pending != nil {
			t.cp.Next = node
			t.cp.Pending = t.pending
			t.reason = domain.ReasonSuspended
			if err := e.commit(ctx, t); err != nil {
				return t.result(), err
			}
			e.logger.Info("Awaiting human decision", "thread_id", threadID, "node", node)
			return t.result(), nil
		}
		if err != nil {
			return t.result(), fmt.Errorf("node %s: %w", node, err)
		}

		next, err := Next(node, signal)
		if err != nil {
			return t.result(), err
		}

		if e.hooks.OnNodeLeave != nil {
			e.hooks.OnNodeLeave(ctx, &domain.NodeEvent{
				EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeLeave, ThreadID: threadID},
				NodeID:    node,
				Signal:    signal,
			})
		}

		t.cp.Pending = nil
		t.cp.Next = next
		if next == domain.NodeEnd {
			t.cp.Next = ""
		}
		if err := e.commit(ctx, t); err != nil {
			return t.result(), err
		}
		node = next
	}
	return t.result(), nil
}

func (e *Engine) commit(ctx context.Context, t *turn) error {
	t.cp.Step++
	saved, err := t.thread.Commit(ctx, t.cp)
	if err != nil {
		return err
	}
	t.cp = saved
	if e.hooks.OnCheckpoint != nil {
		e.hooks.OnCheckpoint(ctx, &domain.CheckpointEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventCheckpoint, ThreadID: saved.Key.ThreadID},
			Key:       saved.Key,
			Step:      saved.Step,
			Next:      saved.Next,
			Messages:  len(saved.Messages),
		})
	}
	return nil
}
