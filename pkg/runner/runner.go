package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/cinegraph"
	"github.com/aretw0/cinegraph/internal/logging"
	"github.com/aretw0/cinegraph/pkg/domain"
)

// Messages printed by the loop.
const (
	Welcome  = "Benvenuto! Scrivi una richiesta legata al blog di cinema. Scrivi 'no', 'basta' o 'esci' per terminare."
	Goodbye  = "Va bene! Alla prossima."
	FollowUp = "Posso aiutarti con qualcos'altro? (sì / no)"
	Farewell = "Ok! Alla prossima."
)

// Engine is what the runner needs from cinegraph.Engine.
type Engine interface {
	Invoke(ctx context.Context, cfg domain.SessionConfig, input string) (*cinegraph.Result, error)
	Resume(ctx context.Context, cfg domain.SessionConfig, decision domain.Decision) (*cinegraph.Result, error)
	State(ctx context.Context, cfg domain.SessionConfig) (*domain.Checkpoint, error)
}

// Runner handles the interactive loop over an engine session.
type Runner struct {
	Engine  Engine
	Handler IOHandler
	Session domain.SessionConfig

	// Reviewer answers a decision left pending by an earlier, non-interactive run.
	// If nil, a pending session is only reported.
	Reviewer *ConsoleReviewer

	FollowUp bool
	Signals  bool
	Logger   *slog.Logger
}

// NewRunner creates a Runner over engine. Without WithInputHandler it uses a
// TextHandler on stdin and stdout.
func NewRunner(engine Engine, opts ...Option) *Runner {
	r := &Runner{Engine: engine, Logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, nil)
	}
	if r.Session.ThreadID == "" {
		r.Session = domain.NewSessionConfig()
	}
	r.Session = r.Session.WithDefaults()
	return r
}

// Run executes the loop until the human ends the conversation or input ends.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.resumePending(ctx); err != nil {
		return err
	}

	// While waiting for input, an interrupt ends the conversation.
	var signals *SignalManager
	inputCtx := func() context.Context { return ctx }
	if r.Signals {
		signals = NewSignalManager(ctx)
		defer signals.Stop()
		inputCtx = signals.Context
	}

	_ = r.Handler.SystemOutput(ctx, Welcome)

	for {
		// An interrupt that cancelled a turn also reached the input listener.
		if signals != nil && signals.Interrupted() {
			signals.Reset()
		}

		line, err := r.Handler.Input(inputCtx())
		if err != nil {
			if signals != nil {
				signals.CheckRace()
				if signals.Interrupted() {
					_ = r.Handler.SystemOutput(ctx, Goodbye)
					return nil
				}
			}
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}
		if line == "" {
			continue
		}
		if IsTermination(line) {
			_ = r.Handler.SystemOutput(ctx, Goodbye)
			return nil
		}

		res, err := r.turn(ctx, func(ctx context.Context) (*cinegraph.Result, error) {
			return r.Engine.Invoke(ctx, r.Session, line)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, domain.ErrAwaitingDecision) {
				if err := r.resumePending(ctx); err != nil {
					return err
				}
				continue
			}
			_ = r.Handler.SystemOutput(ctx, fmt.Sprintf("Errore: %v", err))
			continue
		}
		if res != nil && res.Suspended != nil {
			_ = r.Handler.SystemOutput(ctx, fmt.Sprintf("Sessione %s sospesa in attesa di una decisione.", r.Session.ThreadID))
			return nil
		}

		if r.FollowUp {
			answer, err := r.Handler.Prompt(inputCtx(), FollowUp)
			if err != nil || !domain.IsAffirmative(answer) {
				_ = r.Handler.SystemOutput(ctx, Farewell)
				return nil
			}
		}
	}
}

// turn runs fn, printing its result. With signals enabled an interrupt only
// cancels this turn.
func (r *Runner) turn(ctx context.Context, fn func(context.Context) (*cinegraph.Result, error)) (*cinegraph.Result, error) {
	turnCtx := ctx
	var signals *SignalManager
	if r.Signals {
		signals = NewSignalManager(ctx)
		defer signals.Stop()
		turnCtx = signals.Context()
	}

	res, err := fn(turnCtx)
	if res != nil {
		if outErr := r.Handler.Output(ctx, res); outErr != nil {
			return res, fmt.Errorf("output error: %w", outErr)
		}
	}
	if err != nil && signals != nil && signals.Interrupted() {
		r.Logger.Debug("Turn interrupted", "thread_id", r.Session.ThreadID)
		_ = r.Handler.SystemOutput(ctx, ">>> Turno interrotto.")
		return res, nil
	}
	return res, err
}

// resumePending answers a decision that an earlier run left open.
func (r *Runner) resumePending(ctx context.Context) error {
	cp, err := r.Engine.State(ctx, r.Session)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if !cp.Awaiting() {
		return nil
	}
	if r.Reviewer == nil {
		_ = r.Handler.SystemOutput(ctx, fmt.Sprintf("Sessione %s in attesa di una decisione su %s.", r.Session.ThreadID, cp.Pending.Node))
		return nil
	}

	r.Logger.Info("Resuming pending decision", "thread_id", r.Session.ThreadID, "node", cp.Pending.Node)
	decision, err := r.Reviewer.Await(ctx, cp.Pending.Request)
	if err != nil {
		if errors.Is(err, domain.ErrAwaitingDecision) {
			return nil
		}
		return err
	}
	_, err = r.turn(ctx, func(ctx context.Context) (*cinegraph.Result, error) {
		return r.Engine.Resume(ctx, r.Session, decision)
	})
	return err
}
