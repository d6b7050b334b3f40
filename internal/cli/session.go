package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/cinegraph"
	"github.com/aretw0/cinegraph/internal/config"
	"github.com/aretw0/cinegraph/internal/presentation/tui"
	"github.com/aretw0/cinegraph/pkg/runner"
)

// RunSession executes one interactive chat over the session selected by opts.
func RunSession(cfg *config.Config, opts ChatOptions) error {
	in, out := opts.In, opts.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	logger := opts.Engine.Logger
	if logger == nil {
		logger = createLogger(opts.Debug)
	}
	quiet := opts.JSON || opts.Quiet

	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(in, out)
	} else {
		text := runner.NewTextHandler(in, out, runner.WithTextHandlerRenderer(tui.NewRenderer(100)))
		defer text.Close()
		handler = text
	}
	if !quiet {
		tui.PrintBanner(out, cinegraph.Version)
	}

	// In text mode interrupts are scoped to the running turn by the runner.
	ctx := context.Background()
	var sigCtx *SignalContext
	if opts.JSON {
		sigCtx = NewSignalContext(ctx)
		defer sigCtx.Cancel()
		ctx = sigCtx
	}

	reviewer := runner.NewConsoleReviewer(handler)
	engineOpts := opts.Engine
	engineOpts.Dir = opts.Dir
	engineOpts.Debug = opts.Debug
	engineOpts.Logger = logger
	engineOpts.Reviewer = reviewer

	engine, backend, err := NewEngine(ctx, cfg, engineOpts)
	if err != nil {
		return err
	}
	defer backend.Close()

	sess := cfg.SessionFor(opts.ThreadID)
	cp, err := engine.State(ctx, sess)
	if err != nil {
		return fmt.Errorf("failed to init session: %w", err)
	}
	logSessionStatus(logger, out, cp, quiet)

	r := runner.NewRunner(engine,
		runner.WithLogger(logger),
		runner.WithInputHandler(handler),
		runner.WithSession(sess),
		runner.WithReviewer(reviewer),
		runner.WithFollowUp(cfg.Policy.FollowUp),
		runner.WithSignals(!opts.JSON),
	)
	runErr := r.Run(ctx)

	if sigCtx != nil && sigCtx.Err() != nil && runErr == nil {
		runErr = sigCtx.Err()
	}
	if !quiet {
		printSystemMessage(out, "Sessione '%s' salvata (%s).", sess.ThreadID, backend.Kind)
	}
	logger.Info("Session finished", "thread_id", sess.ThreadID, "err", runErr)
	return handleExecutionError(runErr)
}
