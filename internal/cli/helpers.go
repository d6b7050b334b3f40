package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/cinegraph/internal/logging"
	"github.com/aretw0/cinegraph/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// Unlike signal.NotifyContext it remembers which signal arrived.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sc.sigCh:
			sc.mu.Lock()
			sc.sigVal = sig
			sc.mu.Unlock()
			sc.Cancel()
		case <-sc.Context.Done():
		}
		sc.stop.Do(func() {
			signal.Stop(sc.sigCh)
		})
	}()

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the application logger.
// In debug mode it writes to stderr so that stdout stays readable.
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// printSystemMessage prints a standardized system message to w.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func logSessionStatus(logger *slog.Logger, w io.Writer, cp *domain.Checkpoint, quiet bool) {
	if len(cp.Messages) > 0 {
		logger.Info("Session Resumed", "thread_id", cp.Key.ThreadID, "messages", len(cp.Messages), "step", cp.Step)
		if !quiet {
			printSystemMessage(w, "Riprendo la sessione '%s' (%d messaggi).", cp.Key.ThreadID, len(cp.Messages))
		}
		return
	}
	logger.Info("Session Created", "thread_id", cp.Key.ThreadID)
	if !quiet {
		printSystemMessage(w, "Sessione '%s' attiva.", cp.Key.ThreadID)
	}
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.Debug("Enter Node", "node_id", e.NodeID, "thread_id", e.ThreadID)
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			logger.Debug("Leave Node", "node_id", e.NodeID, "signal", e.Signal)
		},
		OnCapabilityCall: func(ctx context.Context, e *domain.CapabilityEvent) {
			logger.Debug("Capability Call", "capability", e.Call.Name, "args", e.Call.Args)
		},
		OnCapabilityReturn: func(ctx context.Context, e *domain.CapabilityEvent) {
			logger.Debug("Capability Return", "capability", e.Call.Name, "duration", e.Duration, "skipped", e.Skipped, "bytes", len(e.Output))
		},
		OnCheckpoint: func(ctx context.Context, e *domain.CheckpointEvent) {
			logger.Debug("Checkpoint", "thread_id", e.ThreadID, "step", e.Step, "next", e.Next)
		},
	}
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)
}

// handleExecutionError maps interruptions to a clean exit.
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}
