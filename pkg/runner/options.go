package runner

import (
	"log/slog"

	"github.com/aretw0/cinegraph/pkg/domain"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithSession sets the session the runner talks to. Defaults to a fresh thread.
func WithSession(cfg domain.SessionConfig) Option {
	return func(r *Runner) {
		r.Session = cfg
	}
}

// WithReviewer sets who answers a decision left pending by an earlier run.
func WithReviewer(rev *ConsoleReviewer) Option {
	return func(r *Runner) {
		r.Reviewer = rev
	}
}

// WithFollowUp enables the "anything else?" question after each turn.
func WithFollowUp(enabled bool) Option {
	return func(r *Runner) {
		r.FollowUp = enabled
	}
}

// WithSignals makes an interrupt cancel the running turn instead of the whole
// loop. An interrupt while waiting for input ends the conversation.
func WithSignals(enabled bool) Option {
	return func(r *Runner) {
		r.Signals = enabled
	}
}
