package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/cinegraph/internal/config"
)

// ChatOptions contains all the configuration for the chat command.
type ChatOptions struct {
	Dir      string
	JSON     bool
	Debug    bool
	ThreadID string
	Fresh    bool
	Quiet    bool

	// In and Out default to stdin and stdout.
	In  io.Reader
	Out io.Writer

	// FollowUp overrides policy.follow_up when set.
	FollowUp *bool

	// Engine overrides the model wiring; tests set Model and Completer here.
	Engine EngineOptions
}

// Execute loads the configuration of opts.Dir and runs a chat session.
func Execute(opts ChatOptions) error {
	cfg, err := config.LoadDir(opts.Dir)
	if err != nil {
		return err
	}
	if opts.FollowUp != nil {
		cfg.Policy.FollowUp = *opts.FollowUp
	}

	if opts.Fresh && opts.ThreadID != "" {
		backend, err := NewBackend(cfg, opts.Dir)
		if err != nil {
			return err
		}
		key := cfg.SessionFor(opts.ThreadID).Key()
		err = backend.Store.Delete(context.Background(), key)
		backend.Close()
		if err != nil {
			return fmt.Errorf("failed to reset session: %w", err)
		}
	}

	return RunSession(cfg, opts)
}
