package runner

import (
	"context"

	"github.com/aretw0/cinegraph"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Input reads the next human turn.
	Input(ctx context.Context) (string, error)

	// Prompt asks a question and reads the answer.
	Prompt(ctx context.Context, question string) (string, error)

	// Output presents the outcome of a turn.
	Output(ctx context.Context, res *cinegraph.Result) error

	// Content presents an artifact (an article, a list of suggestions) under a title.
	Content(ctx context.Context, title, body string) error

	// SystemOutput presents a meta-message to the user (status, errors).
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms artifact text before it is printed, e.g. markdown to ANSI.
type ContentRenderer func(string) (string, error)
