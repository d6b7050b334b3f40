package ports

import (
	"context"

	"github.com/aretw0/cinegraph/pkg/domain"
)

// DecisionInput is everything the decision model sees for one step.
type DecisionInput struct {
	Instruction string
	Tools       []domain.Tool
	Messages    domain.Log
}

// DecisionOutput is the model's answer. Text is whatever free text came back
// alongside (or instead of) the calls.
type DecisionOutput struct {
	Calls []domain.CapabilityCall
	Text  string
}

// DecisionModel selects the next capability call from the conversation so far.
type DecisionModel interface {
	Decide(ctx context.Context, in DecisionInput) (*DecisionOutput, error)
}

// Completer is a plain text-in/text-out model call.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Reviewer hands an artifact to a human and returns their decision.
//
// A reviewer that cannot answer synchronously returns an error wrapping
// domain.ErrAwaitingDecision; the engine then persists the session and
// waits for a later resume.
type Reviewer interface {
	Await(ctx context.Context, req domain.DecisionRequest) (domain.Decision, error)
}

// ReviewerFunc adapts a function to the Reviewer interface.
type ReviewerFunc func(ctx context.Context, req domain.DecisionRequest) (domain.Decision, error)

func (f ReviewerFunc) Await(ctx context.Context, req domain.DecisionRequest) (domain.Decision, error) {
	return f(ctx, req)
}

// Suspend is a Reviewer that never answers synchronously. Engines using it
// persist the pending decision and wait for a resume call.
var Suspend Reviewer = ReviewerFunc(func(context.Context, domain.DecisionRequest) (domain.Decision, error) {
	return domain.Decision{}, domain.ErrAwaitingDecision
})
