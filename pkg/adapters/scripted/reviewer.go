package scripted

import (
	"context"
	"sync"

	"github.com/aretw0/cinegraph/pkg/domain"
	"github.com/aretw0/cinegraph/pkg/ports"
)

// Reviewer answers human-decision requests from a queue. Once the queue is
// empty it suspends the session.
type Reviewer struct {
	mu        sync.Mutex
	decisions []domain.Decision
	requests  []domain.DecisionRequest
}

var _ ports.Reviewer = (*Reviewer)(nil)

// NewReviewer creates a reviewer returning decisions in order.
func NewReviewer(decisions ...domain.Decision) *Reviewer {
	return &Reviewer{decisions: append([]domain.Decision(nil), decisions...)}
}

// Await pops the next decision.
func (r *Reviewer) Await(_ context.Context, req domain.DecisionRequest) (domain.Decision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)

	if len(r.decisions) == 0 {
		return domain.Decision{}, domain.ErrAwaitingDecision
	}
	d := r.decisions[0]
	r.decisions = r.decisions[1:]
	return d, nil
}

// Requests returns every request seen.
func (r *Reviewer) Requests() []domain.DecisionRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.DecisionRequest(nil), r.requests...)
}
