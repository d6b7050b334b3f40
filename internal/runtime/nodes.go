package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/cinegraph/pkg/domain"
	"github.com/aretw0/cinegraph/pkg/ports"
	"github.com/google/uuid"
)

// decide asks the model for the next capability call.
// Free text is never appended: the model is not allowed to answer directly.
func (e *Engine) decide(ctx context.Context, t *turn) (domain.Signal, error) {
	out, err := e.svc.Model.Decide(ctx, ports.DecisionInput{
		Instruction: e.instruction,
		Tools:       e.svc.Capabilities.Tools(),
		Messages:    t.cp.Messages.Clone(),
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		e.logger.Warn("Decision model failed, ending turn",
			"thread_id", t.cp.Key.ThreadID,
			"err", err,
		)
		t.reason = domain.ReasonDecisionFailed
		return domain.SignalNoCall, nil
	}

	if out == nil || len(out.Calls) == 0 {
		if out != nil && out.Text != "" {
			e.logger.Debug("Discarding free text from decision model", "thread_id", t.cp.Key.ThreadID, "text", out.Text)
		}
		t.reason = domain.ReasonNoAction
		return domain.SignalNoCall, nil
	}

	calls := make([]domain.CapabilityCall, len(out.Calls))
	for i, c := range out.Calls {
		calls[i] = c.Clone()
		if calls[i].ID == "" {
			calls[i].ID = "call_" + uuid.NewString()
		}
	}
	t.append(domain.AssistantCall(calls...))
	return domain.SignalCall, nil
}

// dispatch runs the first call of the latest assistant message. Any further
// calls in that message get a result saying they were not run, so that every
// call id stays correlated with exactly one result.
func (e *Engine) dispatch(ctx context.Context, t *turn) (domain.Signal, error) {
	last, ok := t.cp.Messages.LastCall()
	if !ok {
		return domain.SignalContinue, nil
	}
	call := last.Calls[0]
	threadID := t.cp.Key.ThreadID

	if e.hooks.OnCapabilityCall != nil {
		e.hooks.OnCapabilityCall(ctx, &domain.CapabilityEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventCapabilityCall, ThreadID: threadID},
			Call:      call,
		})
	}
	e.logger.Debug("Capability call", "thread_id", threadID, "capability", call.Name, "args", call.Args)

	start := time.Now()
	var output string
	refused := e.researchOrder && call.Name == domain.CapGenerateArticle && !researched(t.cp.Messages.SinceLastHuman())
	if refused {
		output = fmt.Sprintf("Errore: prima di %s servono i risultati di %s e %s.",
			domain.CapGenerateArticle, domain.CapWebSearch, domain.CapScrapeWebsite)
	} else {
		output = e.svc.Capabilities.Invoke(ctx, call.Name, call.Args)
	}
	t.invoked = append(t.invoked, call.Clone())
	t.append(domain.CapabilityResult(call, output))

	if e.hooks.OnCapabilityReturn != nil {
		e.hooks.OnCapabilityReturn(ctx, &domain.CapabilityEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventCapabilityReturn, ThreadID: threadID},
			Call:      call,
			Output:    output,
			Duration:  time.Since(start),
			Skipped:   refused,
		})
	}

	for _, extra := range last.Calls[1:] {
		t.append(domain.CapabilityResult(extra,
			fmt.Sprintf("%s non eseguito: viene eseguita una sola capability per turno (%s).", extra.Name, call.Name)))
		e.logger.Debug("Skipped extra capability call", "thread_id", threadID, "capability", extra.Name)
	}

	if refused {
		return domain.SignalContinue, nil
	}
	return Route(&last), nil
}

// researched reports whether log holds both a web_search and a scrape_website result.
func researched(log domain.Log) bool {
	var searched, scraped bool
	for _, m := range log {
		if m.Role != domain.RoleCapability {
			continue
		}
		switch m.Name {
		case domain.CapWebSearch:
			searched = true
		case domain.CapScrapeWebsite:
			scraped = true
		}
	}
	return searched && scraped
}

// review hands the generated article to a human who may replace the prompt.
func (e *Engine) review(ctx context.Context, t *turn) (domain.Signal, error) {
	req, ok := artifact(t.cp.Messages, domain.CapGenerateArticle, domain.DecisionReviewArticle)
	if !ok {
		return domain.SignalContinue, nil
	}

	d, err := e.await(ctx, t, domain.NodeReview, req)
	if err != nil {
		return "", err
	}
	if d.Replaces() {
		t.append(domain.HumanMessage(d.Instruction))
	}
	return domain.SignalContinue, nil
}

// suggest lets a human turn one of the suggestions into a generation request.
func (e *Engine) suggest(ctx context.Context, t *turn) (domain.Signal, error) {
	req, ok := artifact(t.cp.Messages, domain.CapSuggestArticles, domain.DecisionPickSuggestion)
	if !ok {
		return domain.SignalContinue, nil
	}

	d, err := e.await(ctx, t, domain.NodeSuggestion, req)
	if err != nil {
		return "", err
	}
	if d.Replaces() {
		t.append(domain.HumanMessage(domain.SuggestionPrompt(d.Instruction, req.Content)))
	}
	return domain.SignalContinue, nil
}

// artifact finds the result of the latest dispatched call when it is of the given capability.
func artifact(log domain.Log, capability string, kind domain.DecisionKind) (domain.DecisionRequest, bool) {
	last, ok := log.LastCall()
	if !ok || last.Calls[0].Name != capability {
		return domain.DecisionRequest{}, false
	}
	res, ok := log.ResultFor(last.Calls[0].ID)
	if !ok {
		return domain.DecisionRequest{}, false
	}
	return domain.DecisionRequest{Kind: kind, CallID: res.CallID, Content: res.Content}, true
}

// await returns the decision supplied by Resume, or asks the reviewer.
func (e *Engine) await(ctx context.Context, t *turn, node domain.NodeID, req domain.DecisionRequest) (domain.Decision, error) {
	if t.decision != nil {
		d := *t.decision
		t.decision = nil
		return d, nil
	}

	d, err := e.svc.Reviewer.Await(ctx, req)
	if errors.Is(err, domain.ErrAwaitingDecision) {
		t.pending = &domain.Pending{Node: node, Request: req}
		return domain.Decision{}, err
	}
	if err != nil {
		return domain.Decision{}, fmt.Errorf("reviewer: %w", err)
	}
	return d, nil
}
