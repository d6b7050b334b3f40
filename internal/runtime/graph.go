package runtime

import (
	"fmt"
	"sort"

	"github.com/aretw0/cinegraph/pkg/domain"
)

type edge struct {
	from   domain.NodeID
	signal domain.Signal
}

// transitions is the whole graph. Every cycle passes back through the assistant node.
var transitions = map[edge]domain.NodeID{
	{domain.NodeAssistant, domain.SignalCall}:      domain.NodeTools,
	{domain.NodeAssistant, domain.SignalNoCall}:    domain.NodeEnd,
	{domain.NodeTools, domain.SignalContinue}:      domain.NodeAssistant,
	{domain.NodeTools, domain.SignalReview}:        domain.NodeReview,
	{domain.NodeTools, domain.SignalSuggestion}:    domain.NodeSuggestion,
	{domain.NodeReview, domain.SignalContinue}:     domain.NodeAssistant,
	{domain.NodeSuggestion, domain.SignalContinue}: domain.NodeAssistant,
}

// Next resolves the node that follows from on signal.
func Next(from domain.NodeID, signal domain.Signal) (domain.NodeID, error) {
	to, ok := transitions[edge{from, signal}]
	if !ok {
		return "", fmt.Errorf("no transition from %s on %s", from, signal)
	}
	return to, nil
}

// Route picks where the flow goes after a capability ran. It only looks at
// the first call of the latest assistant message, the one that was dispatched.
func Route(last *domain.Message) domain.Signal {
	if last == nil || len(last.Calls) == 0 {
		return domain.SignalContinue
	}
	switch last.Calls[0].Name {
	case domain.CapGenerateArticle:
		return domain.SignalReview
	case domain.CapSuggestArticles:
		return domain.SignalSuggestion
	}
	return domain.SignalContinue
}

// Edge is one transition of the graph.
type Edge struct {
	From   domain.NodeID
	Signal domain.Signal
	To     domain.NodeID
}

// Edges returns the transition table in a stable order.
func Edges() []Edge {
	out := make([]Edge, 0, len(transitions))
	for e, to := range transitions {
		out = append(out, Edge{From: e.from, Signal: e.signal, To: to})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return nodeOrder[out[i].From] < nodeOrder[out[j].From]
		}
		return out[i].Signal < out[j].Signal
	})
	return out
}

var nodeOrder = map[domain.NodeID]int{
	domain.NodeAssistant:  0,
	domain.NodeTools:      1,
	domain.NodeReview:     2,
	domain.NodeSuggestion: 3,
	domain.NodeEnd:        4,
}
