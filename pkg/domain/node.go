package domain

// NodeID identifies a node of the orchestration graph.
type NodeID string

const (
	NodeAssistant  NodeID = "assistant"
	NodeTools      NodeID = "tools"
	NodeReview     NodeID = "human_review"
	NodeSuggestion NodeID = "deal_with_suggestion"
	NodeEnd        NodeID = "end"
)

// Signal is the outcome a node reports to select the next transition.
type Signal string

const (
	SignalCall       Signal = "call"
	SignalNoCall     Signal = "no_call"
	SignalContinue   Signal = "continue"
	SignalReview     Signal = "review"
	SignalSuggestion Signal = "suggestion"
)

// Reason explains why a turn ended.
type Reason string

const (
	ReasonNoAction       Reason = "no_action"
	ReasonDecisionFailed Reason = "decision_failed"
	ReasonSuspended      Reason = "suspended"
)
