package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DecisionKind names the situation a human is asked to decide on.
type DecisionKind string

const (
	DecisionReviewArticle  DecisionKind = "review_article"
	DecisionPickSuggestion DecisionKind = "pick_suggestion"
)

// DecisionRequest is what the engine shows a human before suspending.
type DecisionRequest struct {
	Kind    DecisionKind `json:"kind"`
	CallID  string       `json:"call_id"`
	Content string       `json:"content"`
}

// Decision is the payload returned by a human: keep the output as is, or
// replace it with a new instruction.
type Decision struct {
	Accept      bool   `json:"accept"`
	Instruction string `json:"instruction,omitempty"`
}

// Keep returns a decision that leaves the log untouched.
func Keep() Decision { return Decision{Accept: true} }

// Replace returns a decision carrying a new instruction.
func Replace(instruction string) Decision {
	return Decision{Instruction: instruction}
}

// Replaces reports whether the decision carries a usable instruction.
func (d Decision) Replaces() bool {
	return !d.Accept && strings.TrimSpace(d.Instruction) != ""
}

// Pending records a suspended node and the request shown to the human.
type Pending struct {
	Node    NodeID          `json:"node"`
	Request DecisionRequest `json:"request"`
}

// IsAffirmative reports whether a console answer means yes.
func IsAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "sì", "si", "s", "y", "yes":
		return true
	}
	return false
}

var numberedLine = regexp.MustCompile(`^\s*(\d+)[.)]\s*(.+?)\s*$`)

// SuggestionTopic resolves a human choice against a numbered suggestion list.
// A bare number selects the matching line; any other text is used verbatim.
func SuggestionTopic(choice, suggestions string) string {
	choice = strings.TrimSpace(choice)
	n, err := strconv.Atoi(choice)
	if err != nil {
		return choice
	}
	for _, line := range strings.Split(suggestions, "\n") {
		m := numberedLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if idx, _ := strconv.Atoi(m[1]); idx == n {
			return strings.Trim(m[2], `"*`)
		}
	}
	return choice
}

// SuggestionPrompt is the human message synthesized from a chosen suggestion.
func SuggestionPrompt(choice, suggestions string) string {
	return fmt.Sprintf("Genera un articolo sul topic: %s", SuggestionTopic(choice, suggestions))
}
