package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/cinegraph/pkg/domain"
	"github.com/aretw0/cinegraph/pkg/ports"
)

// Console prompts for the two decision points.
const (
	ReviewQuestion        = "Vuoi rigenerarlo con un nuovo prompt? (sì/no)"
	ReviewInstruction     = "Inserisci il nuovo prompt per l'articolo"
	SuggestionQuestion    = "Vuoi generare un articolo su uno di questi suggerimenti? (sì/no)"
	SuggestionInstruction = "Inserisci il titolo o il numero del suggerimento scelto"
)

// ConsoleReviewer answers decisions by asking the human through an IOHandler.
// It is the interactive counterpart of ports.Suspend.
type ConsoleReviewer struct {
	handler IOHandler
}

var _ ports.Reviewer = (*ConsoleReviewer)(nil)

// NewConsoleReviewer creates a reviewer bound to handler.
func NewConsoleReviewer(handler IOHandler) *ConsoleReviewer {
	return &ConsoleReviewer{handler: handler}
}

// Await shows the artifact and asks whether to replace it.
// When input ends before an answer the session is suspended instead of failed.
func (c *ConsoleReviewer) Await(ctx context.Context, req domain.DecisionRequest) (domain.Decision, error) {
	title, question, instruction := "📝 ARTICOLO GENERATO:", ReviewQuestion, ReviewInstruction
	if req.Kind == domain.DecisionPickSuggestion {
		title, question, instruction = "🎥 Ecco i suggerimenti per articoli:", SuggestionQuestion, SuggestionInstruction
	}

	if err := c.handler.Content(ctx, title, req.Content); err != nil {
		return domain.Decision{}, err
	}

	answer, err := c.handler.Prompt(ctx, question)
	if err != nil {
		return domain.Decision{}, c.inputErr(err)
	}
	if !domain.IsAffirmative(answer) {
		if req.Kind == domain.DecisionPickSuggestion {
			_ = c.handler.SystemOutput(ctx, "👍 Va bene, torno al nodo assistant.")
		}
		return domain.Keep(), nil
	}

	text, err := c.handler.Prompt(ctx, instruction)
	if err != nil {
		return domain.Decision{}, c.inputErr(err)
	}
	if strings.TrimSpace(text) == "" {
		return domain.Keep(), nil
	}
	return domain.Replace(text), nil
}

func (c *ConsoleReviewer) inputErr(err error) error {
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: input closed", domain.ErrAwaitingDecision)
	}
	return err
}
