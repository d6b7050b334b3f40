package runner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/cinegraph"
	"github.com/aretw0/cinegraph/pkg/adapters/memory"
	"github.com/aretw0/cinegraph/pkg/adapters/scripted"
	"github.com/aretw0/cinegraph/pkg/domain"
	"github.com/aretw0/cinegraph/pkg/ports"
	"github.com/aretw0/cinegraph/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, model *scripted.Model, reviewer ports.Reviewer, store ports.CheckpointStore) *cinegraph.Engine {
	t.Helper()
	eng, err := cinegraph.New(
		cinegraph.WithModel(model),
		cinegraph.WithCompleter(scripted.NewCompleter(map[string]string{
			"esperto cinematografico": "# Dune\nIl deserto come destino.",
		})),
		cinegraph.WithReviewer(reviewer),
		cinegraph.WithStore(store),
	)
	require.NoError(t, err)
	return eng
}

func newText(t *testing.T, input string) (*runner.TextHandler, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	h := runner.NewTextHandler(strings.NewReader(input), out)
	t.Cleanup(h.Close)
	return h, out
}

func TestIsTermination(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"no", true},
		{"No grazie", true},
		{"basta così", true},
		{"ok, ESCI", true},
		{"niente", true},
		{"stop!", true},
		{"un film noir", false},
		{"stopmotion e animazione", false},
		{"nonna", false},
		{"scrivi un articolo su Dune", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, runner.IsTermination(tt.line))
		})
	}
}

func TestRunner_TerminationSkipsEngine(t *testing.T) {
	model := scripted.NewModel()
	h, out := newText(t, "basta così\n")
	eng := newEngine(t, model, runner.NewConsoleReviewer(h), memory.NewStore())

	require.NoError(t, runner.NewRunner(eng, runner.WithInputHandler(h)).Run(context.Background()))

	assert.Contains(t, out.String(), runner.Goodbye)
	assert.Empty(t, model.Inputs())
}

func TestRunner_NoToolInvoked(t *testing.T) {
	model := scripted.NewModel(scripted.Silence())
	h, out := newText(t, "ciao\n")
	eng := newEngine(t, model, runner.NewConsoleReviewer(h), memory.NewStore())

	require.NoError(t, runner.NewRunner(eng, runner.WithInputHandler(h)).Run(context.Background()))

	assert.Contains(t, out.String(), "🤖 HUMAN:\nciao")
	assert.Contains(t, out.String(), "Nessun tool è stato invocato.")
}

func TestRunner_ReviewAndRegenerate(t *testing.T) {
	model := scripted.NewModel(
		scripted.Call(domain.CapGenerateArticle, map[string]string{"prompt": "Dune"}),
		scripted.Call(domain.CapGenerateArticle, map[string]string{"prompt": "Dune, più breve"}),
		scripted.Silence(),
	)
	h, out := newText(t, "articolo su Dune\nsì\npiù breve\nno\nno\n")
	eng := newEngine(t, model, runner.NewConsoleReviewer(h), memory.NewStore())
	cfg := domain.NewSessionConfig()

	r := runner.NewRunner(eng, runner.WithInputHandler(h), runner.WithSession(cfg), runner.WithFollowUp(true))
	require.NoError(t, r.Run(context.Background()))

	text := out.String()
	assert.Equal(t, 2, strings.Count(text, "📝 ARTICOLO GENERATO:"))
	assert.Contains(t, text, runner.ReviewQuestion)
	assert.Contains(t, text, runner.ReviewInstruction)
	assert.Contains(t, text, "- Tool: generate_article\n  Args: map[prompt:Dune]")
	assert.Contains(t, text, runner.FollowUp)
	assert.Contains(t, text, runner.Farewell)

	cp, err := eng.State(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, cp.Messages, 6)
	assert.Equal(t, domain.HumanMessage("più breve"), cp.Messages[3])
}

func TestRunner_SuggestionDeclined(t *testing.T) {
	model := scripted.NewModel(scripted.Call(domain.CapSuggestArticles, nil), scripted.Silence())
	h, out := newText(t, "dammi idee\nno\n")
	eng := newEngine(t, model, runner.NewConsoleReviewer(h), memory.NewStore())

	require.NoError(t, runner.NewRunner(eng, runner.WithInputHandler(h)).Run(context.Background()))

	assert.Contains(t, out.String(), runner.SuggestionQuestion)
	assert.Contains(t, out.String(), "torno al nodo assistant")
}

func TestRunner_SuspendOnEOFAndResume(t *testing.T) {
	store := memory.NewStore()
	cfg := domain.NewSessionConfig()
	ctx := context.Background()

	first, out := newText(t, "articolo su Dune\n")
	model := scripted.NewModel(scripted.Call(domain.CapGenerateArticle, map[string]string{"prompt": "Dune"}))
	eng := newEngine(t, model, runner.NewConsoleReviewer(first), store)
	require.NoError(t, runner.NewRunner(eng, runner.WithInputHandler(first), runner.WithSession(cfg)).Run(ctx))
	assert.Contains(t, out.String(), "sospesa")

	cp, err := eng.State(ctx, cfg)
	require.NoError(t, err)
	require.True(t, cp.Awaiting())

	second, out := newText(t, "no\n")
	reviewer := runner.NewConsoleReviewer(second)
	eng = newEngine(t, scripted.NewModel(scripted.Silence()), reviewer, store)
	r := runner.NewRunner(eng, runner.WithInputHandler(second), runner.WithSession(cfg), runner.WithReviewer(reviewer))
	require.NoError(t, r.Run(ctx))

	assert.Contains(t, out.String(), "📝 ARTICOLO GENERATO:")
	cp, err = eng.State(ctx, cfg)
	require.NoError(t, err)
	assert.False(t, cp.Awaiting())
	assert.Len(t, cp.Messages, 3)
}

func TestTextHandler_Renderer(t *testing.T) {
	h, out := newText(t, "")
	h.Renderer = func(s string) (string, error) { return "Rendered: " + s, nil }

	require.NoError(t, h.Content(context.Background(), "Titolo", "corpo"))
	assert.Contains(t, out.String(), "Rendered: corpo")
}

func TestTextHandler_InputRetriesInvalid(t *testing.T) {
	t.Setenv(runner.EnvMaxInputSize, "8")
	h, out := newText(t, "troppo lungo davvero\nok\n")

	got, err := h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Contains(t, out.String(), "Riprova.")
}

func TestJSONHandler(t *testing.T) {
	out := &bytes.Buffer{}
	h := runner.NewJSONHandler(strings.NewReader("\"sì\"\ntesto libero\n"), out)
	ctx := context.Background()

	answer, err := h.Prompt(ctx, runner.ReviewQuestion)
	require.NoError(t, err)
	assert.Equal(t, "sì", answer)

	line, err := h.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "testo libero", line)

	require.NoError(t, h.Output(ctx, &cinegraph.Result{Reason: domain.ReasonNoAction}))

	dec := json.NewDecoder(out)
	var ev runner.JSONEvent
	require.NoError(t, dec.Decode(&ev))
	assert.Equal(t, runner.EventPrompt, ev.Type)
	assert.Equal(t, runner.ReviewQuestion, ev.Question)
	require.NoError(t, dec.Decode(&ev))
	assert.Equal(t, runner.EventResult, ev.Type)
	assert.Equal(t, domain.ReasonNoAction, ev.Result.Reason)
}

func TestTextHandler_TraceListsDispatchedCalls(t *testing.T) {
	h, out := newText(t, "")
	a := domain.CapabilityCall{ID: "1", Name: domain.CapWebSearch, Args: map[string]string{"topic": "Dune"}}
	b := domain.CapabilityCall{ID: "2", Name: domain.CapScrapeWebsite}

	require.NoError(t, h.Output(context.Background(), &cinegraph.Result{
		Appended: domain.Log{
			domain.AssistantCall(a, b),
			domain.CapabilityResult(a, "risultati"),
			domain.CapabilityResult(b, "scrape_website non eseguito"),
		},
		Invoked: []domain.CapabilityCall{a},
	}))

	assert.Contains(t, out.String(), "- Tool: web_search\n  Args: map[topic:Dune]")
	assert.NotContains(t, out.String(), "- Tool: scrape_website")
	assert.NotContains(t, out.String(), "Nessun tool")
}
