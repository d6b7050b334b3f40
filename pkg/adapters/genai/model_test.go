package genai

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/cinegraph/pkg/domain"
	"github.com/aretw0/cinegraph/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	resp     *genai.GenerateContentResponse
	err      error
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model, f.contents, f.config = model, contents, config
	return f.resp, f.err
}

func reply(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Role: string(genai.RoleModel), Parts: parts},
	}}}
}

func TestDeclarations(t *testing.T) {
	decls := declarations([]domain.Tool{
		{Name: domain.CapCheckFact, Description: "verifica", Parameters: []domain.Parameter{
			{Name: "content", Required: true},
			{Name: "note"},
		}},
		{Name: domain.CapSuggestArticles},
	})
	require.Len(t, decls, 2)

	assert.Equal(t, domain.CapCheckFact, decls[0].Name)
	assert.Equal(t, genai.TypeObject, decls[0].Parameters.Type)
	assert.Equal(t, []string{"content"}, decls[0].Parameters.Required)
	assert.Equal(t, genai.TypeString, decls[0].Parameters.Properties["note"].Type)
	assert.Equal(t, domain.CapSuggestArticles, decls[1].Name)
	assert.Nil(t, decls[1].Parameters)
}

func TestContents(t *testing.T) {
	call1 := domain.CapabilityCall{ID: "c1", Name: domain.CapWebSearch, Args: map[string]string{"topic": "Dune"}}
	call2 := domain.CapabilityCall{ID: "c2", Name: domain.CapScrapeWebsite}
	log := domain.Log{
		domain.HumanMessage("articolo su Dune"),
		domain.AssistantCall(call1, call2),
		domain.CapabilityResult(call1, "risultati"),
		domain.CapabilityResult(call2, "non eseguito"),
		domain.HumanMessage("grazie"),
	}

	got := contents(log)
	require.Len(t, got, 4)

	assert.Equal(t, string(genai.RoleUser), got[0].Role)
	assert.Equal(t, "articolo su Dune", got[0].Parts[0].Text)

	assert.Equal(t, string(genai.RoleModel), got[1].Role)
	require.Len(t, got[1].Parts, 2)
	assert.Equal(t, "c1", got[1].Parts[0].FunctionCall.ID)
	assert.Equal(t, map[string]any{"topic": "Dune"}, got[1].Parts[0].FunctionCall.Args)

	require.Len(t, got[2].Parts, 2, "results of one model turn are grouped")
	assert.Equal(t, "c2", got[2].Parts[1].FunctionResponse.ID)
	assert.Equal(t, map[string]any{"output": "risultati"}, got[2].Parts[0].FunctionResponse.Response)

	assert.Equal(t, "grazie", got[3].Parts[0].Text)
}

func TestDecide(t *testing.T) {
	gen := &fakeGenerator{resp: reply(
		&genai.Part{Text: "Cerco prima. "},
		&genai.Part{FunctionCall: &genai.FunctionCall{ID: "x", Name: domain.CapWebSearch, Args: map[string]any{"topic": "Dune", "n": 3}}},
	)}
	m := newModel(gen, Config{Temperature: 0.7})

	out, err := m.Decide(context.Background(), ports.DecisionInput{
		Instruction: "sistema",
		Tools:       []domain.Tool{{Name: domain.CapWebSearch}},
		Messages:    domain.Log{domain.HumanMessage("ciao")},
	})
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, gen.model)
	assert.Equal(t, "sistema", gen.config.SystemInstruction.Parts[0].Text)
	assert.Equal(t, genai.FunctionCallingConfigModeAuto, gen.config.ToolConfig.FunctionCallingConfig.Mode)
	assert.InDelta(t, 0.7, *gen.config.Temperature, 0.0001)

	require.Len(t, out.Calls, 1)
	assert.Equal(t, map[string]string{"topic": "Dune", "n": "3"}, out.Calls[0].Args)
	assert.Equal(t, "Cerco prima. ", out.Text)
}

func TestDecide_Error(t *testing.T) {
	m := newModel(&fakeGenerator{err: errors.New("quota")}, Config{Model: "gemini-test"})
	_, err := m.Decide(context.Background(), ports.DecisionInput{})
	assert.ErrorContains(t, err, "quota")
	assert.Equal(t, "gemini-test", m.Name())
}

func TestDecide_EmptyResponse(t *testing.T) {
	m := newModel(&fakeGenerator{resp: &genai.GenerateContentResponse{}}, Config{})
	out, err := m.Decide(context.Background(), ports.DecisionInput{})
	require.NoError(t, err)
	assert.Empty(t, out.Calls)
	assert.Empty(t, out.Text)
}

func TestComplete(t *testing.T) {
	gen := &fakeGenerator{resp: reply(&genai.Part{Text: "  Un articolo.\n"})}
	m := newModel(gen, Config{})

	out, err := m.Complete(context.Background(), "esperto", "Prompt dell'articolo: Dune")
	require.NoError(t, err)
	assert.Equal(t, "Un articolo.", out)
	assert.Nil(t, gen.config.Tools)
	require.Len(t, gen.contents, 1)
	assert.Equal(t, "Prompt dell'articolo: Dune", gen.contents[0].Parts[0].Text)
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}
