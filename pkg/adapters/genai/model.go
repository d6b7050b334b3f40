// Package genai adapts Google's Gemini API to the decision model and
// completer ports.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/cinegraph/internal/logging"
	"github.com/aretw0/cinegraph/pkg/domain"
	"github.com/aretw0/cinegraph/pkg/ports"
	"google.golang.org/genai"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-flash"

// generator is the slice of the SDK the adapter calls. *genai.Models satisfies it.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config configures a Model.
type Config struct {
	APIKey      string
	Model       string
	Temperature float32
	Logger      *slog.Logger
}

// Model talks to Gemini. It implements both ports.DecisionModel and ports.Completer.
type Model struct {
	gen         generator
	model       string
	temperature float32
	logger      *slog.Logger
}

var (
	_ ports.DecisionModel = (*Model)(nil)
	_ ports.Completer     = (*Model)(nil)
)

// New creates a Gemini client for the given key.
func New(ctx context.Context, cfg Config) (*Model, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("genai: API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newModel(client.Models, cfg), nil
}

func newModel(gen generator, cfg Config) *Model {
	m := &Model{gen: gen, model: cfg.Model, temperature: cfg.Temperature, logger: cfg.Logger}
	if m.model == "" {
		m.model = DefaultModel
	}
	if m.logger == nil {
		m.logger = logging.NewNop()
	}
	return m
}

// Name returns the configured model name.
func (m *Model) Name() string {
	return m.model
}

// Decide sends the log and capability declarations with automatic function calling.
func (m *Model) Decide(ctx context.Context, in ports.DecisionInput) (*ports.DecisionOutput, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(m.temperature),
		Tools:       []*genai.Tool{{FunctionDeclarations: declarations(in.Tools)}},
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: genai.FunctionCallingConfigModeAuto},
		},
	}
	if in.Instruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(in.Instruction, genai.RoleUser)
	}

	resp, err := m.gen.GenerateContent(ctx, m.model, contents(in.Messages), cfg)
	if err != nil {
		return nil, fmt.Errorf("GenAI generate failed: %w", err)
	}
	out := decisionFrom(resp)
	m.logger.Debug("Decision received", "model", m.model, "calls", len(out.Calls), "text_len", len(out.Text))
	return out, nil
}

// Complete runs a single system + user prompt exchange.
func (m *Model) Complete(ctx context.Context, system, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{Temperature: genai.Ptr(m.temperature)}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	resp, err := m.gen.GenerateContent(ctx, m.model, []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, cfg)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	return strings.TrimSpace(decisionFrom(resp).Text), nil
}

// declarations turns capability contracts into function declarations with
// string parameters. A contract without parameters gets no schema.
func declarations(tools []domain.Tool) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decl := &genai.FunctionDeclaration{Name: t.Name, Description: t.Description}
		// Gemini rejects OBJECT schemas without properties.
		if len(t.Parameters) > 0 {
			schema := &genai.Schema{Type: genai.TypeObject, Properties: make(map[string]*genai.Schema, len(t.Parameters))}
			for _, p := range t.Parameters {
				schema.Properties[p.Name] = &genai.Schema{Type: genai.TypeString, Description: p.Description}
				if p.Required {
					schema.Required = append(schema.Required, p.Name)
				}
			}
			decl.Parameters = schema
		}
		out = append(out, decl)
	}
	return out
}

// contents maps the log onto Gemini turns. Consecutive capability results
// are grouped into one user turn so they answer the calls of the preceding
// model turn together.
func contents(log domain.Log) []*genai.Content {
	var out []*genai.Content
	for _, msg := range log {
		switch msg.Role {
		case domain.RoleHuman:
			out = append(out, genai.NewContentFromText(msg.Content, genai.RoleUser))
		case domain.RoleAssistant:
			c := &genai.Content{Role: string(genai.RoleModel)}
			if msg.Content != "" {
				c.Parts = append(c.Parts, &genai.Part{Text: msg.Content})
			}
			for _, call := range msg.Calls {
				c.Parts = append(c.Parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					ID:   call.ID,
					Name: call.Name,
					Args: toAny(call.Args),
				}})
			}
			if len(c.Parts) > 0 {
				out = append(out, c)
			}
		case domain.RoleCapability:
			part := &genai.Part{FunctionResponse: &genai.FunctionResponse{
				ID:       msg.CallID,
				Name:     msg.Name,
				Response: map[string]any{"output": msg.Content},
			}}
			if n := len(out); n > 0 && isResponseTurn(out[n-1]) {
				out[n-1].Parts = append(out[n-1].Parts, part)
				continue
			}
			out = append(out, &genai.Content{Role: string(genai.RoleUser), Parts: []*genai.Part{part}})
		}
	}
	return out
}

func isResponseTurn(c *genai.Content) bool {
	return c.Role == string(genai.RoleUser) && len(c.Parts) > 0 && c.Parts[0].FunctionResponse != nil
}

// decisionFrom reads calls and text from the first candidate.
func decisionFrom(resp *genai.GenerateContentResponse) *ports.DecisionOutput {
	out := &ports.DecisionOutput{}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out
	}
	var text []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if fc := part.FunctionCall; fc != nil {
			out.Calls = append(out.Calls, domain.CapabilityCall{ID: fc.ID, Name: fc.Name, Args: toStrings(fc.Args)})
			continue
		}
		if part.Text != "" && !part.Thought {
			text = append(text, part.Text)
		}
	}
	out.Text = strings.Join(text, "")
	return out
}

func toAny(args map[string]string) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = v
	}
	return out
}

// toStrings flattens model arguments to strings; non-string values are
// rendered with fmt.
func toStrings(args map[string]any) map[string]string {
	if len(args) == 0 {
		return nil
	}
	out := make(map[string]string, len(args))
	for k, raw := range args {
		switch v := raw.(type) {
		case string:
			out[k] = v
		case nil:
			out[k] = ""
		default:
			out[k] = fmt.Sprint(v)
		}
	}
	return out
}
