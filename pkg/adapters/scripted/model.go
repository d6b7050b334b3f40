// Package scripted provides deterministic model and reviewer adapters for
// tests, examples and offline runs.
package scripted

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/cinegraph/pkg/domain"
	"github.com/aretw0/cinegraph/pkg/ports"
)

// Response configures one model turn in a scripted sequence.
type Response struct {
	Calls []domain.CapabilityCall
	Text  string
	Err   error
}

// Call is shorthand for a response requesting a single capability.
func Call(name string, args map[string]string) Response {
	return Response{Calls: []domain.CapabilityCall{{Name: name, Args: args}}}
}

// Silence is a response with no calls, which ends the turn.
func Silence() Response { return Response{} }

// Model is a DecisionModel that replays a fixed script.
type Model struct {
	mu        sync.Mutex
	index     int
	responses []Response
	inputs    []ports.DecisionInput
}

var _ ports.DecisionModel = (*Model)(nil)

// NewModel creates a model that returns responses in order.
func NewModel(responses ...Response) *Model {
	cloned := make([]Response, len(responses))
	copy(cloned, responses)
	return &Model{responses: cloned}
}

// Decide returns the next scripted response.
func (m *Model) Decide(_ context.Context, in ports.DecisionInput) (*ports.DecisionOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	in.Messages = in.Messages.Clone()
	m.inputs = append(m.inputs, in)

	if m.index >= len(m.responses) {
		return nil, fmt.Errorf("script exhausted at step %d", m.index+1)
	}
	current := m.responses[m.index]
	m.index++
	if current.Err != nil {
		return nil, current.Err
	}

	out := &ports.DecisionOutput{Text: current.Text}
	for i, c := range current.Calls {
		c = c.Clone()
		if c.ID == "" {
			c.ID = fmt.Sprintf("call_%d_%d", m.index, i)
		}
		out.Calls = append(out.Calls, c)
	}
	return out, nil
}

// Inputs returns every input the model was called with.
func (m *Model) Inputs() []ports.DecisionInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.DecisionInput(nil), m.inputs...)
}

// Remaining reports how many scripted responses are left.
func (m *Model) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.responses) - m.index
}

// Completer answers every prompt with a canned text derived from it.
type Completer struct {
	mu      sync.Mutex
	replies map[string]string
	prompts []string
}

var _ ports.Completer = (*Completer)(nil)

// NewCompleter creates a completer. replies maps a substring of the system
// prompt to the reply returned for it.
func NewCompleter(replies map[string]string) *Completer {
	return &Completer{replies: replies}
}

// Complete returns the first reply whose key occurs in system, or a stub.
func (c *Completer) Complete(_ context.Context, system, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)

	for k, v := range c.replies {
		if strings.Contains(system, k) {
			return v, nil
		}
	}
	first, _, _ := strings.Cut(strings.TrimSpace(prompt), "\n")
	return "[offline] " + first, nil
}

// Prompts returns the prompts received so far.
func (c *Completer) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}
