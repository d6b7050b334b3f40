package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/cinegraph"
	"github.com/aretw0/cinegraph/pkg/adapters/scripted"
	"github.com/aretw0/cinegraph/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, responses ...scripted.Response) *Server {
	t.Helper()
	eng, err := cinegraph.New(
		cinegraph.WithModel(scripted.NewModel(responses...)),
		cinegraph.WithCompleter(scripted.NewCompleter(map[string]string{
			"editor creativo": "1. Villeneuve e il deserto\n2. Il noir italiano",
		})),
	)
	require.NoError(t, err)
	return NewServer(eng, nil)
}

func TestServer_SuggestionRoundTrip(t *testing.T) {
	s := newServer(t,
		scripted.Call(domain.CapSuggestArticles, nil),
		scripted.Silence(),
	)
	ctx := context.Background()
	thread := ThreadArgs{ThreadID: "t1"}

	out, err := s.handleSendMessage(ctx, mcp.CallToolRequest{}, SendMessageArgs{ThreadArgs: thread, Input: "idee?"})
	require.NoError(t, err)
	require.NotNil(t, out.Suspended)
	assert.Equal(t, domain.NodeSuggestion, out.Suspended.Node)
	assert.Equal(t, []string{domain.CapSuggestArticles}, names(out.Invoked))

	out, err = s.handleResume(ctx, mcp.CallToolRequest{}, ResumeArgs{ThreadArgs: thread, Instruction: "2"})
	require.NoError(t, err)
	assert.Nil(t, out.Suspended)
	require.NotEmpty(t, out.Appended)
	assert.Equal(t, domain.HumanMessage("Genera un articolo sul topic: Il noir italiano"), out.Appended[0])

	cp, err := s.handleGetThread(ctx, mcp.CallToolRequest{}, thread)
	require.NoError(t, err)
	assert.Equal(t, thread.Session().Key(), cp.Key)
	assert.False(t, cp.Awaiting())
}

func TestServer_Errors(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	_, err := s.handleSendMessage(ctx, mcp.CallToolRequest{}, SendMessageArgs{ThreadArgs: ThreadArgs{ThreadID: "t1"}})
	assert.Error(t, err)

	_, err = s.handleSendMessage(ctx, mcp.CallToolRequest{}, SendMessageArgs{Input: "ciao"})
	assert.ErrorIs(t, err, domain.ErrInvalidSession)

	_, err = s.handleResume(ctx, mcp.CallToolRequest{}, ResumeArgs{ThreadArgs: ThreadArgs{ThreadID: "t1"}, Accept: true})
	assert.ErrorIs(t, err, domain.ErrNoPendingDecision)
}

func TestThreadArgs_Defaults(t *testing.T) {
	cfg := ThreadArgs{ThreadID: "t1", Namespace: "blog"}.Session()
	assert.Equal(t, domain.SessionConfig{ThreadID: "t1", Namespace: "blog", CheckpointID: domain.DefaultCheckpointID}, cfg)
}

func names(calls []domain.CapabilityCall) []string {
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Name
	}
	return out
}
