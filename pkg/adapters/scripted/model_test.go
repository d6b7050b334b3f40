package scripted_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/cinegraph/pkg/adapters/scripted"
	"github.com/aretw0/cinegraph/pkg/domain"
	"github.com/aretw0/cinegraph/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModel_ReplaysScript(t *testing.T) {
	ctx := context.Background()
	m := scripted.NewModel(
		scripted.Call(domain.CapWebSearch, map[string]string{"topic": "Dune"}),
		scripted.Response{Err: errors.New("quota")},
		scripted.Silence(),
	)

	out, err := m.Decide(ctx, ports.DecisionInput{Messages: domain.Log{domain.HumanMessage("x")}})
	require.NoError(t, err)
	require.Len(t, out.Calls, 1)
	assert.Equal(t, domain.CapWebSearch, out.Calls[0].Name)
	assert.NotEmpty(t, out.Calls[0].ID)

	_, err = m.Decide(ctx, ports.DecisionInput{})
	assert.EqualError(t, err, "quota")

	out, err = m.Decide(ctx, ports.DecisionInput{})
	require.NoError(t, err)
	assert.Empty(t, out.Calls)

	_, err = m.Decide(ctx, ports.DecisionInput{})
	assert.EqualError(t, err, "script exhausted at step 4")

	assert.Len(t, m.Inputs(), 4)
	assert.Equal(t, 0, m.Remaining())
}

func TestCompleter(t *testing.T) {
	c := scripted.NewCompleter(map[string]string{"fact-checker": "Confermato."})

	out, err := c.Complete(context.Background(), "Sei un fact-checker", "testo")
	require.NoError(t, err)
	assert.Equal(t, "Confermato.", out)

	out, err = c.Complete(context.Background(), "altro", "Prompt dell'articolo: Dune\nresto")
	require.NoError(t, err)
	assert.Equal(t, "[offline] Prompt dell'articolo: Dune", out)
	assert.Len(t, c.Prompts(), 2)
}

func TestReviewer_SuspendsWhenEmpty(t *testing.T) {
	r := scripted.NewReviewer(domain.Keep())

	d, err := r.Await(context.Background(), domain.DecisionRequest{Kind: domain.DecisionReviewArticle})
	require.NoError(t, err)
	assert.True(t, d.Accept)

	_, err = r.Await(context.Background(), domain.DecisionRequest{})
	assert.ErrorIs(t, err, domain.ErrAwaitingDecision)
	assert.Len(t, r.Requests(), 2)
}
