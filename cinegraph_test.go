package cinegraph_test

import (
	"context"
	"testing"

	"github.com/aretw0/cinegraph"
	"github.com/aretw0/cinegraph/pkg/adapters/file"
	"github.com/aretw0/cinegraph/pkg/adapters/scripted"
	"github.com/aretw0/cinegraph/pkg/domain"
	"github.com/aretw0/cinegraph/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresModel(t *testing.T) {
	_, err := cinegraph.New()
	assert.Error(t, err)
}

func TestNew_RequiresCompleterForBuiltins(t *testing.T) {
	_, err := cinegraph.New(cinegraph.WithModel(scripted.NewModel()))
	assert.Error(t, err)

	_, err = cinegraph.New(cinegraph.WithModel(scripted.NewModel()), cinegraph.WithRegistry(registry.NewRegistry()))
	assert.NoError(t, err, "a custom registry needs no completer")
}

func TestEngine_OffersSevenCapabilities(t *testing.T) {
	eng, err := cinegraph.New(
		cinegraph.WithModel(scripted.NewModel()),
		cinegraph.WithCompleter(scripted.NewCompleter(nil)),
	)
	require.NoError(t, err)
	assert.Len(t, eng.Tools(), 7)
	assert.Len(t, eng.Registry().Tools(), 7)
}

func TestEngine_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	eng, err := cinegraph.New(
		cinegraph.WithModel(scripted.NewModel(
			scripted.Call(domain.CapSuggestArticles, nil),
			scripted.Silence(),
		)),
		cinegraph.WithCompleter(scripted.NewCompleter(map[string]string{"editor creativo": "1. Noir\n2. Western"})),
		cinegraph.WithReviewer(scripted.NewReviewer(domain.Keep())),
		cinegraph.WithStore(file.New(t.TempDir())),
	)
	require.NoError(t, err)

	cfg := domain.NewSessionConfig()
	res, err := eng.Invoke(ctx, cfg, "idee per il blog")
	require.NoError(t, err)
	assert.Equal(t, "1. Noir\n2. Western", res.Checkpoint.Messages[2].Content)

	keys, err := eng.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.CheckpointKey{cfg.Key()}, keys)

	require.NoError(t, eng.Delete(ctx, cfg))
	cp, err := eng.State(ctx, cfg)
	require.NoError(t, err)
	assert.Empty(t, cp.Messages)
}
