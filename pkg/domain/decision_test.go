package domain_test

import (
	"testing"

	"github.com/aretw0/cinegraph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAffirmative(t *testing.T) {
	for _, in := range []string{"sì", "SI", " y ", "Yes", "s"} {
		assert.True(t, domain.IsAffirmative(in), in)
	}
	for _, in := range []string{"no", "", "forse", "yess"} {
		assert.False(t, domain.IsAffirmative(in), in)
	}
}

func TestSuggestionTopic(t *testing.T) {
	list := "1. \"Il ritorno del noir\"\n2) I registi emergenti del 2024\n3. Il cinema muto oggi"

	assert.Equal(t, "Il ritorno del noir", domain.SuggestionTopic("1", list))
	assert.Equal(t, "I registi emergenti del 2024", domain.SuggestionTopic(" 2 ", list))
	assert.Equal(t, "9", domain.SuggestionTopic("9", list))
	assert.Equal(t, "Un titolo mio", domain.SuggestionTopic("Un titolo mio", list))
	assert.Equal(t, "Genera un articolo sul topic: Il cinema muto oggi", domain.SuggestionPrompt("3", list))
}

func TestDecision(t *testing.T) {
	assert.False(t, domain.Keep().Replaces())
	assert.True(t, domain.Replace("più breve").Replaces())
	assert.False(t, domain.Replace("   ").Replaces())
}

func TestSessionConfig(t *testing.T) {
	cfg := domain.NewSessionConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, domain.DefaultNamespace, cfg.Namespace)
	assert.Equal(t, domain.DefaultCheckpointID, cfg.CheckpointID)
	assert.NotEqual(t, cfg.ThreadID, domain.NewSessionConfig().ThreadID)

	bad := domain.SessionConfig{ThreadID: "a/b", Namespace: "n", CheckpointID: "c"}
	assert.ErrorIs(t, bad.Validate(), domain.ErrInvalidSession)
	assert.ErrorIs(t, domain.SessionConfig{}.Validate(), domain.ErrInvalidSession)

	filled := domain.SessionConfig{ThreadID: "t"}.WithDefaults()
	require.NoError(t, filled.Validate())

	key, err := domain.ParseCheckpointKey(filled.Key().String())
	require.NoError(t, err)
	assert.Equal(t, filled.Key(), key)

	_, err = domain.ParseCheckpointKey("only/two")
	assert.ErrorIs(t, err, domain.ErrInvalidSession)
}
