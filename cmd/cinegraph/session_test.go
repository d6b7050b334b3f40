package main

import (
	"testing"

	"github.com/aretw0/cinegraph/internal/config"
	"github.com/aretw0/cinegraph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	cfg := config.Default()

	key, err := parseKey(cfg, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.CheckpointKey{ThreadID: "t1", Namespace: domain.DefaultNamespace, CheckpointID: domain.DefaultCheckpointID}, key)

	key, err = parseKey(cfg, "t1/blog/c2")
	require.NoError(t, err)
	assert.Equal(t, domain.CheckpointKey{ThreadID: "t1", Namespace: "blog", CheckpointID: "c2"}, key)

	_, err = parseKey(cfg, "t1/blog")
	assert.ErrorIs(t, err, domain.ErrInvalidSession)

	_, err = parseKey(cfg, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidSession)
}
