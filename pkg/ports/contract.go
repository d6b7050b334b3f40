package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/cinegraph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunCheckpointStoreContract runs a suite of tests to verify that a CheckpointStore
// implementation adheres to the interface contract.
func RunCheckpointStoreContract(t *testing.T, store CheckpointStore) {
	ctx := context.Background()
	thread := "contract-" + time.Now().Format("20060102150405.000000")
	key := domain.SessionConfig{ThreadID: thread}.WithDefaults().Key()

	call := domain.CapabilityCall{ID: "call-1", Name: domain.CapWebSearch, Args: map[string]string{"topic": "Dune"}}
	sample := func(k domain.CheckpointKey) *domain.Checkpoint {
		return &domain.Checkpoint{
			Key: k,
			Messages: domain.Log{
				domain.HumanMessage("cerca Dune"),
				domain.AssistantCall(call),
				domain.CapabilityResult(call, "Risultati per 'Dune'"),
			},
			Next: domain.NodeAssistant,
			Step: 2,
			Pending: &domain.Pending{
				Node:    domain.NodeReview,
				Request: domain.DecisionRequest{Kind: domain.DecisionReviewArticle, CallID: "call-1", Content: "bozza"},
			},
			UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		cp := sample(key)
		require.NoError(t, store.Save(ctx, cp), "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, key, loaded.Key)
		assert.True(t, loaded.Messages.Equal(cp.Messages))
		assert.Equal(t, domain.NodeAssistant, loaded.Next)
		assert.Equal(t, 2, loaded.Step)
		require.NotNil(t, loaded.Pending)
		assert.Equal(t, domain.NodeReview, loaded.Pending.Node)
		assert.Equal(t, "bozza", loaded.Pending.Request.Content)
		assert.True(t, cp.UpdatedAt.Equal(loaded.UpdatedAt))
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		loaded.Messages[1].Calls[0].Args["topic"] = "Alien"

		again, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "Dune", again.Messages[1].Calls[0].Args["topic"])
	})

	t.Run("Save overwrites", func(t *testing.T) {
		cp := sample(key)
		cp.Messages = cp.Messages.Append(domain.HumanMessage("altro"))
		cp.Pending = nil
		cp.Step = 3
		require.NoError(t, store.Save(ctx, cp))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Len(t, loaded.Messages, 4)
		assert.Nil(t, loaded.Pending)
		assert.Equal(t, 3, loaded.Step)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		missing := key
		missing.ThreadID = "missing-" + thread
		_, err := store.Load(ctx, missing)
		assert.ErrorIs(t, err, domain.ErrCheckpointNotFound)
	})

	t.Run("Keys are isolated", func(t *testing.T) {
		other := key
		other.CheckpointID = "article_2"
		require.NoError(t, store.Save(ctx, &domain.Checkpoint{Key: other, Messages: domain.Log{domain.HumanMessage("solo qui")}}))
		defer func() { _ = store.Delete(ctx, other) }()

		a, err := store.Load(ctx, key)
		require.NoError(t, err)
		b, err := store.Load(ctx, other)
		require.NoError(t, err)
		assert.NotEqual(t, len(a.Messages), len(b.Messages))
	})

	t.Run("List", func(t *testing.T) {
		k1 := domain.SessionConfig{ThreadID: thread + "-1"}.WithDefaults().Key()
		k2 := domain.SessionConfig{ThreadID: thread + "-2"}.WithDefaults().Key()
		_ = store.Save(ctx, sample(k1))
		_ = store.Save(ctx, sample(k2))
		defer func() {
			_ = store.Delete(ctx, k1)
			_ = store.Delete(ctx, k2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, k1)
		assert.Contains(t, keys, k2)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, key), "Delete should not return error")

		_, err := store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrCheckpointNotFound, "Load after Delete should return ErrCheckpointNotFound")

		assert.NoError(t, store.Delete(ctx, key), "Deleting twice should be a no-op")
	})
}
