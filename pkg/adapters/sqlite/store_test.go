package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/cinegraph/pkg/adapters/sqlite"
	"github.com/aretw0/cinegraph/pkg/domain"
	"github.com/aretw0/cinegraph/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_Contract(t *testing.T) {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "cp.db"))
	require.NoError(t, err)
	defer store.Close()

	ports.RunCheckpointStoreContract(t, store)
}

func TestSQLiteStore_InMemory(t *testing.T) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ports.RunCheckpointStoreContract(t, store)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cp.db")
	ctx := context.Background()
	key := domain.SessionConfig{ThreadID: "durable"}.WithDefaults().Key()

	store, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, &domain.Checkpoint{Key: key, Messages: domain.Log{domain.HumanMessage("ciao")}, Step: 1}))
	require.NoError(t, store.Close())

	reopened, err := sqlite.New(path)
	require.NoError(t, err)
	defer reopened.Close()

	cp, err := reopened.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 1, cp.Step)
	assert.Equal(t, "ciao", cp.Messages[0].Content)
}
