package ports_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/cinegraph/pkg/domain"
	"github.com/aretw0/cinegraph/pkg/ports"
)

// mapStore is the smallest CheckpointStore that satisfies the contract.
type mapStore struct {
	mu   sync.Mutex
	data map[domain.CheckpointKey]*domain.Checkpoint
}

func (m *mapStore) Save(_ context.Context, cp *domain.Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[cp.Key] = cp.Clone()
	return nil
}

func (m *mapStore) Load(_ context.Context, key domain.CheckpointKey) (*domain.Checkpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp, ok := m.data[key]
	if !ok {
		return nil, domain.ErrCheckpointNotFound
	}
	return cp.Clone(), nil
}

func (m *mapStore) Delete(_ context.Context, key domain.CheckpointKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *mapStore) List(_ context.Context) ([]domain.CheckpointKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]domain.CheckpointKey, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys, nil
}

func TestCheckpointStore_Contract(t *testing.T) {
	ports.RunCheckpointStoreContract(t, &mapStore{data: make(map[domain.CheckpointKey]*domain.Checkpoint)})
}
