package memory_test

import (
	"testing"

	"github.com/aretw0/cinegraph/pkg/adapters/memory"
	"github.com/aretw0/cinegraph/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunCheckpointStoreContract(t, store)
}
