package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/botflow/pkg/adapters/memory"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/aretw0/botflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunStateStoreContract(t, store)
}

func TestMemoryUserStore_Contract(t *testing.T) {
	ports.RunUserRecordStoreContract(t, memory.NewUserStore())
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	state := domain.NewConversationState("u1")
	state.Conditional = &domain.ConditionalWait{RuleID: "r1", InputVariable: "city"}
	require.NoError(t, store.Save(ctx, "u1", state))

	state.Conditional.InputVariable = "mutated"

	loaded, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "city", loaded.Conditional.InputVariable)
}
