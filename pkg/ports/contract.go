package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/botflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	userID := "contract-user-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewConversationState(userID)
		state.LastNodeID = "ask_city"
		state.Conditional = &domain.ConditionalWait{
			RuleID:        "r1",
			InputVariable: "city",
			NextNodeID:    "thanks",
			SkipButtons:   []domain.SkipButton{{Text: "Skip", TargetNodeID: "menu"}},
		}
		state.PendingSkipButtons = []domain.SkipButton{{Text: "Skip", TargetNodeID: "menu"}}
		state.Input = &domain.InputWait{
			Kind:     domain.InputPhoto,
			Variable: "avatar",
			Modes:    []domain.InputMode{domain.InputPhoto},
			NodeID:   "done",
		}

		require.NoError(t, store.Save(ctx, userID, state), "Save should not return error")

		loaded, err := store.Load(ctx, userID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "ask_city", loaded.LastNodeID)
		require.NotNil(t, loaded.Conditional)
		assert.Equal(t, "city", loaded.Conditional.InputVariable)
		assert.Equal(t, "thanks", loaded.Conditional.NextNodeID)
		assert.Len(t, loaded.PendingSkipButtons, 1)
		require.NotNil(t, loaded.Input)
		assert.True(t, loaded.Input.Accepts(domain.InputPhoto))
	})

	t.Run("Overwrite", func(t *testing.T) {
		first := domain.NewConversationState(userID)
		first.Conditional = &domain.ConditionalWait{RuleID: "a", InputVariable: "x"}
		require.NoError(t, store.Save(ctx, userID, first))

		second := domain.NewConversationState(userID)
		second.Conditional = &domain.ConditionalWait{RuleID: "b", InputVariable: "y"}
		require.NoError(t, store.Save(ctx, userID, second))

		loaded, err := store.Load(ctx, userID)
		require.NoError(t, err)
		require.NotNil(t, loaded.Conditional)
		assert.Equal(t, "b", loaded.Conditional.RuleID)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+userID)
		assert.ErrorIs(t, err, domain.ErrStateNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, userID, domain.NewConversationState(userID)))

		require.NoError(t, store.Delete(ctx, userID), "Delete should not return error")

		_, err := store.Load(ctx, userID)
		assert.ErrorIs(t, err, domain.ErrStateNotFound, "Load after Delete should return ErrStateNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := userID + "-1"
		id2 := userID + "-2"
		_ = store.Save(ctx, id1, domain.NewConversationState(id1))
		_ = store.Save(ctx, id2, domain.NewConversationState(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		users, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, users, id1)
		assert.Contains(t, users, id2)
	})
}

// RunUserRecordStoreContract verifies the durable-tier contract.
func RunUserRecordStoreContract(t *testing.T, store UserRecordStore) {
	ctx := context.Background()
	userID := "contract-user-" + time.Now().Format("20060102150405")

	t.Run("Missing User", func(t *testing.T) {
		_, err := store.LoadUser(ctx, "non-existent-"+userID)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("SaveVariable Creates Record", func(t *testing.T) {
		require.NoError(t, store.SaveVariable(ctx, userID, "city", "Paris"))

		rec, err := store.LoadUser(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "Paris", userDataValue(t, rec, "city"))
	})

	t.Run("SaveVariable Merges", func(t *testing.T) {
		require.NoError(t, store.SaveVariable(ctx, userID, "plan", "pro"))
		require.NoError(t, store.SaveVariable(ctx, userID, "city", "Lyon"))

		rec, err := store.LoadUser(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "pro", userDataValue(t, rec, "plan"))
		assert.Equal(t, "Lyon", userDataValue(t, rec, "city"))
	})
}

// userDataValue digs a plain or wrapped value out of user_data.
func userDataValue(t *testing.T, rec domain.UserRecord, name string) any {
	t.Helper()
	data, ok := rec[domain.UserDataKey].(map[string]any)
	require.True(t, ok, "user_data should decode to an object, got %T", rec[domain.UserDataKey])
	v := data[name]
	if wrapped, ok := v.(map[string]any); ok {
		return wrapped["value"]
	}
	return v
}
