package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/botflow/pkg/adapters/redis"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/aretw0/botflow/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunStateStoreContract(t, redis.NewFromClient(client))
}

func TestRedisUserStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunUserRecordStoreContract(t, redis.NewUserStore(client))
}

func TestRedisStore_NoExpiryByDefault(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	state := domain.NewConversationState("u1")
	state.Conditional = &domain.ConditionalWait{RuleID: "r", InputVariable: "city"}
	require.NoError(t, store.Save(ctx, "u1", state))

	mr.FastForward(365 * 24 * time.Hour)

	loaded, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, loaded.Conditional)
	assert.Equal(t, "city", loaded.Conditional.InputVariable)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "u-ttl", domain.NewConversationState("u-ttl")))

	users, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, users, "u-ttl")

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, "u-ttl")
	assert.ErrorIs(t, err, domain.ErrStateNotFound)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "u1", domain.NewConversationState("u1")))

	assert.True(t, mr.Exists("custom:app:state:u1"))
	assert.True(t, mr.Exists("custom:app:state:index"))

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, list, "u1")
}

func TestRedisUserStore_MergesJSONEncodedUserData(t *testing.T) {
	_, client := newClient(t)
	users := redis.NewUserStore(client)
	ctx := context.Background()

	require.NoError(t, users.Put(ctx, "u1", domain.UserRecord{
		"first_name":       "Ana",
		domain.UserDataKey: `{"city":"Porto"}`,
	}))
	require.NoError(t, users.SaveVariable(ctx, "u1", "plan", "pro"))

	rec, err := users.LoadUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", rec["first_name"])
	assert.Equal(t, map[string]any{"city": "Porto", "plan": "pro"}, rec[domain.UserDataKey])
}
