package cache_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/botflow/pkg/adapters/cache"
	"github.com/stretchr/testify/assert"
)

func TestVolatile_SetAndRead(t *testing.T) {
	ctx := context.Background()
	v := cache.NewVolatile()

	v.Set(ctx, "u1", "city", "Paris")
	v.Set(ctx, "u1", "plan", "pro")
	v.Set(ctx, "u2", "city", "Rome")

	assert.Equal(t, map[string]string{"city": "Paris", "plan": "pro"}, v.Variables(ctx, "u1"))
	assert.Equal(t, map[string]string{"city": "Rome"}, v.Variables(ctx, "u2"))
	assert.Empty(t, v.Variables(ctx, "u3"))
}

func TestVolatile_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	v := cache.NewVolatile()
	v.Set(ctx, "u1", "city", "Paris")

	vars := v.Variables(ctx, "u1")
	vars["city"] = "mutated"

	assert.Equal(t, "Paris", v.Variables(ctx, "u1")["city"])
}

func TestVolatile_Clear(t *testing.T) {
	ctx := context.Background()
	v := cache.NewVolatile()
	v.Set(ctx, "u1", "city", "Paris")
	v.Clear(ctx, "u1")

	assert.Empty(t, v.Variables(ctx, "u1"))
}

func TestVolatile_TTL(t *testing.T) {
	ctx := context.Background()
	v := cache.NewVolatile(cache.WithTTL(20 * time.Millisecond))
	v.Set(ctx, "u1", "city", "Paris")

	assert.Eventually(t, func() bool {
		return len(v.Variables(ctx, "u1")) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestVolatile_ConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	v := cache.NewVolatile()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v.Set(ctx, "u1", string(rune('a'+i%26))+"_var", "x")
		}(i)
	}
	wg.Wait()

	assert.Len(t, v.Variables(ctx, "u1"), 26)
}
