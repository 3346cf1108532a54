package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// 指向不可达地址的客户端，验证 Redis 故障时降级为未命中
func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	c := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSearchCache_DegradesWhenUnavailable(t *testing.T) {
	ctx := context.Background()
	sc := NewSearchCache(unreachableClient(t), time.Minute)

	sc.Set(ctx, "papers_ml_0_10", []byte("{}"))
	_, ok := sc.Get(ctx, "papers_ml_0_10")
	assert.False(t, ok)

	assert.Error(t, sc.Clear(ctx))
}

func TestHealthCheck_Uninitialized(t *testing.T) {
	client = nil
	assert.False(t, Enabled())
	assert.Error(t, HealthCheck(context.Background()))
	assert.NoError(t, Close())
}
