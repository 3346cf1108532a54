package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"paperly/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const searchCachePrefix = "paperly:search:"

// SearchCache 基于Redis的搜索结果缓存，多实例共享
// Redis 不可用时按未命中处理，不影响搜索本身
type SearchCache struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

// NewSearchCache ttl 为 0 表示不过期
func NewSearchCache(rdb redis.UniversalClient, ttl time.Duration) *SearchCache {
	return &SearchCache{rdb: rdb, ttl: ttl}
}

// Get 读取缓存，Redis 出错时记日志并按未命中返回
func (s *SearchCache) Get(ctx context.Context, key string) ([]byte, bool) {
	v, err := s.rdb.Get(ctx, searchCachePrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("读取搜索缓存失败", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return v, true
}

// Set 写入缓存，失败只记日志
func (s *SearchCache) Set(ctx context.Context, key string, value []byte) {
	if err := s.rdb.Set(ctx, searchCachePrefix+key, value, s.ttl).Err(); err != nil {
		logger.Warn("写入搜索缓存失败", zap.String("key", key), zap.Error(err))
	}
}

// Clear 删除全部搜索缓存键，使用 SCAN 避免阻塞
func (s *SearchCache) Clear(ctx context.Context) error {
	iter := s.rdb.Scan(ctx, 0, searchCachePrefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := s.rdb.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("clear search cache: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan search cache: %w", err)
	}
	if len(batch) > 0 {
		if err := s.rdb.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("clear search cache: %w", err)
		}
	}
	return nil
}
