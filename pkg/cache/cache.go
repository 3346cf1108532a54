// Package cache 搜索结果缓存
//
// 值为序列化后的响应字节，命中时原样返回，同一 key 的结果在清空前保持一致。
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"paperly/pkg/metrics"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache 缓存抽象，实现必须并发安全
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Clear(ctx context.Context) error
}

// Memory 无上限、无过期的内存缓存
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemory 创建内存缓存
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]byte)}
}

// Get 读取缓存，第二个返回值表示是否命中
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok
}

// Set 写入缓存，覆盖同名 key
func (m *Memory) Set(_ context.Context, key string, value []byte) {
	m.mu.Lock()
	m.entries[key] = value
	m.mu.Unlock()
}

// Clear 清空全部条目
func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string][]byte)
	m.mu.Unlock()
	return nil
}

// Len 当前条目数
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// LRU 有上限并带 TTL 的内存缓存
type LRU struct {
	lru *expirable.LRU[string, []byte]
}

// NewLRU size 为最大条目数，ttl 为写入后的存活时间
func NewLRU(size int, ttl time.Duration) *LRU {
	return &LRU{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

// Get 读取未过期的条目
func (l *LRU) Get(_ context.Context, key string) ([]byte, bool) {
	return l.lru.Get(key)
}

// Set 写入条目，超出容量时淘汰最久未使用的
func (l *LRU) Set(_ context.Context, key string, value []byte) {
	l.lru.Add(key, value)
}

// Clear 清空全部条目
func (l *LRU) Clear(context.Context) error {
	l.lru.Purge()
	return nil
}

// Noop 不缓存任何内容
type Noop struct{}

// Get 总是未命中
func (Noop) Get(context.Context, string) ([]byte, bool) { return nil, false }

// Set 丢弃写入
func (Noop) Set(context.Context, string, []byte) {}

// Clear 无操作
func (Noop) Clear(context.Context) error { return nil }

// instrumented 统计命中与未命中
type instrumented struct {
	Cache
}

// Instrument 为缓存加上 Prometheus 命中率统计
func Instrument(c Cache) Cache {
	return instrumented{Cache: c}
}

func (i instrumented) Get(ctx context.Context, key string) ([]byte, bool) {
	v, ok := i.Cache.Get(ctx, key)
	if ok {
		metrics.CacheHits.Inc()
	} else {
		metrics.CacheMisses.Inc()
	}
	return v, ok
}

// New 按驱动名创建进程内缓存；redis 驱动由调用方使用 pkg/redis 构造
func New(driver string, size int, ttl time.Duration) (Cache, error) {
	switch driver {
	case "", "memory":
		return NewMemory(), nil
	case "lru":
		if size <= 0 {
			return nil, fmt.Errorf("lru cache size must be positive, got %d", size)
		}
		return NewLRU(size, ttl), nil
	case "none":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", driver)
	}
}
