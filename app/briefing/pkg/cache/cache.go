// Package cache 提供进程内、按读取时检查过期的键值缓存。
package cache

import (
	"strings"
	"sync"
	"time"
)

// Cache 缓存抽象，由调用方构造后注入
type Cache[V any] interface {
	// Get 返回未过期的值
	Get(key string) (V, bool)
	// Set 写入并刷新写入时间
	Set(key string, value V)
}

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// TTL 内存缓存。过期条目不会主动清理，下一次未命中时被覆盖
type TTL[V any] struct {
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]entry[V]
}

// NewTTL 创建有效期为 ttl 的缓存
func NewTTL[V any](ttl time.Duration) *TTL[V] {
	return &TTL[V]{ttl: ttl, now: time.Now, items: make(map[string]entry[V])}
}

// WithClock 替换时钟，便于测试
func (c *TTL[V]) WithClock(now func() time.Time) *TTL[V] {
	c.now = now
	return c
}

// Key 规范化缓存键（小写、去空白）
func Key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.items[Key(key)]
	c.mu.RUnlock()

	var zero V
	if !ok || c.expired(e) {
		return zero, false
	}
	return e.value, true
}

func (c *TTL[V]) Set(key string, value V) {
	c.mu.Lock()
	c.items[Key(key)] = entry[V]{value: value, storedAt: c.now()}
	c.mu.Unlock()
}

// Len 返回条目数（含已过期未覆盖的）
func (c *TTL[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *TTL[V]) expired(e entry[V]) bool {
	return c.ttl > 0 && c.now().Sub(e.storedAt) >= c.ttl
}
