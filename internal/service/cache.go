package service

import (
	"sync"
	"time"
)

// CacheConfig 缓存配置
type CacheConfig struct {
	MaxItems   int           // 最大项数，超出时淘汰最早写入的项
	DefaultTTL time.Duration // 默认过期时间，0 表示不过期
}

// CacheStats 缓存统计
type CacheStats struct {
	Hits   int64 // 命中次数
	Misses int64 // 未命中次数
	Items  int   // 当前项数
}

// CacheItem 缓存项
type CacheItem struct {
	Value    interface{} // 缓存值
	ExpireAt time.Time   // 过期时间
	CreateAt time.Time   // 创建时间
}

func (i *CacheItem) expired(now time.Time) bool {
	return !i.ExpireAt.IsZero() && now.After(i.ExpireAt)
}

// Cache 进程内缓存（FIFO 淘汰）
type Cache struct {
	config *CacheConfig
	items  map[string]*CacheItem
	order  []string
	stats  CacheStats
	mu     sync.Mutex
	now    func() time.Time
}

// NewCache 创建缓存实例
func NewCache(config *CacheConfig) *Cache {
	if config.MaxItems <= 0 {
		config.MaxItems = 16
	}
	return &Cache{
		config: config,
		items:  make(map[string]*CacheItem),
		now:    time.Now,
	}
}

// Get 获取缓存
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[key]
	if !ok || item.expired(c.now()) {
		if ok {
			c.remove(key)
		}
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	return item.Value, true
}

// Set 设置缓存，ttl 为 0 时使用默认过期时间
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl == 0 {
		ttl = c.config.DefaultTTL
	}
	now := c.now()
	item := &CacheItem{Value: value, CreateAt: now}
	if ttl > 0 {
		item.ExpireAt = now.Add(ttl)
	}

	if _, ok := c.items[key]; !ok {
		for len(c.order) >= c.config.MaxItems {
			c.remove(c.order[0])
		}
		c.order = append(c.order, key)
	}
	c.items[key] = item
}

// Delete 删除缓存
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(key)
}

// Clear 清空缓存
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*CacheItem)
	c.order = nil
}

// Stats 获取统计信息
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Items = len(c.items)
	return s
}

func (c *Cache) remove(key string) {
	if _, ok := c.items[key]; !ok {
		return
	}
	delete(c.items, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
