package utils

import (
	"log"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// 进程内热点缓存：LRU 控制条目总数，每个条目再带自己的 TTL。
// 给租户 slug 解析、市集首页这类读多写少的查询挡一层数据库压力。

// 容量按活跃租户数 + 各租户首页缓存键估算
const cacheCapacity = 512

type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// Cache LRU + TTL 的组合封装
type Cache struct {
	entries *lru.Cache[string, cacheEntry]
}

var (
	cacheOnce   sync.Once
	sharedCache *Cache
)

// GetCache 获取进程级共享缓存
func GetCache() *Cache {
	cacheOnce.Do(func() {
		entries, err := lru.New[string, cacheEntry](cacheCapacity)
		if err != nil {
			log.Fatalf("Failed to create LRU cache: %v", err)
		}
		sharedCache = &Cache{entries: entries}
	})
	return sharedCache
}

// Set 写入缓存，过了 ttl 自动失效
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	c.entries.Add(key, cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	})
}

// Get 读取缓存，不存在或已过期返回 nil
func (c *Cache) Get(key string) interface{} {
	entry, ok := c.entries.Get(key)
	if !ok {
		return nil
	}
	if time.Now().After(entry.expiresAt) {
		c.entries.Remove(key)
		return nil
	}
	return entry.value
}

// Delete 主动失效
func (c *Cache) Delete(key string) {
	c.entries.Remove(key)
}
