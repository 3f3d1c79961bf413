package wiki

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yourusername/osrs-mcp/internal/metrics"
)

// Cache is a simple in-memory TTL cache
type Cache struct {
	items map[string]*cacheItem
	mu    sync.RWMutex
	done  chan struct{}
	once  sync.Once
}

type cacheItem struct {
	value      any
	expiration time.Time
}

// NewCache creates a new cache instance and starts its cleanup loop
func NewCache() *Cache {
	c := &Cache{
		items: make(map[string]*cacheItem),
		done:  make(chan struct{}),
	}

	go c.cleanupLoop()

	return c
}

// Get retrieves a value from cache
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists || time.Now().After(item.expiration) {
		metrics.RecordCacheAccess(false)
		return nil, false
	}

	metrics.RecordCacheAccess(true)
	return item.value, true
}

// Set stores a value in cache with TTL
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &cacheItem{
		value:      value,
		expiration: time.Now().Add(ttl),
	}
	metrics.SetCacheEntries(len(c.items))
}

// Delete removes a value from cache
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	metrics.SetCacheEntries(len(c.items))
}

// Len reports the number of stored entries, expired or not
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the cleanup loop
func (c *Cache) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.done:
			return
		}
	}
}

func (c *Cache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, item := range c.items {
		if now.After(item.expiration) {
			delete(c.items, key)
		}
	}
	metrics.SetCacheEntries(len(c.items))
}

// CacheKey generates a cache key for a request
func CacheKey(parts ...string) string {
	return strings.Join(parts, ":")
}

func PageCacheKey(title string) string {
	return CacheKey("page", title)
}

func SectionCacheKey(title, sectionIndex string) string {
	return CacheKey("section", title, sectionIndex)
}

func SearchCacheKey(query string, limit int) string {
	return CacheKey("search", query, strconv.Itoa(limit))
}

func CategoryCacheKey(category, cont string) string {
	return CacheKey("category", category, cont)
}

func BacklinksCacheKey(title, cont string) string {
	return CacheKey("backlinks", title, cont)
}

func ParseTreeCacheKey(title string) string {
	return CacheKey("parsetree", title)
}

func WikitextCacheKey(title string) string {
	return CacheKey("wikitext", title)
}

func QuestCacheKey(name string) string {
	return CacheKey("quest", name)
}

func ImageCacheKey(title string) string {
	return CacheKey("image", title)
}
