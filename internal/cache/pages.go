package cache

import (
	"fmt"

	"flipnews/internal/models"

	"github.com/patrickmn/go-cache"
)

// PageCache holds page results for the lifetime of a browsing session.
// Entries never expire and are never evicted. It is safe for concurrent
// use; concurrent writes to one key keep the last value.
type PageCache struct {
	items *cache.Cache
}

func NewPageCache() *PageCache {
	// A non-positive cleanup interval disables the janitor goroutine.
	return &PageCache{items: cache.New(cache.NoExpiration, 0)}
}

// Key builds the cache key for a filter and page. Category and search
// values never collide because the mode is part of the key.
func Key(filter models.Filter, page int) string {
	return fmt.Sprintf("%s:%s_p%d", filter.Mode, filter.Value, page)
}

func (c *PageCache) Get(key string) (models.PageResult, bool) {
	v, found := c.items.Get(key)
	if !found {
		return models.PageResult{}, false
	}
	page, ok := v.(models.PageResult)
	return page, ok
}

func (c *PageCache) Put(key string, page models.PageResult) {
	c.items.Set(key, page, cache.NoExpiration)
}

// Len returns the number of cached pages.
func (c *PageCache) Len() int {
	return c.items.ItemCount()
}
