package navigator

import (
	"context"
	"fmt"

	"flipnews/internal/cache"
	"flipnews/internal/models"

	"golang.org/x/sync/singleflight"
)

// Fetcher retrieves one page of news.
type Fetcher interface {
	FetchPage(ctx context.Context, filter models.Filter, page int) (models.PageResult, error)
}

// Loader serves pages from the session cache and fetches misses.
// Concurrent loads of the same key share one request.
type Loader struct {
	fetcher Fetcher
	pages   *cache.PageCache
	group   singleflight.Group
}

func NewLoader(fetcher Fetcher, pages *cache.PageCache) *Loader {
	if pages == nil {
		pages = cache.NewPageCache()
	}
	return &Loader{fetcher: fetcher, pages: pages}
}

// Load returns the page for filter, from the cache when present.
// Empty pages are not cached so that a later probe reaches upstream.
func (l *Loader) Load(ctx context.Context, filter models.Filter, page int) (models.PageResult, error) {
	key := cache.Key(filter, page)
	if result, ok := l.pages.Get(key); ok {
		return result, nil
	}

	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		if result, ok := l.pages.Get(key); ok {
			return result, nil
		}
		result, err := l.fetcher.FetchPage(ctx, filter, page)
		if err != nil {
			return nil, err
		}
		if result.Len() > 0 {
			l.pages.Put(key, result)
		}
		return result, nil
	})
	if err != nil {
		return models.PageResult{}, fmt.Errorf("loading %s page %d: %w", filter, page, err)
	}
	return v.(models.PageResult), nil
}

// Cached reports whether a page is already in the cache.
func (l *Loader) Cached(filter models.Filter, page int) bool {
	_, ok := l.pages.Get(cache.Key(filter, page))
	return ok
}
