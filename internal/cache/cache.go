package cache

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Manager is a TTL cache used for upstream snapshots that may go stale,
// such as parsed feeds.
type Manager struct {
	cache *cache.Cache
}

func NewManager(defaultTTL time.Duration) *Manager {
	return &Manager{
		cache: cache.New(defaultTTL, 10*time.Minute),
	}
}

func (m *Manager) Get(key string) (interface{}, bool) {
	return m.cache.Get(key)
}

// Set stores value under key. A zero ttl uses the manager's default.
func (m *Manager) Set(key string, value interface{}, ttl time.Duration) {
	if ttl == 0 {
		ttl = cache.DefaultExpiration
	}
	m.cache.Set(key, value, ttl)
}

func (m *Manager) Delete(key string) {
	m.cache.Delete(key)
}

func (m *Manager) Flush() {
	m.cache.Flush()
}
