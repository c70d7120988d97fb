package memory

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// LocationCache remembers reverse-geocoded place names keyed by rounded
// coordinates.
type LocationCache struct {
	cache *cache.Cache
}

func NewLocationCache(ttl time.Duration) *LocationCache {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &LocationCache{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

// Key rounds to ~1 km so nearby fixes share an entry.
func (r *LocationCache) Key(lat, lon float64) string {
	return fmt.Sprintf("%.2f,%.2f", lat, lon)
}

func (r *LocationCache) Save(key, place string) {
	r.cache.Set(key, place, cache.DefaultExpiration)
}

func (r *LocationCache) Get(key string) (string, bool) {
	if x, found := r.cache.Get(key); found {
		return x.(string), true
	}
	return "", false
}
