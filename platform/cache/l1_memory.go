package cache

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// L1CacheService is a process-local expiring key/value store.
type L1CacheService struct {
	client *cache.Cache
}

func InitL1Cache(ttl time.Duration) *L1CacheService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &L1CacheService{
		client: cache.New(ttl, 2*ttl),
	}
}

func (s *L1CacheService) Get(key string) (interface{}, bool) {
	return s.client.Get(key)
}

// Set stores value with the default TTL.
func (s *L1CacheService) Set(key string, value interface{}) {
	s.client.Set(key, value, cache.DefaultExpiration)
}

func (s *L1CacheService) Del(key string) {
	s.client.Delete(key)
}

