// Package cache holds short-lived process-local state: resolver answers and
// rate limit counters.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type Store interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	// Incr bumps a counter that expires ttl after its first increment and
	// returns the new value.
	Incr(key string, ttl time.Duration) int
}

type MemoryStore struct {
	c *gocache.Cache
}

func NewMemoryStore(defaultTTL, cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{
		c: gocache.New(defaultTTL, cleanupInterval),
	}
}

func (s *MemoryStore) Get(key string) (interface{}, bool) {
	return s.c.Get(key)
}

func (s *MemoryStore) Set(key string, value interface{}, ttl time.Duration) {
	s.c.Set(key, value, ttl)
}

func (s *MemoryStore) Incr(key string, ttl time.Duration) int {
	if err := s.c.Add(key, 1, ttl); err == nil {
		return 1
	}

	n, err := s.c.IncrementInt(key, 1)
	if err != nil {
		// The counter expired between Add and IncrementInt.
		s.c.Set(key, 1, ttl)
		return 1
	}

	return n
}
