package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/mingqiu/gradecheck/internal/model"
)

// Memory is an in-memory Store with TTL eviction.
type Memory struct {
	cache *gocache.Cache
}

// NewMemory creates a memory store. A batch rarely outlives minutes, so the
// default TTL mostly just bounds memory for long-running sessions.
func NewMemory(defaultTTL, cleanupInterval time.Duration) *Memory {
	return &Memory{cache: gocache.New(defaultTTL, cleanupInterval)}
}

// Get retrieves a memoized result.
func (m *Memory) Get(key string) (model.EvaluationResult, bool) {
	if val, found := m.cache.Get(key); found {
		return val.(model.EvaluationResult), true
	}
	return model.EvaluationResult{}, false
}

// Set memoizes a result under the given key.
func (m *Memory) Set(key string, res model.EvaluationResult) {
	m.cache.Set(key, res, gocache.DefaultExpiration)
}
