package memory

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	sql     string
	expires time.Time
}

// Cache implements ports.TranslationCache in memory.
// Safe for concurrent use.
type Cache struct {
	mu   sync.RWMutex
	data map[string]entry
	ttl  time.Duration
	now  func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL expires entries after ttl. Zero keeps entries forever.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// NewCache creates a new in-memory translation cache.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		data: make(map[string]entry),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached SQL for question.
func (c *Cache) Get(ctx context.Context, question string) (string, bool, error) {
	c.mu.RLock()
	e, ok := c.data[question]
	c.mu.RUnlock()

	if !ok {
		return "", false, nil
	}
	if !e.expires.IsZero() && c.now().After(e.expires) {
		c.mu.Lock()
		delete(c.data, question)
		c.mu.Unlock()
		return "", false, nil
	}
	return e.sql, true, nil
}

// Set stores the SQL for question.
func (c *Cache) Set(ctx context.Context, question, sql string) error {
	e := entry{sql: sql}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[question] = e
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
