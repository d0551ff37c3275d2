package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	backend "github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "civicflow:sql:"
	defaultTTL    = 24 * time.Hour
)

// Cache implements ports.TranslationCache using Redis.
type Cache struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets the expiry of cached translations. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithPrefix sets the key namespace.
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

// New connects to the Redis server at addr.
func New(addr string, opts ...Option) *Cache {
	return NewFromClient(backend.NewClient(&backend.Options{Addr: addr}), opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Cache {
	c := &Cache{
		client: client,
		prefix: defaultPrefix,
		ttl:    defaultTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key returns the Redis key holding the translation stored under question. Keys are
// normalised for case and surrounding whitespace before hashing.
func (c *Cache) Key(question string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(question))))
	return c.prefix + hex.EncodeToString(sum[:])
}

// Get returns the cached SQL for question.
func (c *Cache) Get(ctx context.Context, question string) (string, bool, error) {
	sql, err := c.client.Get(ctx, c.Key(question)).Result()
	if errors.Is(err, backend.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get translation: %w", err)
	}
	return sql, true, nil
}

// Set stores the SQL for question.
func (c *Cache) Set(ctx context.Context, question, sql string) error {
	if err := c.client.Set(ctx, c.Key(question), sql, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set translation: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	return c.client.Close()
}
