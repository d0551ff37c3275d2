package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ExecutionPathKey is the reserved context key holding the ordered step names visited.
const ExecutionPathKey = "execution_path"

// Row is a single relational result row keyed by column name.
type Row map[string]any

// Context holds the values shared by every step of one execution.
// A Context is owned by a single execution and is not safe for concurrent use.
type Context struct {
	values map[string]any
}

// NewContext creates a context seeded with a shallow copy of seed.
func NewContext(seed map[string]any) *Context {
	c := &Context{values: make(map[string]any, len(seed))}
	for k, v := range seed {
		c.values[k] = v
	}
	return c
}

// Get returns the raw value stored under key.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Set stores value under key. Later writes to the same key win.
func (c *Context) Set(key string, value any) {
	c.values[key] = value
}

// Delete removes key from the context.
func (c *Context) Delete(key string) {
	delete(c.values, key)
}

// Has reports whether key is present.
func (c *Context) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Keys returns the stored keys in lexical order.
func (c *Context) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Path returns a copy of the execution path recorded under ExecutionPathKey.
func (c *Context) Path() []string {
	path, _ := c.values[ExecutionPathKey].([]string)
	out := make([]string, len(path))
	copy(out, path)
	return out
}

// SetPath records the execution path. The engine calls it when a walk ends.
func (c *Context) SetPath(path []string) {
	out := make([]string, len(path))
	copy(out, path)
	c.values[ExecutionPathKey] = out
}

// Snapshot returns a shallow copy of every value, suitable for diagnostics.
func (c *Context) Snapshot() map[string]any {
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the context as its snapshot.
func (c *Context) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.values)
}

// Key is a typed accessor for a context entry. Declaring keys as package-level
// variables gives steps a compile-time contract over what they read and write.
type Key[T any] struct {
	name string
}

// NewKey declares a typed key.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Name returns the raw context key.
func (k Key[T]) Name() string {
	return k.name
}

// Get returns the value under k and whether it was present with type T.
func (k Key[T]) Get(c *Context) (T, bool) {
	var zero T
	raw, ok := c.values[k.name]
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// Or returns the value under k or fallback when it is absent or mistyped.
func (k Key[T]) Or(c *Context, fallback T) T {
	if v, ok := k.Get(c); ok {
		return v
	}
	return fallback
}

// Must returns the value under k or an error naming the missing key.
func (k Key[T]) Must(c *Context) (T, error) {
	v, ok := k.Get(c)
	if !ok {
		var zero T
		if raw, present := c.values[k.name]; present {
			return zero, fmt.Errorf("context key %q has type %T, want %T", k.name, raw, zero)
		}
		return zero, fmt.Errorf("context key %q is missing", k.name)
	}
	return v, nil
}

// Set stores v under k.
func (k Key[T]) Set(c *Context, v T) {
	c.values[k.name] = v
}
