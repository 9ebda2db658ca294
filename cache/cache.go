package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

var (
	ErrCacheMiss   = errors.New("cache miss")
	ErrCacheClosed = errors.New("cache closed")
)

// Cache stores opaque byte values with an expiry. A ttl of zero uses the
// backend default.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Clear removes every key that starts with prefix; an empty prefix
	// removes everything the cache owns.
	Clear(ctx context.Context, prefix string) error
	Close() error
}

// Key joins parts into a namespaced key. The first part stays readable so
// Clear can target it; the rest is hashed with xxHash.
func Key(namespace string, parts ...any) string {
	if len(parts) == 0 {
		return namespace + ":"
	}
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteByte('|')
		}
		fmt.Fprint(&b, p)
	}
	return fmt.Sprintf("%s:%016x", namespace, xxhash.Sum64String(b.String()))
}

type entry struct {
	value   []byte
	expires time.Time
}

// Memory is an in-process cache for single-instance deployments and tests.
type Memory struct {
	mu         sync.RWMutex
	items      map[string]entry
	defaultTTL time.Duration
	closed     bool
	now        func() time.Time
}

func NewMemory(defaultTTL time.Duration) *Memory {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &Memory{items: map[string]entry{}, defaultTTL: defaultTTL, now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrCacheClosed
	}
	e, ok := m.items[key]
	if !ok || !m.now().Before(e.expires) {
		return nil, ErrCacheMiss
	}
	return append([]byte(nil), e.value...), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrCacheClosed
	}
	m.items[key] = entry{value: append([]byte(nil), value...), expires: m.now().Add(ttl)}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *Memory) Clear(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			delete(m.items, k)
		}
	}
	return nil
}

// Purge drops expired entries.
func (m *Memory) Purge() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for k, e := range m.items {
		if !now.Before(e.expires) {
			delete(m.items, k)
			n++
		}
	}
	return n
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.items = map[string]entry{}
	return nil
}
