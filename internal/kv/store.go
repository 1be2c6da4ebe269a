// Package kv provides the key-value store behind the kv tools.
package kv

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned by Get for a missing or expired key.
var ErrNotFound = errors.New("key not found")

// Store is a string key-value store with optional expiry.
type Store interface {
	// Set stores value under key. A zero ttl keeps the value until deleted.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	// Delete removes key and reports whether it existed.
	Delete(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

// Memory is an in-process Store.
type Memory struct {
	mu    sync.Mutex
	items map[string]memItem
	now   func() time.Time
}

type memItem struct {
	value   string
	expires time.Time
}

// NewMemory creates an empty in-process store.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]memItem), now: time.Now}
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	item := memItem{value: value}
	if ttl > 0 {
		item.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.items[key] = item
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[key]
	if !ok {
		return "", ErrNotFound
	}
	if !item.expires.IsZero() && !m.now().Before(item.expires) {
		delete(m.items, key)
		return "", ErrNotFound
	}
	return item.value, nil
}

func (m *Memory) Delete(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[key]
	delete(m.items, key)
	if ok && !item.expires.IsZero() && !m.now().Before(item.expires) {
		return false, nil
	}
	return ok, nil
}

func (m *Memory) Ping(context.Context) error { return nil }
func (m *Memory) Close() error               { return nil }
