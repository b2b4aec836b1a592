package kv

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// Memory is an in-process Store used by tests and local development. The Now
// field can be overridden to test TTL behavior without sleeping.
type Memory struct {
	mu   sync.RWMutex
	data map[string]memEntry

	Now func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]memEntry),
		Now:  time.Now,
	}
}

func (m *Memory) expired(e memEntry) bool {
	return !e.expiresAt.IsZero() && m.Now().After(e.expiresAt)
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[key]
	if !ok || m.expired(e) {
		return nil, ErrNil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = memEntry{value: v}
	return nil
}

func (m *Memory) SetTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = memEntry{value: v, expiresAt: m.Now().Add(ttl)}
	return nil
}

func (m *Memory) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

func (m *Memory) Expire(ctx context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.data[key]
	if !ok || m.expired(e) {
		return nil
	}
	e.expiresAt = m.Now().Add(ttl)
	m.data[key] = e
	return nil
}

func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[key]
	return ok && !m.expired(e), nil
}

// Keys returns all live keys, for test assertions.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for k, e := range m.data {
		if !m.expired(e) {
			keys = append(keys, k)
		}
	}
	return keys
}
