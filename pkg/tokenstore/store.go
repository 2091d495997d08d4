package tokenstore

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned when no token is stored for a session key.
var ErrNotFound = errors.New("tokenstore: token not found")

// Store persists the opaque guest cart token per storefront session, so an
// anonymous cart survives across page loads until login merges it away.
type Store interface {
	Get(ctx context.Context, sessionKey string) (string, error)
	Put(ctx context.Context, sessionKey, token string, ttl time.Duration) error
	Delete(ctx context.Context, sessionKey string) error
}

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// Memory is an in-process Store, suitable for tests and single-instance use.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory builds an empty in-memory token store.
func NewMemory() *Memory {
	return &Memory{
		entries: map[string]memoryEntry{},
		now:     time.Now,
	}
}

func (m *Memory) Get(ctx context.Context, sessionKey string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[sessionKey]
	if !ok {
		return "", ErrNotFound
	}
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		delete(m.entries, sessionKey)
		return "", ErrNotFound
	}
	return entry.token, nil
}

func (m *Memory) Put(ctx context.Context, sessionKey, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := memoryEntry{token: token}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.entries[sessionKey] = entry
	return nil
}

func (m *Memory) Delete(ctx context.Context, sessionKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, sessionKey)
	return nil
}
