package store

import (
	"context"
	"sync"

	"github.com/edusdk/sessionkit"
)

// Memory defines a public type used by sessionkit APIs.
//
// Memory instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Memory struct {
	mu    sync.RWMutex
	pair  *sessionkit.TokenPair
	user  *sessionkit.User
	items map[string][]byte
}

var (
	_ sessionkit.TokenStore   = (*Memory)(nil)
	_ sessionkit.ScratchStore = (*Memory)(nil)
)

// NewMemory describes the newmemory operation and its observable behavior.
//
// NewMemory may return an error when input validation, dependency calls, or security checks fail.
// NewMemory does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMemory() *Memory {
	return &Memory{
		items: make(map[string][]byte),
	}
}

// Pair describes the pair operation and its observable behavior.
//
// Pair may return an error when input validation, dependency calls, or security checks fail.
// Pair does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Memory) Pair(ctx context.Context) (*sessionkit.TokenPair, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.pair == nil {
		return nil, nil
	}
	pair := *m.pair
	return &pair, nil
}

// SetPair describes the setpair operation and its observable behavior.
//
// SetPair may return an error when input validation, dependency calls, or security checks fail.
// SetPair does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Memory) SetPair(ctx context.Context, pair sessionkit.TokenPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pair = &pair
	return nil
}

// RemovePair describes the removepair operation and its observable behavior.
//
// RemovePair may return an error when input validation, dependency calls, or security checks fail.
// RemovePair does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Memory) RemovePair(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pair = nil
	return nil
}

// User describes the user operation and its observable behavior.
//
// User may return an error when input validation, dependency calls, or security checks fail.
// User does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Memory) User(ctx context.Context) (*sessionkit.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.user == nil {
		return nil, nil
	}
	user := *m.user
	return &user, nil
}

// SetUser describes the setuser operation and its observable behavior.
//
// SetUser may return an error when input validation, dependency calls, or security checks fail.
// SetUser does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Memory) SetUser(ctx context.Context, user sessionkit.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.user = &user
	return nil
}

// RemoveUser describes the removeuser operation and its observable behavior.
//
// RemoveUser may return an error when input validation, dependency calls, or security checks fail.
// RemoveUser does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Memory) RemoveUser(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.user = nil
	return nil
}

// Item describes the item operation and its observable behavior.
//
// Item may return an error when input validation, dependency calls, or security checks fail.
// Item does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Memory) Item(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.items[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// SetItem describes the setitem operation and its observable behavior.
//
// SetItem may return an error when input validation, dependency calls, or security checks fail.
// SetItem does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Memory) SetItem(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	m.items[key] = stored
	return nil
}

// RemoveItem describes the removeitem operation and its observable behavior.
//
// RemoveItem may return an error when input validation, dependency calls, or security checks fail.
// RemoveItem does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Memory) RemoveItem(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
	return nil
}
