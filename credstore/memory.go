package credstore

import (
	"context"
	"sync"
)

// Memory is an in-process Store. It is the default backend and the fake of
// choice in tests.
type Memory struct {
	mu   sync.RWMutex
	sess Session
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Get returns the current session. An empty store yields the zero Session.
func (m *Memory) Get(_ context.Context) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess, nil
}

// Set replaces the stored session.
func (m *Memory) Set(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = s
	return nil
}

// Clear resets the store to the absent state. Idempotent.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = Session{}
	return nil
}
