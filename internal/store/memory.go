package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rmoraes/leadflow/internal/domain"
)

// MemoryStore is an in-memory Repository used by tests and by local runs that
// do not need durability. Contexts are stored as JSON so reads see the same
// type shapes a database round trip would produce.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	contextJSON []byte
	updatedAt   time.Time
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

// GetConversation retrieves the conversation context for a session.
func (m *MemoryStore) GetConversation(_ context.Context, sessionID string) (*domain.ConversationContext, error) {
	m.mu.RLock()
	entry, ok := m.entries[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var conv domain.ConversationContext
	if err := json.Unmarshal(entry.contextJSON, &conv); err != nil {
		return nil, fmt.Errorf("decode conversation context: %w", err)
	}
	conv.EnsureSections()
	return &conv, nil
}

// SaveConversation creates or updates the persisted context for a session.
func (m *MemoryStore) SaveConversation(_ context.Context, sessionID string, conv *domain.ConversationContext) error {
	contextJSON, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("encode conversation context: %w", err)
	}

	m.mu.Lock()
	m.entries[sessionID] = memoryEntry{contextJSON: contextJSON, updatedAt: time.Now()}
	m.mu.Unlock()
	return nil
}

// DeleteConversation removes the persisted context for a session.
func (m *MemoryStore) DeleteConversation(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.entries, sessionID)
	m.mu.Unlock()
	return nil
}

// CleanupStaleConversations removes sessions not touched within the TTL.
func (m *MemoryStore) CleanupStaleConversations(_ context.Context, ttl time.Duration) (int64, error) {
	threshold := time.Now().Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for id, entry := range m.entries {
		if entry.updatedAt.Before(threshold) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed, nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(_ context.Context) error { return nil }

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
