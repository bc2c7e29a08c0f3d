// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/rmoraes/leadflow/internal/domain"
)

// Repository defines the interface for persisting conversation state.
type Repository interface {
	// GetConversation retrieves the conversation context for a session.
	// Returns (nil, nil) when the session has no persisted state yet.
	GetConversation(ctx context.Context, sessionID string) (*domain.ConversationContext, error)

	// SaveConversation creates or updates the persisted context for a session.
	SaveConversation(ctx context.Context, sessionID string, conv *domain.ConversationContext) error

	// DeleteConversation removes the persisted context for a session.
	DeleteConversation(ctx context.Context, sessionID string) error

	// CleanupStaleConversations removes sessions not touched within the TTL.
	CleanupStaleConversations(ctx context.Context, ttl time.Duration) (int64, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
