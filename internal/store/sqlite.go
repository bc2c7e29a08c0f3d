package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rmoraes/leadflow/internal/domain"
	"github.com/rmoraes/leadflow/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db             *sql.DB
	conversationMu sync.Mutex // Mutex for conversation writes to prevent SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS conversations (
		session_id TEXT PRIMARY KEY,
		stage TEXT NOT NULL,
		turn_count INTEGER DEFAULT 0,
		context_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_updated ON conversations(updated_at);
	CREATE INDEX IF NOT EXISTS idx_conversations_stage ON conversations(stage);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetConversation retrieves the conversation context for a session.
func (s *SQLiteStore) GetConversation(ctx context.Context, sessionID string) (*domain.ConversationContext, error) {
	query := `SELECT context_json FROM conversations WHERE session_id = ?`

	row := s.db.QueryRowContext(ctx, query, sessionID)

	var contextJSON string
	err := row.Scan(&contextJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan conversation row: %w", err)
	}

	var conv domain.ConversationContext
	if err := json.Unmarshal([]byte(contextJSON), &conv); err != nil {
		return nil, fmt.Errorf("decode conversation context: %w", err)
	}
	conv.EnsureSections()

	return &conv, nil
}

// SaveConversation creates or updates the persisted context for a session.
// Retries with exponential backoff when the database reports a lock conflict.
func (s *SQLiteStore) SaveConversation(ctx context.Context, sessionID string, conv *domain.ConversationContext) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	for i := 0; i < maxRetries; i++ {
		err := s.saveConversationOnce(ctx, sessionID, conv)
		if err == nil {
			return nil
		}

		if shared.IsSQLiteConflictError(err) && i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<i) // exponential backoff: 100ms, 200ms, 400ms
			slog.Debug("SaveConversation hit a lock conflict, retrying",
				"session_id", sessionID,
				"attempt", i+1,
				"delay", delay)
			time.Sleep(delay)
			continue
		}

		return fmt.Errorf("save conversation for %s: %w", sessionID, err)
	}

	return nil
}

func (s *SQLiteStore) saveConversationOnce(ctx context.Context, sessionID string, conv *domain.ConversationContext) error {
	s.conversationMu.Lock()
	defer s.conversationMu.Unlock()

	contextJSON, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("encode conversation context: %w", err)
	}

	query := `
	INSERT INTO conversations (session_id, stage, turn_count, context_json, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		stage = excluded.stage,
		turn_count = excluded.turn_count,
		context_json = excluded.context_json,
		updated_at = excluded.updated_at`

	now := time.Now().Unix()
	_, err = s.db.ExecContext(ctx, query,
		sessionID, string(conv.Stage), conv.TurnCount, string(contextJSON),
		conv.StartedAt.Unix(), now,
	)
	if err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}
	return nil
}

// DeleteConversation removes the persisted context for a session.
func (s *SQLiteStore) DeleteConversation(ctx context.Context, sessionID string) error {
	s.conversationMu.Lock()
	defer s.conversationMu.Unlock()

	query := `DELETE FROM conversations WHERE session_id = ?`
	result, err := s.db.ExecContext(ctx, query, sessionID)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		slog.Debug("DeleteConversation affected 0 rows", "session_id", sessionID)
	}

	return nil
}

// CleanupStaleConversations removes sessions not touched within the TTL.
func (s *SQLiteStore) CleanupStaleConversations(ctx context.Context, ttl time.Duration) (int64, error) {
	threshold := time.Now().Add(-ttl).Unix()
	query := `DELETE FROM conversations WHERE updated_at < ?`
	result, err := s.db.ExecContext(ctx, query, threshold)
	if err != nil {
		return 0, fmt.Errorf("cleanup stale conversations: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
