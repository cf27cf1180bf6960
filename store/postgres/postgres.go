// Package postgres implements store.ThreadStore on PostgreSQL via pgx.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agentkit-go/agentkit/store"
)

// DBPool defines the interface for database connection pool
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresThreadStore implements store.ThreadStore using PostgreSQL
type PostgresThreadStore struct {
	pool DBPool
}

// PostgresOptions configuration for Postgres connection
type PostgresOptions struct {
	ConnString string
}

// NewPostgresThreadStore creates a new Postgres thread store
func NewPostgresThreadStore(ctx context.Context, opts PostgresOptions) (*PostgresThreadStore, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	return &PostgresThreadStore{pool: pool}, nil
}

// NewPostgresThreadStoreWithPool creates a store with an existing pool.
// Useful for testing with mocks.
func NewPostgresThreadStoreWithPool(pool DBPool) *PostgresThreadStore {
	return &PostgresThreadStore{pool: pool}
}

// InitSchema creates the necessary tables if they don't exist
func (s *PostgresThreadStore) InitSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS threads (
			id TEXT PRIMARY KEY,
			agent_id TEXT NOT NULL,
			title TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_threads_agent_id ON threads (agent_id);

		CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			thread_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_messages_thread_id ON messages (thread_id);

		CREATE TABLE IF NOT EXISTS surfaces (
			thread_id TEXT NOT NULL,
			surface_id TEXT NOT NULL,
			snapshot JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (thread_id, surface_id)
		);
	`

	_, err := s.pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (s *PostgresThreadStore) Close() error {
	s.pool.Close()
	return nil
}

// CreateThread stores a thread, replacing any existing row with the same ID.
func (s *PostgresThreadStore) CreateThread(ctx context.Context, thread *store.Thread) error {
	query := `
		INSERT INTO threads (id, agent_id, title, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			agent_id = EXCLUDED.agent_id,
			title = EXCLUDED.title,
			created_at = EXCLUDED.created_at
	`

	_, err := s.pool.Exec(ctx, query, thread.ID, thread.AgentID, thread.Title, thread.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save thread: %w", err)
	}
	return nil
}

// GetThread retrieves a thread by ID
func (s *PostgresThreadStore) GetThread(ctx context.Context, threadID string) (*store.Thread, error) {
	query := `SELECT id, agent_id, title, created_at FROM threads WHERE id = $1`

	var thread store.Thread
	err := s.pool.QueryRow(ctx, query, threadID).Scan(
		&thread.ID,
		&thread.AgentID,
		&thread.Title,
		&thread.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, store.ErrThreadNotFound
		}
		return nil, fmt.Errorf("failed to load thread: %w", err)
	}
	return &thread, nil
}

// ListThreads returns threads for an agent, newest first. Empty agentID lists all.
func (s *PostgresThreadStore) ListThreads(ctx context.Context, agentID string) ([]*store.Thread, error) {
	query := `SELECT id, agent_id, title, created_at FROM threads`
	var args []any
	if agentID != "" {
		query += ` WHERE agent_id = $1`
		args = append(args, agentID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	defer rows.Close()

	var threads []*store.Thread
	for rows.Next() {
		var thread store.Thread
		if err := rows.Scan(&thread.ID, &thread.AgentID, &thread.Title, &thread.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan thread row: %w", err)
		}
		threads = append(threads, &thread)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating thread rows: %w", err)
	}
	return threads, nil
}

// DeleteThread removes a thread along with its messages and surfaces.
func (s *PostgresThreadStore) DeleteThread(ctx context.Context, threadID string) error {
	for _, query := range []string{
		`DELETE FROM surfaces WHERE thread_id = $1`,
		`DELETE FROM messages WHERE thread_id = $1`,
		`DELETE FROM threads WHERE id = $1`,
	} {
		if _, err := s.pool.Exec(ctx, query, threadID); err != nil {
			return fmt.Errorf("failed to delete thread: %w", err)
		}
	}
	return nil
}

// AppendMessage adds a message to its thread.
func (s *PostgresThreadStore) AppendMessage(ctx context.Context, msg *store.Message) error {
	if _, err := s.GetThread(ctx, msg.ThreadID); err != nil {
		return err
	}

	query := `INSERT INTO messages (id, thread_id, role, content, created_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := s.pool.Exec(ctx, query, msg.ID, msg.ThreadID, msg.Role, msg.Content, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

// ListMessages returns a thread's messages in insertion order.
func (s *PostgresThreadStore) ListMessages(ctx context.Context, threadID string) ([]*store.Message, error) {
	if _, err := s.GetThread(ctx, threadID); err != nil {
		return nil, err
	}

	query := `SELECT id, thread_id, role, content, created_at FROM messages WHERE thread_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := s.pool.Query(ctx, query, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var msgs []*store.Message
	for rows.Next() {
		var msg store.Message
		if err := rows.Scan(&msg.ID, &msg.ThreadID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		msgs = append(msgs, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}
	return msgs, nil
}

// SaveSurface stores or replaces a surface snapshot for a thread.
func (s *PostgresThreadStore) SaveSurface(ctx context.Context, threadID, surfaceID string, snapshot []byte) error {
	query := `
		INSERT INTO surfaces (thread_id, surface_id, snapshot, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (thread_id, surface_id) DO UPDATE SET
			snapshot = EXCLUDED.snapshot,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query, threadID, surfaceID, snapshot, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save surface: %w", err)
	}
	return nil
}

// LoadSurfaces returns all surface snapshots for a thread, keyed by surface ID.
func (s *PostgresThreadStore) LoadSurfaces(ctx context.Context, threadID string) (map[string][]byte, error) {
	query := `SELECT surface_id, snapshot FROM surfaces WHERE thread_id = $1`

	rows, err := s.pool.Query(ctx, query, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to load surfaces: %w", err)
	}
	defer rows.Close()

	surfaces := make(map[string][]byte)
	for rows.Next() {
		var surfaceID string
		var snapshot []byte
		if err := rows.Scan(&surfaceID, &snapshot); err != nil {
			return nil, fmt.Errorf("failed to scan surface row: %w", err)
		}
		surfaces[surfaceID] = snapshot
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating surface rows: %w", err)
	}
	return surfaces, nil
}

// DeleteSurface removes a surface snapshot.
func (s *PostgresThreadStore) DeleteSurface(ctx context.Context, threadID, surfaceID string) error {
	query := `DELETE FROM surfaces WHERE thread_id = $1 AND surface_id = $2`
	_, err := s.pool.Exec(ctx, query, threadID, surfaceID)
	if err != nil {
		return fmt.Errorf("failed to delete surface: %w", err)
	}
	return nil
}
