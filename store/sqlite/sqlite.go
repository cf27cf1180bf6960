// Package sqlite implements store.ThreadStore on a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/agentkit-go/agentkit/store"
)

// SqliteThreadStore implements store.ThreadStore using SQLite
type SqliteThreadStore struct {
	db *sql.DB
}

// SqliteOptions configuration for SQLite connection
type SqliteOptions struct {
	Path string // Database file path, ":memory:" for in-memory
}

// NewSqliteThreadStore opens the database and creates the schema.
func NewSqliteThreadStore(opts SqliteOptions) (*SqliteThreadStore, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	s := &SqliteThreadStore{db: db}

	if err := s.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// InitSchema creates the necessary tables if they don't exist
func (s *SqliteThreadStore) InitSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS threads (
			id TEXT PRIMARY KEY,
			agent_id TEXT NOT NULL,
			title TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_threads_agent_id ON threads (agent_id);

		CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			thread_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_messages_thread_id ON messages (thread_id);

		CREATE TABLE IF NOT EXISTS surfaces (
			thread_id TEXT NOT NULL,
			surface_id TEXT NOT NULL,
			snapshot TEXT NOT NULL,
			updated_at DATETIME NOT NULL,
			PRIMARY KEY (thread_id, surface_id)
		);
	`

	_, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SqliteThreadStore) Close() error {
	return s.db.Close()
}

// CreateThread stores a thread, replacing any existing row with the same ID.
func (s *SqliteThreadStore) CreateThread(ctx context.Context, thread *store.Thread) error {
	query := `
		INSERT INTO threads (id, agent_id, title, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			agent_id = excluded.agent_id,
			title = excluded.title,
			created_at = excluded.created_at
	`

	_, err := s.db.ExecContext(ctx, query, thread.ID, thread.AgentID, thread.Title, thread.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save thread: %w", err)
	}
	return nil
}

// GetThread retrieves a thread by ID
func (s *SqliteThreadStore) GetThread(ctx context.Context, threadID string) (*store.Thread, error) {
	query := `SELECT id, agent_id, title, created_at FROM threads WHERE id = ?`

	var thread store.Thread
	err := s.db.QueryRowContext(ctx, query, threadID).Scan(
		&thread.ID,
		&thread.AgentID,
		&thread.Title,
		&thread.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrThreadNotFound
		}
		return nil, fmt.Errorf("failed to load thread: %w", err)
	}
	return &thread, nil
}

// ListThreads returns threads for an agent, newest first. Empty agentID lists all.
func (s *SqliteThreadStore) ListThreads(ctx context.Context, agentID string) ([]*store.Thread, error) {
	query := `SELECT id, agent_id, title, created_at FROM threads`
	var args []any
	if agentID != "" {
		query += ` WHERE agent_id = ?`
		args = append(args, agentID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
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
func (s *SqliteThreadStore) DeleteThread(ctx context.Context, threadID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, query := range []string{
		`DELETE FROM surfaces WHERE thread_id = ?`,
		`DELETE FROM messages WHERE thread_id = ?`,
		`DELETE FROM threads WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, query, threadID); err != nil {
			return fmt.Errorf("failed to delete thread: %w", err)
		}
	}

	return tx.Commit()
}

// AppendMessage adds a message to its thread.
func (s *SqliteThreadStore) AppendMessage(ctx context.Context, msg *store.Message) error {
	if _, err := s.GetThread(ctx, msg.ThreadID); err != nil {
		return err
	}

	query := `INSERT INTO messages (id, thread_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, msg.ID, msg.ThreadID, msg.Role, msg.Content, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

// ListMessages returns a thread's messages in insertion order.
func (s *SqliteThreadStore) ListMessages(ctx context.Context, threadID string) ([]*store.Message, error) {
	if _, err := s.GetThread(ctx, threadID); err != nil {
		return nil, err
	}

	query := `SELECT id, thread_id, role, content, created_at FROM messages WHERE thread_id = ? ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, threadID)
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
func (s *SqliteThreadStore) SaveSurface(ctx context.Context, threadID, surfaceID string, snapshot []byte) error {
	query := `
		INSERT INTO surfaces (thread_id, surface_id, snapshot, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(thread_id, surface_id) DO UPDATE SET
			snapshot = excluded.snapshot,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query, threadID, surfaceID, string(snapshot))
	if err != nil {
		return fmt.Errorf("failed to save surface: %w", err)
	}
	return nil
}

// LoadSurfaces returns all surface snapshots for a thread, keyed by surface ID.
func (s *SqliteThreadStore) LoadSurfaces(ctx context.Context, threadID string) (map[string][]byte, error) {
	query := `SELECT surface_id, snapshot FROM surfaces WHERE thread_id = ?`

	rows, err := s.db.QueryContext(ctx, query, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to load surfaces: %w", err)
	}
	defer rows.Close()

	surfaces := make(map[string][]byte)
	for rows.Next() {
		var surfaceID, snapshot string
		if err := rows.Scan(&surfaceID, &snapshot); err != nil {
			return nil, fmt.Errorf("failed to scan surface row: %w", err)
		}
		surfaces[surfaceID] = []byte(snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating surface rows: %w", err)
	}
	return surfaces, nil
}

// DeleteSurface removes a surface snapshot.
func (s *SqliteThreadStore) DeleteSurface(ctx context.Context, threadID, surfaceID string) error {
	query := `DELETE FROM surfaces WHERE thread_id = ? AND surface_id = ?`
	_, err := s.db.ExecContext(ctx, query, threadID, surfaceID)
	if err != nil {
		return fmt.Errorf("failed to delete surface: %w", err)
	}
	return nil
}
