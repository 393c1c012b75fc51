// Package history provides SQLite-backed persistence for agent sessions:
// conversation messages and run outcomes, keyed by session ID.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aurite-ai/aurite-go/internal/agent"
	"github.com/aurite-ai/aurite-go/internal/llm"
)

// Store provides access to the session history database.
type Store struct {
	db *sql.DB
}

// Session is one persisted conversation.
type Session struct {
	ID        string
	AgentName string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a Store at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate runs idempotent schema migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		agent_name TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		role TEXT NOT NULL,
		content TEXT,
		tool_calls TEXT,
		tool_call_id TEXT,
		tool_name TEXT,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		agent_name TEXT NOT NULL,
		status TEXT NOT NULL,
		final_response TEXT,
		error_message TEXT,
		iterations INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_messages_session_seq ON messages(session_id, seq);
	CREATE INDEX IF NOT EXISTS idx_runs_session_id ON runs(session_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// EnsureSession creates the session if it does not exist, and refreshes its
// updated_at timestamp either way.
func (s *Store) EnsureSession(ctx context.Context, sessionID, agentName string) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, agent_name, created_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at`,
		sessionID, agentName, now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID, returning nil when absent.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	session := &Session{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, agent_name, created_at, updated_at FROM sessions WHERE id = ?`,
		sessionID,
	).Scan(&session.ID, &session.AgentName, &session.CreatedAt, &session.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	return session, nil
}

// ListSessions returns all sessions, most recently updated first.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agent_name, created_at, updated_at FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var session Session
		if err := rows.Scan(&session.ID, &session.AgentName, &session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// AppendMessages appends messages to a session in order, after any already
// stored.
func (s *Store) AppendMessages(ctx context.Context, sessionID string, msgs []llm.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), -1) + 1 FROM messages WHERE session_id = ?`,
		sessionID,
	).Scan(&next); err != nil {
		return fmt.Errorf("query next seq: %w", err)
	}

	now := time.Now().UTC()
	for i, msg := range msgs {
		var toolCalls sql.NullString
		if len(msg.ToolCalls) > 0 {
			encoded, err := json.Marshal(msg.ToolCalls)
			if err != nil {
				return fmt.Errorf("encode tool calls: %w", err)
			}
			toolCalls = sql.NullString{String: string(encoded), Valid: true}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO messages (session_id, seq, role, content, tool_calls, tool_call_id, tool_name, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			sessionID, next+i, string(msg.Role), msg.Content, toolCalls, msg.ToolCallID, msg.ToolName, now,
		)
		if err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}

	return tx.Commit()
}

// Messages returns a session's messages in append order. A session with no
// messages yields an empty slice.
func (s *Store) Messages(ctx context.Context, sessionID string) ([]llm.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, tool_calls, tool_call_id, tool_name FROM messages
		 WHERE session_id = ? ORDER BY seq ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var msgs []llm.Message
	for rows.Next() {
		var msg llm.Message
		var role string
		var content, toolCalls, toolCallID, toolName sql.NullString
		if err := rows.Scan(&role, &content, &toolCalls, &toolCallID, &toolName); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Role = llm.Role(role)
		msg.Content = content.String
		msg.ToolCallID = toolCallID.String
		msg.ToolName = toolName.String
		if toolCalls.Valid {
			if err := json.Unmarshal([]byte(toolCalls.String), &msg.ToolCalls); err != nil {
				return nil, fmt.Errorf("decode tool calls: %w", err)
			}
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

// SaveRun records the outcome of one agent run against a session.
func (s *Store) SaveRun(ctx context.Context, sessionID string, result *agent.RunResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, session_id, agent_name, status, final_response, error_message, iterations, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID, sessionID, result.AgentName, string(result.Status),
		result.FinalResponse, result.ErrorMessage, result.Iterations, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Runs returns a session's run records, oldest first.
func (s *Store) Runs(ctx context.Context, sessionID string) ([]agent.RunResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agent_name, status, final_response, error_message, iterations FROM runs
		 WHERE session_id = ? ORDER BY created_at ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []agent.RunResult
	for rows.Next() {
		var run agent.RunResult
		var status string
		var finalResponse, errorMessage sql.NullString
		if err := rows.Scan(&run.RunID, &run.AgentName, &status, &finalResponse, &errorMessage, &run.Iterations); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Status = agent.Status(status)
		run.FinalResponse = finalResponse.String
		run.ErrorMessage = errorMessage.String
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
