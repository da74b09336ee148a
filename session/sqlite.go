package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteDB persists many sessions in one SQLite database. Each session's
// fields are stored as JSON rows keyed by (session_id, key).
type SQLiteDB struct {
	db *sql.DB
}

// Info describes a persisted session.
type Info struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Keys      int
}

// OpenSQLite opens or creates a SQLite database at path.
func OpenSQLite(path string) (*SQLiteDB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteDB{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS session_state (
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		key        TEXT NOT NULL,
		value      TEXT NOT NULL,
		PRIMARY KEY (session_id, key)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Adapter returns an Adapter bound to one session.
func (s *SQLiteDB) Adapter(sessionID string) Adapter {
	return &sqliteAdapter{db: s.db, id: sessionID}
}

// Sessions lists persisted sessions, most recently updated first.
func (s *SQLiteDB) Sessions(ctx context.Context) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.created_at, s.updated_at, COUNT(st.key)
		FROM sessions s
		LEFT JOIN session_state st ON st.session_id = s.id
		GROUP BY s.id
		ORDER BY s.updated_at DESC, s.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []Info
	for rows.Next() {
		var info Info
		var created, updated string
		if err := rows.Scan(&info.ID, &created, &updated, &info.Keys); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		info.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		info.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeleteSession removes a session and all of its fields.
func (s *SQLiteDB) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID)
	return err
}

type sqliteAdapter struct {
	db *sql.DB
	id string
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// touch upserts the session row inside tx.
func (a *sqliteAdapter) touch(ctx context.Context, tx *sql.Tx) error {
	ts := now()
	_, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id, created_at, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at`,
		a.id, ts, ts)
	return err
}

func (a *sqliteAdapter) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	var value string
	err := a.db.QueryRowContext(ctx,
		`SELECT value FROM session_state WHERE session_id = ? AND key = ?`, a.id, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return json.RawMessage(value), true, nil
}

func (a *sqliteAdapter) Set(ctx context.Context, key string, value json.RawMessage) error {
	return a.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO session_state (session_id, key, value) VALUES (?, ?, ?)
			ON CONFLICT(session_id, key) DO UPDATE SET value = excluded.value`,
			a.id, key, string(value))
		return err
	})
}

func (a *sqliteAdapter) Delete(ctx context.Context, key string) error {
	_, err := a.db.ExecContext(ctx,
		`DELETE FROM session_state WHERE session_id = ? AND key = ?`, a.id, key)
	return err
}

func (a *sqliteAdapter) Clear(ctx context.Context) error {
	_, err := a.db.ExecContext(ctx, `DELETE FROM session_state WHERE session_id = ?`, a.id)
	return err
}

func (a *sqliteAdapter) Load(ctx context.Context) (map[string]json.RawMessage, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT key, value FROM session_state WHERE session_id = ?`, a.id)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", a.id, err)
	}
	defer rows.Close()

	data := make(map[string]json.RawMessage)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan state: %w", err)
		}
		data[key] = json.RawMessage(value)
	}
	return data, rows.Err()
}

func (a *sqliteAdapter) Save(ctx context.Context, data map[string]json.RawMessage) error {
	return a.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM session_state WHERE session_id = ?`, a.id); err != nil {
			return err
		}
		for k, v := range data {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO session_state (session_id, key, value) VALUES (?, ?, ?)`,
				a.id, k, string(v)); err != nil {
				return fmt.Errorf("save %q: %w", k, err)
			}
		}
		return nil
	})
}

func (a *sqliteAdapter) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := a.touch(ctx, tx); err != nil {
		return fmt.Errorf("touch session %s: %w", a.id, err)
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
