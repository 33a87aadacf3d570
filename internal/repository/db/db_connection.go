package db

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"

// Connection pragmas, applied by the modernc driver to every new connection.
var connPragmas = []string{
	"journal_mode(WAL)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

// migrations are applied in order; PRAGMA user_version records how many ran.
// Append only, never edit a released step.
var migrations = [][]string{
	{
		`CREATE TABLE IF NOT EXISTS robot_state (
			id            INTEGER PRIMARY KEY CHECK (id = 1),
			robot_number  INTEGER NOT NULL DEFAULT 0 CHECK (robot_number BETWEEN 0 AND 99),
			robot_paired  BOOLEAN NOT NULL DEFAULT 0,
			battery_level INTEGER NOT NULL DEFAULT 0,
			updated_at    TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS robot_events (
			id          TEXT PRIMARY KEY,
			occurred_at TIMESTAMP NOT NULL,
			type        TEXT NOT NULL,
			message     TEXT NOT NULL,
			meta        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_robot_events_occurred_at ON robot_events (occurred_at)`,
		`CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL
		)`,
	},
	{
		`CREATE TABLE IF NOT EXISTS command_history (
			id         TEXT PRIMARY KEY,
			command    TEXT NOT NULL,
			output     TEXT NOT NULL DEFAULT '',
			error      TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_command_history_created_at ON command_history (created_at)`,
	},
	{
		`CREATE INDEX IF NOT EXISTS idx_robot_events_type ON robot_events (type, occurred_at)`,
	},
}

// dsn turns a file path into a modernc DSN carrying connPragmas.
func dsn(path string) string {
	q := url.Values{}
	for _, p := range connPragmas {
		q.Add("_pragma", p)
	}
	return "file:" + path + "?" + q.Encode()
}

// InitDB opens the SQLite file shared by the dashboard server and robotctl
// and brings its schema up to date.
func InitDB(path string) (*sql.DB, error) {
	conn, err := sql.Open(sqliteDriverName, dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}
	// one writer; WAL lets robotctl read alongside the server
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping sqlite at %q: %w", path, err)
	}
	if err := migrate(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

func schemaVersion(conn *sql.DB) (int, error) {
	var v int
	if err := conn.QueryRow(`PRAGMA user_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// migrate runs each pending step in its own transaction.
func migrate(conn *sql.DB) error {
	current, err := schemaVersion(conn)
	if err != nil {
		return err
	}
	for v := current; v < len(migrations); v++ {
		tx, err := conn.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", v+1, err)
		}
		for i, stmt := range migrations[v] {
			if _, err := tx.Exec(stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d statement %d: %w", v+1, i+1, err)
			}
		}
		// PRAGMA does not accept bound parameters
		if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, v+1)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", v+1, err)
		}
	}
	return nil
}
