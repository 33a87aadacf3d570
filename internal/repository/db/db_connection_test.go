package db

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDSN(t *testing.T) {
	got := dsn("/tmp/robot.db")
	if !strings.HasPrefix(got, "file:/tmp/robot.db?") {
		t.Fatalf("dsn = %q", got)
	}
	for _, want := range []string{"journal_mode%28WAL%29", "foreign_keys%281%29", "busy_timeout%285000%29"} {
		if !strings.Contains(got, want) {
			t.Fatalf("dsn %q missing %s", got, want)
		}
	}
}

func TestInitDB_MigratesOnceAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "robot.db")

	for i := 0; i < 2; i++ {
		conn, err := InitDB(path)
		if err != nil {
			t.Fatalf("InitDB() attempt %d error = %v", i+1, err)
		}
		v, err := schemaVersion(conn)
		if err != nil || v != len(migrations) {
			t.Fatalf("schema version = %d, %v; want %d", v, err, len(migrations))
		}
		for _, table := range []string{"robot_state", "robot_events", "command_history", "users"} {
			var name string
			err := conn.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
			if err != nil {
				t.Fatalf("table %s missing: %v", table, err)
			}
		}
		var mode string
		if err := conn.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil || !strings.EqualFold(mode, "wal") {
			t.Fatalf("journal_mode = %q, %v", mode, err)
		}
		if err := conn.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
}

func TestInitDB_RobotStateIsSingleRow(t *testing.T) {
	conn, err := InitDB(filepath.Join(t.TempDir(), "robot.db"))
	if err != nil {
		t.Fatalf("InitDB() error = %v", err)
	}
	defer conn.Close()

	if _, err := conn.Exec(`INSERT INTO robot_state (id, robot_number, robot_paired, battery_level, updated_at) VALUES (2, 1, 0, 0, CURRENT_TIMESTAMP)`); err == nil {
		t.Fatalf("expected CHECK (id = 1) violation")
	}
	if _, err := conn.Exec(`INSERT INTO robot_state (id, robot_number, robot_paired, battery_level, updated_at) VALUES (1, 100, 0, 0, CURRENT_TIMESTAMP)`); err == nil {
		t.Fatalf("expected robot_number range violation")
	}
}

func TestInitDB_DuplicateUsernameRejected(t *testing.T) {
	conn, err := InitDB(filepath.Join(t.TempDir(), "robot.db"))
	if err != nil {
		t.Fatalf("InitDB() error = %v", err)
	}
	defer conn.Close()

	if _, err := conn.Exec(`INSERT INTO users (username, password_hash) VALUES ('alice', 'h')`); err != nil {
		t.Fatal(err)
	}
	_, err = conn.Exec(`INSERT INTO users (username, password_hash) VALUES ('alice', 'h2')`)
	if err == nil || !strings.Contains(err.Error(), "UNIQUE constraint failed") {
		t.Fatalf("duplicate insert err = %v", err)
	}
}
