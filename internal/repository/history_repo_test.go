package repository

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"robot_dashboard/internal/models"
	"robot_dashboard/internal/repository/db"

	"github.com/DATA-DOG/go-sqlmock"
)

func newHistoryRepo(t *testing.T) (*HistorySQLite, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewHistorySQLite(db), mock
}

func TestHistoryAdd_InsertsAndTrimsInOneTransaction(t *testing.T) {
	repo, mock := newHistoryRepo(t)
	ts := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO command_history")).
		WithArgs("h-1", "ros2 topic list -t", "/cmd_vel", "", ts).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM command_history WHERE id NOT IN")).
		WithArgs(models.MaxHistoryEntries).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Add(testCtx(t), models.CommandHistoryEntry{
		ID:        "h-1",
		Command:   "ros2 topic list -t",
		Output:    "/cmd_vel",
		Timestamp: ts,
	}, 0)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestHistoryAdd_TrimFailureRollsBack(t *testing.T) {
	repo, mock := newHistoryRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO command_history")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM command_history WHERE id NOT IN")).
		WithArgs(3).
		WillReturnError(errors.New("busy"))
	mock.ExpectRollback()

	if err := repo.Add(testCtx(t), models.CommandHistoryEntry{Command: "x"}, 3); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestHistoryList_NewestFirst(t *testing.T) {
	repo, mock := newHistoryRepo(t)
	newer := time.Date(2025, 5, 1, 10, 0, 1, 0, time.UTC)
	older := newer.Add(-time.Second)

	rows := sqlmock.NewRows([]string{"id", "command", "output", "error", "created_at"}).
		AddRow("b", "ros2 topic pub", "", "Failed to send command", newer).
		AddRow("a", "ros2 topic list -t", "/cmd_vel", "", older)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY rowid DESC LIMIT ?")).
		WithArgs(models.MaxHistoryEntries).
		WillReturnRows(rows)

	got, err := repo.List(testCtx(t), 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("unexpected order %+v", got)
	}
	if got[0].Error != "Failed to send command" || got[1].Output != "/cmd_vel" {
		t.Fatalf("fields not scanned: %+v", got)
	}
}

func TestHistoryClear(t *testing.T) {
	repo, mock := newHistoryRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM command_history")).
		WillReturnResult(sqlmock.NewResult(0, 4))

	if err := repo.Clear(testCtx(t)); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestHistorySQLite_InsertionOrderBeatsTimestamps(t *testing.T) {
	conn, err := db.InitDB(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	repo := NewHistorySQLite(conn)
	ctx := context.Background()

	base := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	// a teleop stop stamped before its round trip lands after a terminal
	// command stamped later
	add := func(cmd string, at time.Time, limit int) {
		t.Helper()
		if err := repo.Add(ctx, models.CommandHistoryEntry{Command: cmd, Timestamp: at}, limit); err != nil {
			t.Fatalf("Add(%q): %v", cmd, err)
		}
	}
	add("ros2 topic echo /odom --once", base, 2)
	add("ros2 topic list", base.Add(20*time.Millisecond), 2)
	add("ros2 topic pub --once /cmd_vel stop", base.Add(time.Millisecond), 2)

	got, err := repo.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2 after trim: %+v", len(got), got)
	}
	if got[0].Command != "ros2 topic pub --once /cmd_vel stop" || got[1].Command != "ros2 topic list" {
		t.Fatalf("order = [%q %q], want last inserted first and oldest evicted", got[0].Command, got[1].Command)
	}
}
