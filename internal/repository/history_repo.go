package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"robot_dashboard/internal/models"

	"github.com/google/uuid"
)

type HistorySQLite struct {
	db *sql.DB
}

func NewHistorySQLite(db *sql.DB) *HistorySQLite { return &HistorySQLite{db: db} }

const (
	insertHistorySQL = `
		INSERT INTO command_history (id, command, output, error, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	// Order is insertion order (rowid), not created_at: callers stamp entries
	// before a round trip, so timestamps can arrive out of order.
	trimHistorySQL = `
		DELETE FROM command_history WHERE id NOT IN (
			SELECT id FROM command_history ORDER BY rowid DESC LIMIT ?
		)
	`

	selectHistorySQL = `
		SELECT id, command, output, error, created_at
		FROM command_history ORDER BY rowid DESC LIMIT ?
	`

	clearHistorySQL = `DELETE FROM command_history`
)

// Add inserts e and evicts everything beyond the newest limit entries in the
// same transaction.
func (r *HistorySQLite) Add(ctx context.Context, e models.CommandHistoryEntry, limit int) error {
	if limit <= 0 {
		limit = models.MaxHistoryEntries
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, insertHistorySQL,
		e.ID, e.Command, e.Output, e.Error, e.Timestamp.UTC(),
	); err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	if _, err := tx.ExecContext(ctx, trimHistorySQL, limit); err != nil {
		return fmt.Errorf("trim history: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history transaction: %w", err)
	}
	return nil
}

// List returns up to limit entries, most recently inserted first.
func (r *HistorySQLite) List(ctx context.Context, limit int) ([]models.CommandHistoryEntry, error) {
	if limit <= 0 {
		limit = models.MaxHistoryEntries
	}
	rows, err := r.db.QueryContext(ctx, selectHistorySQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.CommandHistoryEntry, 0, limit)
	for rows.Next() {
		var e models.CommandHistoryEntry
		if err := rows.Scan(&e.ID, &e.Command, &e.Output, &e.Error, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Timestamp = e.Timestamp.UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *HistorySQLite) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, clearHistorySQL)
	return err
}
