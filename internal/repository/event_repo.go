package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"robot_dashboard/internal/models"

	"github.com/google/uuid"
)

// sqliteTimestampLayout sorts lexically in time order, which the range
// filters rely on.
const sqliteTimestampLayout = "2006-01-02 15:04:05"

const (
	insertEventSQL = `INSERT INTO robot_events (id, occurred_at, type, message, meta) VALUES (?, ?, ?, ?, ?)`
	selectEventSQL = `SELECT id, occurred_at, type, message, meta FROM robot_events`
)

// EventSQLite is the append-only robot activity log.
type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

// Append stores e. A missing ID or timestamp is generated; the type is
// stored upper-cased.
func (r *EventSQLite) Append(ctx context.Context, e models.RobotEvent) error {
	id := e.EventID
	if id == "" {
		id = uuid.NewString()
	}
	at := e.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}
	meta, err := encodeMeta(e.Metadata)
	if err != nil {
		return fmt.Errorf("event %s: %w", id, err)
	}

	_, err = r.db.ExecContext(ctx, insertEventSQL,
		id, at.UTC().Format(sqliteTimestampLayout), normalizeType(e.Type), e.Description, meta)
	if err != nil {
		return fmt.Errorf("insert event %s: %w", id, err)
	}
	return nil
}

// List returns events in [from, to], oldest first. Zero bounds and an empty
// type do not filter.
func (r *EventSQLite) List(ctx context.Context, from, to time.Time, typ string) ([]models.RobotEvent, error) {
	query, args := eventQuery(from, to, typ)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []models.RobotEvent{}
	for rows.Next() {
		var (
			ev   models.RobotEvent
			meta sql.NullString
		)
		if err := rows.Scan(&ev.EventID, &ev.OccurredAt, &ev.Type, &ev.Description, &meta); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.OccurredAt = ev.OccurredAt.UTC()
		ev.Metadata = decodeMeta(meta)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func eventQuery(from, to time.Time, typ string) (string, []any) {
	var (
		where []string
		args  []any
	)
	if !from.IsZero() {
		where = append(where, "occurred_at >= ?")
		args = append(args, from.UTC().Format(sqliteTimestampLayout))
	}
	if !to.IsZero() {
		where = append(where, "occurred_at <= ?")
		args = append(args, to.UTC().Format(sqliteTimestampLayout))
	}
	if typ = normalizeType(typ); typ != "" {
		where = append(where, "type = ?")
		args = append(args, typ)
	}

	var b strings.Builder
	b.WriteString(selectEventSQL)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY occurred_at ASC")
	return b.String(), args
}

func normalizeType(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// encodeMeta returns nil for absent metadata so the column stays NULL.
func encodeMeta(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	s := string(b)
	return &s, nil
}

// decodeMeta keeps a value that is not valid JSON as the raw string.
func decodeMeta(ns sql.NullString) any {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(ns.String), &v); err != nil {
		return ns.String
	}
	return v
}
