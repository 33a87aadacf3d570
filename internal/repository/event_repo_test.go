package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"robot_dashboard/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return c
}

func newEventRepo(t *testing.T) (*EventSQLite, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewEventSQLite(db), mock
}

const insertEventFragment = `INSERT INTO robot_events (id, occurred_at, type, message, meta)`

func TestEventAppend_FillsDefaultsAndNormalizesType(t *testing.T) {
	repo, mock := newEventRepo(t)

	isGeneratedID := sqlmockArgumentFunc(func(v interface{}) bool {
		s, ok := v.(string)
		return ok && len(s) == 36
	})

	mock.ExpectExec(regexp.QuoteMeta(insertEventFragment)).
		WithArgs(isGeneratedID, sqlmock.AnyArg(), models.EventPairing, "robot 7 paired", `{"robot":7}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Append(testCtx(t), models.RobotEvent{
		Type:        "  pairing ",
		Description: "robot 7 paired",
		Metadata:    map[string]any{"robot": 7},
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestEventAppend_FormatsGivenTimeInUTC(t *testing.T) {
	repo, mock := newEventRepo(t)

	loc := time.FixedZone("UTC+3", 3*3600)
	at := time.Date(2025, 3, 4, 15, 0, 0, 0, loc)

	mock.ExpectExec(regexp.QuoteMeta(insertEventFragment)).
		WithArgs("evt-1", "2025-03-04 12:00:00", models.EventConnection, "lost", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Append(testCtx(t), models.RobotEvent{
		EventID:     "evt-1",
		OccurredAt:  at,
		Type:        models.EventConnection,
		Description: "lost",
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestEventAppend_DBError(t *testing.T) {
	repo, mock := newEventRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(insertEventFragment)).
		WillReturnError(errors.New("disk full"))

	if err := repo.Append(testCtx(t), models.RobotEvent{Type: "error", Description: "x"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestEventList(t *testing.T) {
	from := time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	cols := []string{"id", "occurred_at", "type", "message", "meta"}

	tests := []struct {
		name     string
		from, to time.Time
		typ      string
		query    string
		args     []interface{}
		rows     *sqlmock.Rows
		wantIDs  []string
		wantMeta any
		wantErr  bool
	}{
		{
			name:  "no filters parses metadata",
			query: `SELECT id, occurred_at, type, message, meta FROM robot_events ORDER BY occurred_at ASC`,
			rows: sqlmock.NewRows(cols).
				AddRow("1", from, "PAIRING", "started", `{"robot":3}`).
				AddRow("2", to, "ERROR", "raw", `not-json`),
			wantIDs:  []string{"1", "2"},
			wantMeta: map[string]any{"robot": float64(3)},
		},
		{
			name:  "range and type",
			from:  from,
			to:    to,
			typ:   " connection ",
			query: `SELECT id, occurred_at, type, message, meta FROM robot_events WHERE occurred_at >= ? AND occurred_at <= ? AND type = ? ORDER BY occurred_at ASC`,
			args:  []interface{}{"2025-01-01 11:00:00", "2025-01-01 12:00:00", "CONNECTION"},
			rows: sqlmock.NewRows(cols).
				AddRow("5", from, "CONNECTION", "lost", nil),
			wantIDs: []string{"5"},
		},
		{
			name:    "scan error",
			query:   `SELECT id, occurred_at, type, message, meta FROM robot_events ORDER BY occurred_at ASC`,
			rows:    sqlmock.NewRows(cols).AddRow("x", 123, "INFO", "msg", nil),
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newEventRepo(t)
			exp := mock.ExpectQuery(regexp.QuoteMeta(tc.query))
			if len(tc.args) > 0 {
				exp = exp.WithArgs(toDriverArgs(tc.args)...)
			}
			exp.WillReturnRows(tc.rows)

			got, err := repo.List(testCtx(t), tc.from, tc.to, tc.typ)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(got) != len(tc.wantIDs) {
				t.Fatalf("got %d events, want %d", len(got), len(tc.wantIDs))
			}
			for i, id := range tc.wantIDs {
				if got[i].EventID != id {
					t.Fatalf("event %d id = %q, want %q", i, got[i].EventID, id)
				}
				if got[i].OccurredAt.Location() != time.UTC {
					t.Fatalf("event %d not UTC", i)
				}
			}
			if tc.wantMeta != nil {
				m, ok := got[0].Metadata.(map[string]any)
				if !ok || m["robot"] != float64(3) {
					t.Fatalf("metadata = %#v", got[0].Metadata)
				}
				if got[1].Metadata != "not-json" {
					t.Fatalf("malformed metadata should be kept raw, got %#v", got[1].Metadata)
				}
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("mock expectations: %v", err)
			}
		})
	}
}

func TestEventAppend_UnencodableMetadata(t *testing.T) {
	repo, mock := newEventRepo(t)

	err := repo.Append(testCtx(t), models.RobotEvent{Type: models.EventVideo, Metadata: map[string]any{"ch": make(chan int)}})
	if err == nil || !strings.Contains(err.Error(), "encode metadata") {
		t.Fatalf("err = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no query expected: %v", err)
	}
}

func TestEventList_QueryError(t *testing.T) {
	repo, mock := newEventRepo(t)
	mock.ExpectQuery("SELECT").WillReturnError(sql.ErrConnDone)
	if _, err := repo.List(testCtx(t), time.Time{}, time.Time{}, ""); !errors.Is(err, sql.ErrConnDone) {
		t.Fatalf("expected ErrConnDone, got %v", err)
	}
}
