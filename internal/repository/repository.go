package repository

import (
	"context"
	"database/sql"
	"time"

	"robot_dashboard/internal/models"
)

// Operators stores dashboard operator accounts.
type Operators interface {
	Create(ctx context.Context, username, passwordHash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// StateRepo persists the single robot connection row.
type StateRepo interface {
	Save(ctx context.Context, s models.RobotState) error
	Load(ctx context.Context) (models.RobotState, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.RobotEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.RobotEvent, error)
}

// HistoryRepo stores executed commands, newest first, bounded by limit.
type HistoryRepo interface {
	Add(ctx context.Context, e models.CommandHistoryEntry, limit int) error
	List(ctx context.Context, limit int) ([]models.CommandHistoryEntry, error)
	Clear(ctx context.Context) error
}

type Repository struct {
	StateRepo   StateRepo
	EventRepo   EventRepo
	HistoryRepo HistoryRepo
	Operators   Operators
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StateRepo:   NewStateSQLite(db),
		EventRepo:   NewEventSQLite(db),
		HistoryRepo: NewHistorySQLite(db),
		Operators:   NewOperatorSQLite(db),
	}
}
