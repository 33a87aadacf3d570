package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"robot_dashboard/internal/models"
)

type StateSQLite struct {
	db *sql.DB
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

const (
	robotStateRowID = 1

	upsertRobotStateSQL = `
		INSERT INTO robot_state (id, robot_number, robot_paired, battery_level, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			robot_number=excluded.robot_number,
			robot_paired=excluded.robot_paired,
			battery_level=excluded.battery_level,
			updated_at=excluded.updated_at
	`

	selectRobotStateSQL = `
		SELECT id, robot_number, robot_paired, battery_level, updated_at
		FROM robot_state WHERE id=?
	`
)

// Save upserts the robot_state row (id always 1). UpdatedAt is stored in UTC
// and defaults to now.
func (r *StateSQLite) Save(ctx context.Context, state models.RobotState) error {
	ts := state.UpdatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	} else {
		ts = ts.UTC()
	}

	_, err := r.db.ExecContext(ctx, upsertRobotStateSQL,
		robotStateRowID,
		state.RobotNumber,
		state.RobotPaired,
		state.BatteryLevel,
		ts,
	)
	return err
}

// Load returns the stored row, or the zero state when nothing was saved yet.
func (r *StateSQLite) Load(ctx context.Context) (models.RobotState, error) {
	row := r.db.QueryRowContext(ctx, selectRobotStateSQL, robotStateRowID)

	var s models.RobotState
	if err := row.Scan(
		&s.ID,
		&s.RobotNumber,
		&s.RobotPaired,
		&s.BatteryLevel,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RobotState{}, nil
		}
		return models.RobotState{}, err
	}
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}
