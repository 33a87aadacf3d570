package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"robot_dashboard/internal/models"
)

// ErrUsernameTaken is returned by Create when the username already exists.
var ErrUsernameTaken = errors.New("username already taken")

// OperatorSQLite stores dashboard operators in the users table.
type OperatorSQLite struct {
	db *sql.DB
}

func NewOperatorSQLite(db *sql.DB) *OperatorSQLite {
	return &OperatorSQLite{db: db}
}

var _ Operators = (*OperatorSQLite)(nil)

const (
	insertOperatorSQL  = `INSERT INTO users (username, password_hash) VALUES (?, ?)`
	selectOperatorSQL  = `SELECT id, username, password_hash FROM users WHERE username = ?`
	uniqueViolationMsg = "UNIQUE constraint failed"
)

// Create inserts an operator and returns its ID.
func (r *OperatorSQLite) Create(ctx context.Context, username, passwordHash string) (int, error) {
	res, err := r.db.ExecContext(ctx, insertOperatorSQL, username, passwordHash)
	if err != nil {
		if strings.Contains(err.Error(), uniqueViolationMsg) {
			return 0, fmt.Errorf("%w: %q", ErrUsernameTaken, username)
		}
		return 0, fmt.Errorf("insert operator %q: %w", username, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id for operator %q: %w", username, err)
	}
	return int(id), nil
}

// GetByUsername returns (nil, nil) when no operator has that name.
func (r *OperatorSQLite) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, selectOperatorSQL, username).Scan(&u.ID, &u.Username, &u.PasswordHash)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("select operator %q: %w", username, err)
	}
	return &u, nil
}
