package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/schedule-editor-bot/internal/models"
)

// SessionPeriodRepository manages the singleton session period row.
type SessionPeriodRepository struct {
	db *sqlx.DB
}

// NewSessionPeriodRepository constructs a SessionPeriodRepository.
func NewSessionPeriodRepository(db *sqlx.DB) *SessionPeriodRepository {
	return &SessionPeriodRepository{db: db}
}

// Get returns the current session period.
func (r *SessionPeriodRepository) Get(ctx context.Context) (*models.SessionPeriod, error) {
	const query = `SELECT name, start_date, end_date FROM session_periods LIMIT 1`
	var period models.SessionPeriod
	if err := r.db.GetContext(ctx, &period, query); err != nil {
		return nil, err
	}
	return &period, nil
}

// Replace overwrites all three columns of the session period.
func (r *SessionPeriodRepository) Replace(ctx context.Context, period *models.SessionPeriod) error {
	const query = `UPDATE session_periods SET name = $1, start_date = $2, end_date = $3`
	result, err := r.db.ExecContext(ctx, query, period.Name, period.StartDate, period.EndDate)
	if err != nil {
		return fmt.Errorf("replace session period: %w", err)
	}
	return requireAffected(result, "session_periods")
}
