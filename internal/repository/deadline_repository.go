package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/schedule-editor-bot/internal/models"
)

var deadlineColumns = columnSet("subject_name", "deadline_date", "description")

// DeadlineRepository reads and updates assignment deadlines.
type DeadlineRepository struct {
	db *sqlx.DB
}

// NewDeadlineRepository constructs a DeadlineRepository.
func NewDeadlineRepository(db *sqlx.DB) *DeadlineRepository {
	return &DeadlineRepository{db: db}
}

// List returns every deadline ordered by id.
func (r *DeadlineRepository) List(ctx context.Context) ([]models.Deadline, error) {
	const query = `SELECT id, subject_name, deadline_date, COALESCE(description, '') AS description FROM deadlines ORDER BY id ASC`
	var deadlines []models.Deadline
	if err := r.db.SelectContext(ctx, &deadlines, query); err != nil {
		return nil, fmt.Errorf("list deadlines: %w", err)
	}
	return deadlines, nil
}

// FindByID fetches a single deadline.
func (r *DeadlineRepository) FindByID(ctx context.Context, id int64) (*models.Deadline, error) {
	const query = `SELECT id, subject_name, deadline_date, COALESCE(description, '') AS description FROM deadlines WHERE id = $1`
	var deadline models.Deadline
	if err := r.db.GetContext(ctx, &deadline, query, id); err != nil {
		return nil, err
	}
	return &deadline, nil
}

// UpdateColumns sets the given columns on one deadline.
func (r *DeadlineRepository) UpdateColumns(ctx context.Context, id int64, values []models.ColumnValue) error {
	return updateByID(ctx, r.db, "deadlines", deadlineColumns, id, values)
}
