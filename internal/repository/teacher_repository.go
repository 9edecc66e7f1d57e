package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/schedule-editor-bot/internal/models"
)

var teacherColumns = columnSet("subject_name", "teacher_name")

// TeacherRepository manages the per-subject teacher list.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns teacher assignments ordered by subject name.
func (r *TeacherRepository) List(ctx context.Context) ([]models.TeacherAssignment, error) {
	const query = `SELECT id, subject_name, teacher_name FROM teacher ORDER BY subject_name ASC`
	var assignments []models.TeacherAssignment
	if err := r.db.SelectContext(ctx, &assignments, query); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return assignments, nil
}

// FindByID returns the teacher assignment by id.
func (r *TeacherRepository) FindByID(ctx context.Context, id int64) (*models.TeacherAssignment, error) {
	const query = `SELECT id, subject_name, teacher_name FROM teacher WHERE id = $1`
	var assignment models.TeacherAssignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// UpdateColumns sets the given columns on one teacher assignment.
func (r *TeacherRepository) UpdateColumns(ctx context.Context, id int64, values []models.ColumnValue) error {
	return updateByID(ctx, r.db, "teacher", teacherColumns, id, values)
}
