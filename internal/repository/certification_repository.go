package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/schedule-editor-bot/internal/models"
)

var certificationColumns = columnSet("certification", "subject_name", "exam_date", "teacher_name")

// CertificationRepository reads and updates the exam and credit schedule.
type CertificationRepository struct {
	db *sqlx.DB
}

// NewCertificationRepository constructs a CertificationRepository.
func NewCertificationRepository(db *sqlx.DB) *CertificationRepository {
	return &CertificationRepository{db: db}
}

// List returns every exam schedule entry ordered by id.
func (r *CertificationRepository) List(ctx context.Context) ([]models.Certification, error) {
	const query = `SELECT id, certification, subject_name, exam_date, teacher_name FROM exams_schedule ORDER BY id ASC`
	var entries []models.Certification
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list certifications: %w", err)
	}
	return entries, nil
}

// FindByID fetches a single exam schedule entry.
func (r *CertificationRepository) FindByID(ctx context.Context, id int64) (*models.Certification, error) {
	const query = `SELECT id, certification, subject_name, exam_date, teacher_name FROM exams_schedule WHERE id = $1`
	var entry models.Certification
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateColumns sets the given columns on one exam schedule entry.
func (r *CertificationRepository) UpdateColumns(ctx context.Context, id int64, values []models.ColumnValue) error {
	return updateByID(ctx, r.db, "exams_schedule", certificationColumns, id, values)
}
