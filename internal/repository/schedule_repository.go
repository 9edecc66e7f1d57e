package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/schedule-editor-bot/internal/models"
)

// ScheduleRepository manages weekly schedule slots.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// ListDays returns the distinct days that have at least one slot.
func (r *ScheduleRepository) ListDays(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT day_of_week FROM schedule ORDER BY day_of_week ASC`
	var days []string
	if err := r.db.SelectContext(ctx, &days, query); err != nil {
		return nil, fmt.Errorf("list schedule days: %w", err)
	}
	return days, nil
}

// ListByDay returns the slots of one day ordered by lesson number.
func (r *ScheduleRepository) ListByDay(ctx context.Context, day string) ([]models.ScheduleSlot, error) {
	const query = `SELECT id, day_of_week, num_subject, subject_name, COALESCE(room_number, '') AS room_number FROM schedule WHERE day_of_week = $1 ORDER BY num_subject ASC`
	var slots []models.ScheduleSlot
	if err := r.db.SelectContext(ctx, &slots, query, day); err != nil {
		return nil, fmt.Errorf("list schedule for %s: %w", day, err)
	}
	return slots, nil
}

// FindByID returns a slot by id.
func (r *ScheduleRepository) FindByID(ctx context.Context, id int64) (*models.ScheduleSlot, error) {
	const query = `SELECT id, day_of_week, num_subject, subject_name, COALESCE(room_number, '') AS room_number FROM schedule WHERE id = $1`
	var slot models.ScheduleSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// Replace rewrites every editable column of the slot identified by slot.ID.
func (r *ScheduleRepository) Replace(ctx context.Context, slot *models.ScheduleSlot) error {
	const query = `UPDATE schedule SET day_of_week = $1, num_subject = $2, subject_name = $3, room_number = $4 WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query, slot.DayOfWeek, slot.NumSubject, slot.SubjectName, slot.RoomNumber, slot.ID)
	if err != nil {
		return fmt.Errorf("replace schedule slot: %w", err)
	}
	return requireAffected(result, "schedule")
}
