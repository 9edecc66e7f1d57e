package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schedule-editor-bot/internal/models"
)

func TestCertificationRepositoryListAndFind(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCertificationRepository(db)

	columns := []string{"id", "certification", "subject_name", "exam_date", "teacher_name"}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, certification, subject_name, exam_date, teacher_name FROM exams_schedule ORDER BY id ASC")).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(1, "Exam", "Math", "2024-06-10", "Ivanov I.I."))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, certification, subject_name, exam_date, teacher_name FROM exams_schedule WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(1, "Exam", "Math", "2024-06-10", "Ivanov I.I."))

	entries, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Exam", entries[0].CertificationType)

	entry, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Ivanov I.I.", entry.TeacherName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCertificationRepositoryUpdateColumns(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCertificationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE exams_schedule SET certification = $1 WHERE id = $2")).
		WithArgs("Credit", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateColumns(context.Background(), 5, []models.ColumnValue{{Column: "certification", Value: "Credit"}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
