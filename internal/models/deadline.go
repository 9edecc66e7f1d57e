package models

// Deadline is an assignment due date for a subject.
type Deadline struct {
	ID           int64  `db:"id" json:"id"`
	SubjectName  string `db:"subject_name" json:"subject_name"`
	DeadlineDate string `db:"deadline_date" json:"deadline_date"`
	Description  string `db:"description" json:"description"`
}
