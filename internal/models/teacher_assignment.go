package models

// TeacherAssignment links a subject to the teacher who leads it.
type TeacherAssignment struct {
	ID          int64  `db:"id" json:"id"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	TeacherName string `db:"teacher_name" json:"teacher_name"`
}
