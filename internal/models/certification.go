package models

// Certification is an entry of the exam and credit schedule.
type Certification struct {
	ID                int64  `db:"id" json:"id"`
	CertificationType string `db:"certification" json:"certification_type"`
	SubjectName       string `db:"subject_name" json:"subject_name"`
	ExamDate          string `db:"exam_date" json:"exam_date"`
	TeacherName       string `db:"teacher_name" json:"teacher_name"`
}
