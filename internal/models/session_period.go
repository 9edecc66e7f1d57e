package models

// SessionPeriod is the singleton examination session window.
type SessionPeriod struct {
	Name      string `db:"name" json:"name"`
	StartDate string `db:"start_date" json:"start_date"`
	EndDate   string `db:"end_date" json:"end_date"`
}
