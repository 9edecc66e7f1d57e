package models

// Weekday labels offered for schedule.day_of_week. Rows written elsewhere may carry other
// labels, so stored values are only bounded by the column width.
const (
	Monday    = "Monday"
	Tuesday   = "Tuesday"
	Wednesday = "Wednesday"
	Thursday  = "Thursday"
	Friday    = "Friday"
	Saturday  = "Saturday"
	Sunday    = "Sunday"
)

// Weekdays lists the fixed weekday set in calendar order.
var Weekdays = []string{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Slot bounds enforced by the schedule table.
const (
	MinSubjectNumber = 1
	MaxSubjectNumber = 8
)

// ScheduleSlot is one lesson of the weekly class schedule. Updates always replace the full row.
type ScheduleSlot struct {
	ID          int64  `db:"id" json:"id"`
	DayOfWeek   string `db:"day_of_week" json:"day_of_week" validate:"required,max=20"`
	NumSubject  int    `db:"num_subject" json:"num_subject" validate:"min=1,max=8"`
	SubjectName string `db:"subject_name" json:"subject_name" validate:"required"`
	RoomNumber  string `db:"room_number" json:"room_number"`
}
