package models

import "time"

// Violation severity categories used by the counseling office.
const (
	ViolationLight    = "Light"
	ViolationModerate = "Moderate"
	ViolationSevere   = "Severe"
)

// ViolationCategories lists the severity enum.
var ViolationCategories = []string{ViolationLight, ViolationModerate, ViolationSevere}

// CounselingAttendance is the counseling office attendance record. Unlike
// classroom attendance it accepts a Late status and records the time of day.
type CounselingAttendance struct {
	RecordMeta
	StudentName string `json:"studentName"`
	Class       string `json:"class"`
	Status      string `json:"status"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// EventDate implements Dated.
func (c *CounselingAttendance) EventDate() (time.Time, bool) {
	return parseCalendarDate(c.Date)
}

// CounselingViolation documents a disciplinary incident.
type CounselingViolation struct {
	RecordMeta
	StudentName   string `json:"studentName"`
	Class         string `json:"class"`
	Category      string `json:"category"`
	ViolationType string `json:"violationType"`
	Location      string `json:"location"`
	Chronology    string `json:"chronology"`
	FollowUp      string `json:"followUp"`
	Date          string `json:"date,omitempty"`
}

// EventDate implements Dated.
func (c *CounselingViolation) EventDate() (time.Time, bool) {
	return parseCalendarDate(c.Date)
}
