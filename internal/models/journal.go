package models

import "time"

// JournalEntry is a teacher's daily class journal row.
type JournalEntry struct {
	RecordMeta
	TeacherName string `json:"teacherName"`
	Class       string `json:"class"`
	Day         string `json:"day"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime,omitempty"`
	EndTime     string `json:"endTime,omitempty"`
	Subject     string `json:"subject"`
	Topic       string `json:"topic"`
}

// EventDate implements Dated.
func (j *JournalEntry) EventDate() (time.Time, bool) {
	return parseCalendarDate(j.Date)
}
