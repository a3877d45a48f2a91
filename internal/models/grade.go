package models

import (
	"encoding/json"
	"time"
)

// Grade score bounds.
const (
	GradeScoreMin = 0
	GradeScoreMax = 100
)

// Grade is a single assessment score entry. Score is kept as a JSON number
// so payloads carrying the value as a quoted string still decode; the
// validation rules parse and range-check it.
type Grade struct {
	RecordMeta
	StudentName    string      `json:"studentName"`
	Class          string      `json:"class"`
	Subject        string      `json:"subject"`
	AssessmentType string      `json:"assessmentType"`
	Score          json.Number `json:"score,omitempty"`
	Date           string      `json:"date"`
}

// EventDate implements Dated.
func (g *Grade) EventDate() (time.Time, bool) {
	return parseCalendarDate(g.Date)
}
