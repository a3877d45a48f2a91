package models

import "time"

// Behavior note categories.
const (
	BehaviorPositive = "Positive"
	BehaviorNegative = "Negative"
	BehaviorNeutral  = "Neutral"
)

// BehaviorTypes lists the behavior note enum.
var BehaviorTypes = []string{BehaviorPositive, BehaviorNegative, BehaviorNeutral}

// BehaviorNote captures an observation about a student.
type BehaviorNote struct {
	RecordMeta
	StudentName  string `json:"studentName"`
	Class        string `json:"class"`
	BehaviorType string `json:"behaviorType"`
	Note         string `json:"note"`
	Date         string `json:"date"`
}

// EventDate implements Dated.
func (b *BehaviorNote) EventDate() (time.Time, bool) {
	return parseCalendarDate(b.Date)
}
