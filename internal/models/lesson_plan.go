package models

// LessonPlan is a teaching module plan ("modul ajar").
type LessonPlan struct {
	RecordMeta
	ModuleTitle string `json:"moduleTitle"`
	Subject     string `json:"subject"`
	Class       string `json:"class"`
	Phase       string `json:"phase"`
}
