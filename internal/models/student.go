package models

// StudentSex values accepted on student records.
const (
	StudentSexMale   = "M"
	StudentSexFemale = "F"
)

// Student is the pupil roster record.
type Student struct {
	RecordMeta
	Title                 string `json:"title"`
	NationalStudentNumber string `json:"nationalStudentNumber"`
	Sex                   string `json:"sex"`
	Class                 string `json:"class"`
}
