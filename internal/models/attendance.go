package models

import "time"

// AttendanceStatus values for classroom attendance.
const (
	AttendancePresent = "Present"
	AttendanceSick    = "Sick"
	AttendanceExcused = "Excused"
	AttendanceAbsent  = "Absent"
	// AttendanceLate is only valid on counseling attendance records.
	AttendanceLate = "Late"
)

// AttendanceStatuses lists the classroom attendance enum.
var AttendanceStatuses = []string{AttendancePresent, AttendanceSick, AttendanceExcused, AttendanceAbsent}

// CounselingAttendanceStatuses extends the classroom enum with Late.
var CounselingAttendanceStatuses = []string{AttendancePresent, AttendanceSick, AttendanceExcused, AttendanceAbsent, AttendanceLate}

// Attendance is a classroom attendance record.
type Attendance struct {
	RecordMeta
	StudentName string `json:"studentName"`
	Class       string `json:"class"`
	Status      string `json:"status"`
	Date        string `json:"date"`
}

// EventDate implements Dated.
func (a *Attendance) EventDate() (time.Time, bool) {
	return parseCalendarDate(a.Date)
}
