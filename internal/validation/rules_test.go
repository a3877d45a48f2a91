package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-dashboard-api/internal/models"
)

func validTeacher() *models.Teacher {
	return &models.Teacher{
		RecordMeta:         models.RecordMeta{RecordType: models.TypeTeacher},
		Title:              "Dra. Siti Rahma",
		RegistrationNumber: "198903172015041001",
		Subject:            "Mathematics",
		Role:               "Subject Teacher",
		Username:           "siti.rahma",
		Password:           "Sekolah123",
	}
}

func validGrade() *models.Grade {
	return &models.Grade{
		RecordMeta:     models.RecordMeta{RecordType: models.TypeGrade},
		StudentName:    "Andi",
		Class:          "10A",
		Subject:        "Math",
		AssessmentType: "Quiz",
		Score:          json.Number("85"),
		Date:           "2024-05-01",
	}
}

func TestValidateAcceptsValidRecords(t *testing.T) {
	rules := New(8)

	cases := []models.Record{
		validTeacher(),
		&models.Student{Title: "Budi", NationalStudentNumber: "0051234567", Sex: "M", Class: "10A"},
		&models.Class{Title: "10A", Level: "10", Track: "Science"},
		&models.LessonPlan{RecordMeta: models.RecordMeta{Author: "Siti"}, ModuleTitle: "Algebra", Subject: "Math", Class: "10A", Phase: "E"},
		&models.JournalEntry{TeacherName: "Siti", Class: "10A", Day: "Monday", Date: "2024-05-01", Subject: "Math", Topic: "Fractions", StartTime: "07:30", EndTime: "09:00"},
		&models.Attendance{StudentName: "Andi", Class: "10A", Status: "Present", Date: "2024-05-01"},
		validGrade(),
		&models.BehaviorNote{StudentName: "Andi", Class: "10A", BehaviorType: "Positive", Note: "Helped classmates", Date: "2024-05-01"},
		&models.CounselingAttendance{StudentName: "Andi", Class: "10A", Status: "Late", Date: "2024-05-01", Time: "07:45"},
		&models.CounselingViolation{StudentName: "Andi", Class: "10A", Category: "Light", ViolationType: "Uniform", Location: "Gate", Chronology: "Arrived without tie", FollowUp: "Verbal warning"},
		&models.Generic{Title: "Announcement", Content: "School closes early"},
	}

	for _, rec := range cases {
		result := rules.Validate(rec)
		assert.True(t, result.Valid, "expected %T to validate, got %q", rec, result.Message)
	}
}

func TestValidateMissingRequiredFieldNamesField(t *testing.T) {
	rules := New(8)

	grade := validGrade()
	grade.AssessmentType = ""
	result := rules.Validate(grade)
	require.False(t, result.Valid)
	assert.Contains(t, result.Message, "assessmentType")

	teacher := validTeacher()
	teacher.Username = ""
	result = rules.Validate(teacher)
	require.False(t, result.Valid)
	assert.Contains(t, result.Message, "username")
}

func TestValidateMissingFieldReportedBeforeDomainFailure(t *testing.T) {
	rules := New(8)

	// Bad registration number AND missing subject: the missing field wins.
	teacher := validTeacher()
	teacher.RegistrationNumber = "123"
	teacher.Subject = ""
	result := rules.Validate(teacher)
	require.False(t, result.Valid)
	assert.Contains(t, result.Message, "subject")
}

func TestValidateTeacherRegistrationNumber(t *testing.T) {
	rules := New(8)

	teacher := validTeacher()
	teacher.RegistrationNumber = "19890317201504100" // 17 digits
	result := rules.Validate(teacher)
	require.False(t, result.Valid)
	assert.Contains(t, result.Message, "18 digits")

	teacher.RegistrationNumber = "19890317201504100x"
	result = rules.Validate(teacher)
	assert.False(t, result.Valid)
}

func TestValidatePasswordPolicyOrder(t *testing.T) {
	rules := New(8)

	cases := []struct {
		password string
		want     string
	}{
		{"Ab1", "at least 8 characters"},
		{"ABCDEFG1", "lowercase"},
		{"abcdefg1", "uppercase"},
		{"Abcdefgh", "digit"},
	}
	for _, tc := range cases {
		teacher := validTeacher()
		teacher.Password = tc.password
		result := rules.Validate(teacher)
		require.False(t, result.Valid, "password %q should fail", tc.password)
		assert.Contains(t, result.Message, tc.want)
	}
}

func TestValidateGradeScoreRange(t *testing.T) {
	rules := New(8)

	grade := validGrade()
	grade.Score = json.Number("105")
	result := rules.Validate(grade)
	require.False(t, result.Valid)
	assert.Contains(t, result.Message, "between 0 and 100")

	grade.Score = json.Number("-1")
	assert.False(t, rules.Validate(grade).Valid)

	grade.Score = json.Number("85")
	assert.True(t, rules.Validate(grade).Valid)
}

func TestValidateStudentChecks(t *testing.T) {
	rules := New(8)

	student := &models.Student{Title: "Budi", NationalStudentNumber: "123", Sex: "M", Class: "10A"}
	result := rules.Validate(student)
	require.False(t, result.Valid)
	assert.Contains(t, result.Message, "10 digits")

	student.NationalStudentNumber = "0051234567"
	student.Sex = "X"
	result = rules.Validate(student)
	require.False(t, result.Valid)
	assert.Contains(t, result.Message, "sex")
}

func TestValidateJournalTimeOrder(t *testing.T) {
	rules := New(8)

	entry := &models.JournalEntry{TeacherName: "Siti", Class: "10A", Day: "Monday", Date: "2024-05-01", Subject: "Math", Topic: "Fractions", StartTime: "09:00", EndTime: "07:30"}
	result := rules.Validate(entry)
	require.False(t, result.Valid)
	assert.Contains(t, result.Message, "startTime")

	// Equal start and end is rejected too.
	entry.EndTime = "09:00"
	assert.False(t, rules.Validate(entry).Valid)

	// Times are optional as a pair.
	entry.StartTime = ""
	entry.EndTime = ""
	assert.True(t, rules.Validate(entry).Valid)
}

func TestValidateEnumChecks(t *testing.T) {
	rules := New(8)

	att := &models.Attendance{StudentName: "Andi", Class: "10A", Status: "Late", Date: "2024-05-01"}
	assert.False(t, rules.Validate(att).Valid, "Late is counseling-only")

	counseling := &models.CounselingAttendance{StudentName: "Andi", Class: "10A", Status: "Late", Date: "2024-05-01", Time: "07:45"}
	assert.True(t, rules.Validate(counseling).Valid)

	violation := &models.CounselingViolation{StudentName: "Andi", Class: "10A", Category: "Harsh", ViolationType: "Fight", Location: "Yard", Chronology: "...", FollowUp: "Parents called"}
	assert.False(t, rules.Validate(violation).Valid)
}

func TestValidateIsTotal(t *testing.T) {
	rules := New(8)
	result := rules.Validate(nil)
	assert.False(t, result.Valid)
}
