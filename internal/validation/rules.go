package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/sma-dashboard-api/internal/models"
)

// Result is the outcome of validating a candidate record. Validation never
// returns an error: malformed input yields a failed Result instead.
type Result struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

func ok() Result                      { return Result{Valid: true} }
func fail(msg string) Result          { return Result{Message: msg} }
func failf(f string, a ...any) Result { return Result{Message: fmt.Sprintf(f, a...)} }

// Rules validates candidate records per type. Required-field checks always
// run before type-specific checks so a missing field is reported as missing
// rather than as a domain failure.
type Rules struct {
	validate          *validator.Validate
	passwordMinLength int
}

// New builds the rule set. passwordMinLength bounds the teacher account
// password policy; values below 1 fall back to 8.
func New(passwordMinLength int) *Rules {
	if passwordMinLength < 1 {
		passwordMinLength = 8
	}
	v := validator.New()
	_ = v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return false
		}
		for _, r := range s {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	})
	return &Rules{validate: v, passwordMinLength: passwordMinLength}
}

type field struct {
	name  string
	value string
}

// Validate runs the full rule set for the record's type.
func (r *Rules) Validate(rec models.Record) Result {
	if rec == nil {
		return fail("record is missing")
	}
	for _, f := range requiredFields(rec) {
		if strings.TrimSpace(f.value) == "" {
			return failf("%s is required", f.name)
		}
	}
	return r.domainChecks(rec)
}

// requiredFields returns the per-type required field list, keyed by the
// record's wire field names.
func requiredFields(rec models.Record) []field {
	switch v := rec.(type) {
	case *models.Teacher:
		return []field{
			{"title", v.Title},
			{"registrationNumber", v.RegistrationNumber},
			{"subject", v.Subject},
			{"role", v.Role},
			{"username", v.Username},
			{"password", v.Password},
		}
	case *models.Student:
		return []field{
			{"title", v.Title},
			{"nationalStudentNumber", v.NationalStudentNumber},
			{"sex", v.Sex},
			{"class", v.Class},
		}
	case *models.Class:
		return []field{
			{"title", v.Title},
			{"level", v.Level},
			{"track", v.Track},
		}
	case *models.LessonPlan:
		return []field{
			{"moduleTitle", v.ModuleTitle},
			{"subject", v.Subject},
			{"class", v.Class},
			{"phase", v.Phase},
			{"author", v.Author},
		}
	case *models.JournalEntry:
		return []field{
			{"teacherName", v.TeacherName},
			{"class", v.Class},
			{"day", v.Day},
			{"date", v.Date},
			{"subject", v.Subject},
			{"topic", v.Topic},
		}
	case *models.Attendance:
		return []field{
			{"studentName", v.StudentName},
			{"class", v.Class},
			{"status", v.Status},
			{"date", v.Date},
		}
	case *models.Grade:
		return []field{
			{"studentName", v.StudentName},
			{"class", v.Class},
			{"subject", v.Subject},
			{"assessmentType", v.AssessmentType},
			{"score", v.Score.String()},
			{"date", v.Date},
		}
	case *models.BehaviorNote:
		return []field{
			{"studentName", v.StudentName},
			{"class", v.Class},
			{"behaviorType", v.BehaviorType},
			{"note", v.Note},
			{"date", v.Date},
		}
	case *models.CounselingAttendance:
		return []field{
			{"studentName", v.StudentName},
			{"class", v.Class},
			{"status", v.Status},
			{"date", v.Date},
			{"time", v.Time},
		}
	case *models.CounselingViolation:
		return []field{
			{"studentName", v.StudentName},
			{"class", v.Class},
			{"category", v.Category},
			{"violationType", v.ViolationType},
			{"location", v.Location},
			{"chronology", v.Chronology},
			{"followUp", v.FollowUp},
		}
	case *models.Generic:
		return []field{
			{"title", v.Title},
			{"content", v.Content},
		}
	default:
		return nil
	}
}

func (r *Rules) domainChecks(rec models.Record) Result {
	switch v := rec.(type) {
	case *models.Teacher:
		if err := r.validate.Var(v.RegistrationNumber, "digits,len=18"); err != nil {
			return fail("registrationNumber must be exactly 18 digits")
		}
		return r.checkPassword(v.Password)
	case *models.Student:
		if err := r.validate.Var(v.NationalStudentNumber, "digits,len=10"); err != nil {
			return fail("nationalStudentNumber must be exactly 10 digits")
		}
		if err := r.validate.Var(v.Sex, "oneof=M F"); err != nil {
			return fail("sex must be M or F")
		}
		return ok()
	case *models.Class:
		if err := r.validate.Var(v.Level, "oneof=10 11 12"); err != nil {
			return fail("level must be 10, 11 or 12")
		}
		return ok()
	case *models.JournalEntry:
		return checkTimeOrder(v.StartTime, v.EndTime)
	case *models.Attendance:
		if err := r.validate.Var(v.Status, "oneof=Present Sick Excused Absent"); err != nil {
			return failf("status must be one of %s", strings.Join(models.AttendanceStatuses, ", "))
		}
		return ok()
	case *models.Grade:
		score, err := v.Score.Float64()
		if err != nil {
			return fail("score must be a number")
		}
		if score < models.GradeScoreMin || score > models.GradeScoreMax {
			return failf("score must be between %d and %d", models.GradeScoreMin, models.GradeScoreMax)
		}
		return ok()
	case *models.BehaviorNote:
		if err := r.validate.Var(v.BehaviorType, "oneof=Positive Negative Neutral"); err != nil {
			return failf("behaviorType must be one of %s", strings.Join(models.BehaviorTypes, ", "))
		}
		return ok()
	case *models.CounselingAttendance:
		if err := r.validate.Var(v.Status, "oneof=Present Sick Excused Absent Late"); err != nil {
			return failf("status must be one of %s", strings.Join(models.CounselingAttendanceStatuses, ", "))
		}
		return ok()
	case *models.CounselingViolation:
		if err := r.validate.Var(v.Category, "oneof=Light Moderate Severe"); err != nil {
			return failf("category must be one of %s", strings.Join(models.ViolationCategories, ", "))
		}
		return ok()
	default:
		return ok()
	}
}

// checkTimeOrder requires start < end strictly when both are present.
func checkTimeOrder(start, end string) Result {
	if start == "" || end == "" {
		return ok()
	}
	if start >= end {
		return fail("startTime must be before endTime")
	}
	return ok()
}
