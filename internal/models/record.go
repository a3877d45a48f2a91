package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RecordType discriminates the record union.
type RecordType string

const (
	TypeTeacher              RecordType = "teacher"
	TypeStudent              RecordType = "student"
	TypeClass                RecordType = "class"
	TypeLessonPlan           RecordType = "lesson-plan"
	TypeJournalEntry         RecordType = "journal-entry"
	TypeAttendance           RecordType = "attendance"
	TypeGrade                RecordType = "grade"
	TypeBehaviorNote         RecordType = "behavior-note"
	TypeCounselingAttendance RecordType = "counseling-attendance"
	TypeCounselingViolation  RecordType = "counseling-violation"
)

// KnownTypes lists every dedicated record variant, in stable order.
func KnownTypes() []RecordType {
	return []RecordType{
		TypeTeacher,
		TypeStudent,
		TypeClass,
		TypeLessonPlan,
		TypeJournalEntry,
		TypeAttendance,
		TypeGrade,
		TypeBehaviorNote,
		TypeCounselingAttendance,
		TypeCounselingViolation,
	}
}

// RecordMeta carries the fields shared by every record variant. The ID is
// assigned by the persistence backend on first save and never mutated locally.
type RecordMeta struct {
	RecordType RecordType `json:"type"`
	ID         string     `json:"id,omitempty"`
	Author     string     `json:"author,omitempty"`
	Approved   bool       `json:"approved"`
	CreatedAt  time.Time  `json:"createdAt,omitempty"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// Meta returns the shared metadata block.
func (m *RecordMeta) Meta() *RecordMeta { return m }

// Type returns the record type tag.
func (m *RecordMeta) Type() RecordType { return m.RecordType }

// Record is the closed union over all persisted school data variants.
type Record interface {
	Meta() *RecordMeta
	Type() RecordType
}

// Dated is implemented by variants that carry a calendar date field.
type Dated interface {
	EventDate() (time.Time, bool)
}

// EffectiveTime is the timestamp records sort by: updatedAt when present,
// otherwise createdAt, otherwise the variant's own calendar date.
func EffectiveTime(rec Record) time.Time {
	meta := rec.Meta()
	if meta.UpdatedAt != nil && !meta.UpdatedAt.IsZero() {
		return *meta.UpdatedAt
	}
	if !meta.CreatedAt.IsZero() {
		return meta.CreatedAt
	}
	if d, ok := rec.(Dated); ok {
		if ts, ok := d.EventDate(); ok {
			return ts
		}
	}
	return time.Time{}
}

const calendarLayout = "2006-01-02"

func parseCalendarDate(s string) (time.Time, bool) {
	ts, err := time.Parse(calendarLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// New allocates an empty record of the given type. Unrecognized types fall
// back to the generic variant so decoding stays total.
func New(t RecordType) Record {
	meta := RecordMeta{RecordType: t}
	switch t {
	case TypeTeacher:
		return &Teacher{RecordMeta: meta}
	case TypeStudent:
		return &Student{RecordMeta: meta}
	case TypeClass:
		return &Class{RecordMeta: meta}
	case TypeLessonPlan:
		return &LessonPlan{RecordMeta: meta}
	case TypeJournalEntry:
		return &JournalEntry{RecordMeta: meta}
	case TypeAttendance:
		return &Attendance{RecordMeta: meta}
	case TypeGrade:
		return &Grade{RecordMeta: meta}
	case TypeBehaviorNote:
		return &BehaviorNote{RecordMeta: meta}
	case TypeCounselingAttendance:
		return &CounselingAttendance{RecordMeta: meta}
	case TypeCounselingViolation:
		return &CounselingViolation{RecordMeta: meta}
	default:
		return &Generic{RecordMeta: meta}
	}
}

// Decode reads a tagged JSON payload into the matching record variant.
func Decode(data []byte) (Record, error) {
	var probe struct {
		Type RecordType `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode record envelope: %w", err)
	}
	if probe.Type == "" {
		return nil, fmt.Errorf("record payload has no type tag")
	}
	return DecodeAs(probe.Type, data)
}

// DecodeAs reads a JSON payload into the variant for the given type. The
// caller-supplied type wins over any tag embedded in the payload.
func DecodeAs(t RecordType, data []byte) (Record, error) {
	rec := New(t)
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("decode %s record: %w", t, err)
	}
	rec.Meta().RecordType = t
	return rec, nil
}

// DecodeList reads a JSON array of tagged payloads.
func DecodeList(data []byte) ([]Record, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode record list: %w", err)
	}
	records := make([]Record, 0, len(raws))
	for _, raw := range raws {
		rec, err := Decode(raw)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Clone deep-copies a record through its JSON form.
func Clone(rec Record) (Record, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("clone %s record: %w", rec.Type(), err)
	}
	return DecodeAs(rec.Type(), raw)
}

// reserved meta keys a partial update may never touch.
var immutableKeys = []string{"type", "id", "author", "createdAt"}

// Merge applies a partial JSON object onto a copy of rec and returns the
// merged record. Type, identity, author and creation time stay fixed.
func Merge(rec Record, patch []byte) (Record, error) {
	base, err := Flatten(rec)
	if err != nil {
		return nil, err
	}
	var delta map[string]any
	if err := json.Unmarshal(patch, &delta); err != nil {
		return nil, fmt.Errorf("decode update payload: %w", err)
	}
	for _, key := range immutableKeys {
		delete(delta, key)
	}
	for key, value := range delta {
		base[key] = value
	}
	raw, err := json.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("merge %s record: %w", rec.Type(), err)
	}
	return DecodeAs(rec.Type(), raw)
}

// Flatten renders the record as a generic JSON object, used for merge
// patching and dotted-path filter access.
func Flatten(rec Record) (map[string]any, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("flatten %s record: %w", rec.Type(), err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("flatten %s record: %w", rec.Type(), err)
	}
	return fields, nil
}

// LookupPath resolves a dotted field path ("student.class") against a
// flattened record.
func LookupPath(fields map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var current any = fields
	for _, part := range parts {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
