package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDispatchesOnTypeTag(t *testing.T) {
	rec, err := Decode([]byte(`{"type":"grade","id":"g-1","studentName":"Andi","score":85}`))
	require.NoError(t, err)
	grade, ok := rec.(*Grade)
	require.True(t, ok)
	assert.Equal(t, "Andi", grade.StudentName)
	assert.Equal(t, "85", grade.Score.String())

	rec, err = Decode([]byte(`{"type":"announcement","title":"Holiday","content":"School closed"}`))
	require.NoError(t, err)
	generic, ok := rec.(*Generic)
	require.True(t, ok)
	assert.Equal(t, RecordType("announcement"), generic.Type())
	assert.Equal(t, "Holiday", generic.Title)

	_, err = Decode([]byte(`{"studentName":"Andi"}`))
	assert.Error(t, err, "untagged payloads are rejected")
}

func TestDecodeAsOverridesEmbeddedTag(t *testing.T) {
	rec, err := DecodeAs(TypeAttendance, []byte(`{"type":"grade","studentName":"Andi","status":"Present"}`))
	require.NoError(t, err)
	assert.Equal(t, TypeAttendance, rec.Type())
}

func TestDecodeEveryKnownType(t *testing.T) {
	for _, rt := range KnownTypes() {
		rec := New(rt)
		assert.Equal(t, rt, rec.Type())
		_, isGeneric := rec.(*Generic)
		assert.False(t, isGeneric, "%s must have a dedicated variant", rt)
	}
}

func TestMergeKeepsIdentityFields(t *testing.T) {
	created := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	grade := &Grade{
		RecordMeta:     RecordMeta{RecordType: TypeGrade, ID: "g-1", Author: "Siti", CreatedAt: created},
		StudentName:    "Andi",
		Class:          "10A",
		Subject:        "Math",
		AssessmentType: "Quiz",
		Score:          "85",
		Date:           "2024-05-01",
	}

	merged, err := Merge(grade, []byte(`{"score":95,"id":"forged","type":"attendance","author":"Mallory","createdAt":"2020-01-01T00:00:00Z","approved":true}`))
	require.NoError(t, err)

	out := merged.(*Grade)
	assert.Equal(t, "95", out.Score.String())
	assert.Equal(t, "g-1", out.ID)
	assert.Equal(t, "Siti", out.Author)
	assert.Equal(t, created, out.CreatedAt)
	assert.True(t, out.Approved, "approved is legitimately updatable")

	// The source record is untouched.
	assert.Equal(t, "85", grade.Score.String())
}

func TestEffectiveTimeFallback(t *testing.T) {
	created := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	updated := created.Add(48 * time.Hour)

	rec := &Attendance{RecordMeta: RecordMeta{RecordType: TypeAttendance, CreatedAt: created, UpdatedAt: &updated}}
	assert.Equal(t, updated, EffectiveTime(rec))

	rec = &Attendance{RecordMeta: RecordMeta{RecordType: TypeAttendance, CreatedAt: created}}
	assert.Equal(t, created, EffectiveTime(rec))

	rec = &Attendance{RecordMeta: RecordMeta{RecordType: TypeAttendance}, Date: "2024-03-01"}
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), EffectiveTime(rec))

	bare := &Generic{RecordMeta: RecordMeta{RecordType: "announcement"}}
	assert.True(t, EffectiveTime(bare).IsZero())
}

func TestLookupPath(t *testing.T) {
	fields := map[string]any{
		"studentName": "Andi",
		"meta":        map[string]any{"room": "B2"},
	}

	v, ok := LookupPath(fields, "studentName")
	require.True(t, ok)
	assert.Equal(t, "Andi", v)

	v, ok = LookupPath(fields, "meta.room")
	require.True(t, ok)
	assert.Equal(t, "B2", v)

	_, ok = LookupPath(fields, "meta.missing")
	assert.False(t, ok)
	_, ok = LookupPath(fields, "studentName.deeper")
	assert.False(t, ok)
}
