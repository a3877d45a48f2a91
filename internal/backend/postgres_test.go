package backend

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-dashboard-api/internal/models"
)

func newBackendMock(t *testing.T) (*Postgres, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgres(sqlx.NewDb(db, "sqlmock"), nil), mock, func() { db.Close() }
}

func payloadRows(payloads ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"payload"})
	for _, p := range payloads {
		rows.AddRow([]byte(p))
	}
	return rows
}

const selectPayloads = `SELECT payload FROM records ORDER BY created_at ASC, id ASC`

func TestPostgresInitializeReportsSnapshot(t *testing.T) {
	pg, mock, cleanup := newBackendMock(t)
	defer cleanup()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS records").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(selectPayloads)).
		WillReturnRows(payloadRows(
			`{"type":"grade","id":"g-1","studentName":"Andi","class":"10A","subject":"Math","assessmentType":"Quiz","score":85,"date":"2024-05-01"}`,
			`{"type":"class","id":"c-1","title":"10A","level":"10","track":"Science"}`,
		))

	var got []models.Record
	err := pg.Initialize(context.Background(), func(records []models.Record) { got = records }, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.TypeGrade, got[0].Type())
	assert.Equal(t, "c-1", got[1].Meta().ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInitializeSkipsCorruptRows(t *testing.T) {
	pg, mock, cleanup := newBackendMock(t)
	defer cleanup()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS records").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(selectPayloads)).
		WillReturnRows(payloadRows(
			`{"not json`,
			`{"type":"class","id":"c-1","title":"10A","level":"10","track":"Science"}`,
		))

	var got []models.Record
	err := pg.Initialize(context.Background(), func(records []models.Record) { got = records }, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c-1", got[0].Meta().ID)
}

func TestPostgresCreateAssignsIdentity(t *testing.T) {
	pg, mock, cleanup := newBackendMock(t)
	defer cleanup()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS records").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(selectPayloads)).WillReturnRows(payloadRows())
	require.NoError(t, pg.Initialize(context.Background(), func([]models.Record) {}, nil))

	mock.ExpectExec("INSERT INTO records").
		WithArgs(sqlmock.AnyArg(), "attendance", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectPayloads)).WillReturnRows(payloadRows())

	rec := &models.Attendance{
		RecordMeta:  models.RecordMeta{RecordType: models.TypeAttendance, Author: "Siti", CreatedAt: time.Now().UTC()},
		StudentName: "Andi",
		Class:       "10A",
		Status:      "Present",
		Date:        "2024-05-01",
	}
	stored, err := pg.Create(context.Background(), rec)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.Meta().ID)
	assert.Empty(t, rec.Meta().ID, "caller's record is not mutated")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateMissingRow(t *testing.T) {
	pg, mock, cleanup := newBackendMock(t)
	defer cleanup()

	mock.ExpectExec("UPDATE records SET").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := &models.Generic{RecordMeta: models.RecordMeta{RecordType: "announcement", ID: "gone"}, Title: "t", Content: "c"}
	_, err := pg.Update(context.Background(), rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no longer exists")
}

func TestPostgresDeleteNotifies(t *testing.T) {
	pg, mock, cleanup := newBackendMock(t)
	defer cleanup()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS records").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(selectPayloads)).WillReturnRows(payloadRows())

	changes := 0
	require.NoError(t, pg.Initialize(context.Background(), func([]models.Record) { changes++ }, nil))

	mock.ExpectExec("DELETE FROM records").WithArgs("a-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectPayloads)).WillReturnRows(payloadRows())

	rec := &models.Attendance{RecordMeta: models.RecordMeta{RecordType: models.TypeAttendance, ID: "a-1"}}
	require.NoError(t, pg.Delete(context.Background(), rec))
	assert.Equal(t, 2, changes, "initial snapshot plus post-delete reload")
	assert.NoError(t, mock.ExpectationsWereMet())
}
