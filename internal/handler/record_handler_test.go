package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-dashboard-api/internal/middleware"
	"github.com/noah-isme/sma-dashboard-api/internal/models"
	"github.com/noah-isme/sma-dashboard-api/internal/service"
	appErrors "github.com/noah-isme/sma-dashboard-api/pkg/errors"
)

type fakeStore struct {
	records   []models.Record
	cacheHit  bool
	queryErr  error
	createErr error
	updateErr error
	deleteErr error

	lastType    models.RecordType
	lastFilters map[string]string
	lastID      string
	lastPayload []byte
}

func (f *fakeStore) Query(_ context.Context, _ models.Identity, t models.RecordType, filters map[string]string) ([]models.Record, bool, error) {
	f.lastType = t
	f.lastFilters = filters
	return f.records, f.cacheHit, f.queryErr
}

func (f *fakeStore) Create(_ context.Context, _ models.Identity, t models.RecordType, payload []byte) (models.Record, error) {
	f.lastType = t
	f.lastPayload = payload
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.records[0], nil
}

func (f *fakeStore) Update(_ context.Context, _ models.Identity, id string, patch []byte) (models.Record, error) {
	f.lastID = id
	f.lastPayload = patch
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.records[0], nil
}

func (f *fakeStore) Delete(_ context.Context, _ models.Identity, id string) error {
	f.lastID = id
	return f.deleteErr
}

func authedContext(t *testing.T, rec *httptest.ResponseRecorder, req *http.Request, identity models.Identity) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(rec)
	c.Request = req
	c.Set(middleware.ContextUserKey, &service.Claims{Role: identity.Role, DisplayName: identity.DisplayName})
	return c
}

func sampleGrade() models.Record {
	return &models.Grade{
		RecordMeta:  models.RecordMeta{RecordType: models.TypeGrade, ID: "g-1", Author: "Siti"},
		StudentName: "Andi", Class: "10A", Subject: "Math", AssessmentType: "Quiz",
		Score: json.Number("85"), Date: "2024-05-01",
	}
}

func TestRecordHandlerListRequiresIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewRecordHandler(&fakeStore{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/records/grade", nil)

	h.List(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRecordHandlerListPassesFilters(t *testing.T) {
	store := &fakeStore{records: []models.Record{sampleGrade()}, cacheHit: true}
	h := NewRecordHandler(store)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, httptest.NewRequest(http.MethodGet, "/records/grade?class=10A&studentName=Andi", nil),
		models.Identity{Role: models.RoleTeacher, DisplayName: "Siti"})
	c.Params = gin.Params{{Key: "type", Value: "grade"}}

	h.List(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.TypeGrade, store.lastType)
	assert.Equal(t, map[string]string{"class": "10A", "studentName": "Andi"}, store.lastFilters)

	var envelope struct {
		Meta map[string]any `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Equal(t, float64(1), envelope.Meta["count"])
}

func TestRecordHandlerCreate(t *testing.T) {
	store := &fakeStore{records: []models.Record{sampleGrade()}}
	h := NewRecordHandler(store)

	body := []byte(`{"studentName":"Andi","class":"10A","subject":"Math","assessmentType":"Quiz","score":85,"date":"2024-05-01"}`)
	rec := httptest.NewRecorder()
	c := authedContext(t, rec, httptest.NewRequest(http.MethodPost, "/records/grade", bytes.NewReader(body)),
		models.Identity{Role: models.RoleTeacher, DisplayName: "Siti"})
	c.Params = gin.Params{{Key: "type", Value: "grade"}}

	h.Create(c)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, string(body), string(store.lastPayload))
}

func TestRecordHandlerCreateValidationError(t *testing.T) {
	store := &fakeStore{createErr: appErrors.Clone(appErrors.ErrValidation, "score must be between 0 and 100")}
	h := NewRecordHandler(store)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, httptest.NewRequest(http.MethodPost, "/records/grade", bytes.NewReader([]byte(`{}`))),
		models.Identity{Role: models.RoleTeacher, DisplayName: "Siti"})
	c.Params = gin.Params{{Key: "type", Value: "grade"}}

	h.Create(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "between 0 and 100")
}

func TestRecordHandlerUpdateForbidden(t *testing.T) {
	store := &fakeStore{updateErr: appErrors.ErrForbidden}
	h := NewRecordHandler(store)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, httptest.NewRequest(http.MethodPatch, "/records/grade/g-1", bytes.NewReader([]byte(`{"score":1}`))),
		models.Identity{Role: models.RoleTeacher, DisplayName: "Rudi"})
	c.Params = gin.Params{{Key: "type", Value: "grade"}, {Key: "id", Value: "g-1"}}

	h.Update(c)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "g-1", store.lastID)
}

func TestRecordHandlerDelete(t *testing.T) {
	store := &fakeStore{}
	h := NewRecordHandler(store)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, httptest.NewRequest(http.MethodDelete, "/records/grade/g-1", nil),
		models.Identity{Role: models.RoleAdmin, DisplayName: "Administrator"})
	c.Params = gin.Params{{Key: "type", Value: "grade"}, {Key: "id", Value: "g-1"}}

	h.Delete(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "g-1", store.lastID)

	store.deleteErr = appErrors.ErrNotFound
	rec = httptest.NewRecorder()
	c = authedContext(t, rec, httptest.NewRequest(http.MethodDelete, "/records/grade/missing", nil),
		models.Identity{Role: models.RoleAdmin, DisplayName: "Administrator"})
	c.Params = gin.Params{{Key: "type", Value: "grade"}, {Key: "id", Value: "missing"}}
	h.Delete(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
