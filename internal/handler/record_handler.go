package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-dashboard-api/internal/middleware"
	"github.com/noah-isme/sma-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/sma-dashboard-api/pkg/errors"
	"github.com/noah-isme/sma-dashboard-api/pkg/response"
)

// recordStore is the store surface the handler consumes.
type recordStore interface {
	Query(ctx context.Context, identity models.Identity, recordType models.RecordType, filters map[string]string) ([]models.Record, bool, error)
	Create(ctx context.Context, identity models.Identity, recordType models.RecordType, payload []byte) (models.Record, error)
	Update(ctx context.Context, identity models.Identity, id string, patch []byte) (models.Record, error)
	Delete(ctx context.Context, identity models.Identity, id string) error
}

// RecordHandler exposes the record store over REST.
type RecordHandler struct {
	store recordStore
}

// NewRecordHandler constructs the handler.
func NewRecordHandler(store recordStore) *RecordHandler {
	return &RecordHandler{store: store}
}

// queryFilters turns the request's query string into the store's filter map,
// keeping only the first value per field.
func queryFilters(c *gin.Context, skip ...string) map[string]string {
	skipped := make(map[string]struct{}, len(skip))
	for _, name := range skip {
		skipped[name] = struct{}{}
	}
	filters := map[string]string{}
	for name, values := range c.Request.URL.Query() {
		if _, ok := skipped[name]; ok {
			continue
		}
		if len(values) > 0 {
			filters[name] = values[0]
		}
	}
	return filters
}

// List godoc
// @Summary List records of a type visible to the viewer
// @Tags Records
// @Produce json
// @Param type path string true "Record type"
// @Success 200 {object} response.Envelope
// @Router /records/{type} [get]
func (h *RecordHandler) List(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	records, cacheHit, err := h.store.Query(c.Request.Context(), identity, models.RecordType(c.Param("type")), queryFilters(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, map[string]interface{}{"cache_hit": cacheHit, "count": len(records)})
}

// Create godoc
// @Summary Create a record
// @Tags Records
// @Accept json
// @Produce json
// @Param type path string true "Record type"
// @Success 201 {object} response.Envelope
// @Router /records/{type} [post]
func (h *RecordHandler) Create(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	payload, err := c.GetRawData()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable payload"))
		return
	}
	rec, err := h.store.Create(c.Request.Context(), identity, models.RecordType(c.Param("type")), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rec)
}

// Update godoc
// @Summary Apply a partial update to a record
// @Tags Records
// @Accept json
// @Produce json
// @Param type path string true "Record type"
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Router /records/{type}/{id} [patch]
func (h *RecordHandler) Update(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	patch, err := c.GetRawData()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable payload"))
		return
	}
	rec, err := h.store.Update(c.Request.Context(), identity, c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rec)
}

// Delete godoc
// @Summary Delete a record
// @Tags Records
// @Param type path string true "Record type"
// @Param id path string true "Record ID"
// @Success 204
// @Router /records/{type}/{id} [delete]
func (h *RecordHandler) Delete(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.store.Delete(c.Request.Context(), identity, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
