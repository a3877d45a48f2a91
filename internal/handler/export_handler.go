package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-dashboard-api/internal/middleware"
	"github.com/noah-isme/sma-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/sma-dashboard-api/pkg/errors"
	"github.com/noah-isme/sma-dashboard-api/pkg/export"
	"github.com/noah-isme/sma-dashboard-api/pkg/response"
)

type recordQuerier interface {
	Query(ctx context.Context, identity models.Identity, recordType models.RecordType, filters map[string]string) ([]models.Record, bool, error)
}

// ExportHandler renders query results as downloadable files. Exports run
// through the same query path as listings, so role visibility applies.
type ExportHandler struct {
	store recordQuerier
	csv   *export.CSVExporter
	json  *export.JSONExporter
	pdf   *export.PDFExporter
}

// NewExportHandler constructs the handler.
func NewExportHandler(store recordQuerier, csv *export.CSVExporter, json *export.JSONExporter, pdf *export.PDFExporter) *ExportHandler {
	return &ExportHandler{store: store, csv: csv, json: json, pdf: pdf}
}

// Export godoc
// @Summary Export visible records of a type
// @Tags Export
// @Param type path string true "Record type"
// @Param format query string false "json, csv or pdf" default(json)
// @Success 200 {file} binary
// @Router /export/{type} [get]
func (h *ExportHandler) Export(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	recordType := models.RecordType(c.Param("type"))
	records, _, err := h.store.Query(c.Request.Context(), identity, recordType, queryFilters(c, "format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("%s-%s", recordType, time.Now().UTC().Format("20060102"))
	switch c.DefaultQuery("format", "json") {
	case "json":
		out, err := h.json.Render(records)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.json", filename))
		c.Data(http.StatusOK, "application/json", out)
	case "csv":
		data, err := export.FromRecords(records)
		if err != nil {
			response.Error(c, err)
			return
		}
		out, err := h.csv.Render(data)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", filename))
		c.Data(http.StatusOK, "text/csv", out)
	case "pdf":
		data, err := export.FromRecords(records)
		if err != nil {
			response.Error(c, err)
			return
		}
		out, err := h.pdf.Render(data, fmt.Sprintf("%s export", recordType))
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", filename))
		c.Data(http.StatusOK, "application/pdf", out)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be json, csv or pdf"))
	}
}
