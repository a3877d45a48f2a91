package handler

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-dashboard-api/internal/middleware"
	"github.com/noah-isme/sma-dashboard-api/internal/models"
	"github.com/noah-isme/sma-dashboard-api/internal/service"
	appErrors "github.com/noah-isme/sma-dashboard-api/pkg/errors"
	"github.com/noah-isme/sma-dashboard-api/pkg/response"
)

// ExportJobsHandler exposes the background export pipeline: enqueue, poll,
// download via signed token.
type ExportJobsHandler struct {
	jobs *service.ExportJobService
}

// NewExportJobsHandler constructs the handler.
func NewExportJobsHandler(jobs *service.ExportJobService) *ExportJobsHandler {
	return &ExportJobsHandler{jobs: jobs}
}

// CreateJob godoc
// @Summary Queue a background export of visible records
// @Tags Export
// @Param type path string true "Record type"
// @Param format query string false "json, csv or pdf" default(json)
// @Success 202 {object} response.Envelope
// @Router /export/{type}/jobs [post]
func (h *ExportJobsHandler) CreateJob(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	recordType := models.RecordType(c.Param("type"))
	job, err := h.jobs.CreateJob(identity, recordType, c.Query("format"), queryFilters(c, "format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job)
}

// JobStatus godoc
// @Summary Poll an export job
// @Tags Export
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /export-jobs/{id} [get]
func (h *ExportJobsHandler) JobStatus(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	job, err := h.jobs.Job(c.Param("id"), identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job)
}

// Download godoc
// @Summary Download a finished export via signed token
// @Tags Export
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Router /downloads/{token} [get]
func (h *ExportJobsHandler) Download(c *gin.Context) {
	download, err := h.jobs.ResolveDownload(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close() //nolint:errcheck

	info, err := download.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export file"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", download.Filename))
	c.DataFromReader(http.StatusOK, info.Size(), contentTypeForExport(download.Filename), download.File, nil)
}

func contentTypeForExport(filename string) string {
	switch filepath.Ext(filename) {
	case ".csv":
		return "text/csv"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/json"
	}
}
