package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/sma-dashboard-api/pkg/errors"
	"github.com/noah-isme/sma-dashboard-api/pkg/export"
	"github.com/noah-isme/sma-dashboard-api/pkg/jobs"
	"github.com/noah-isme/sma-dashboard-api/pkg/storage"
)

// ExportJobStatus tracks a job through its lifecycle.
type ExportJobStatus string

const (
	ExportJobQueued     ExportJobStatus = "queued"
	ExportJobProcessing ExportJobStatus = "processing"
	ExportJobFinished   ExportJobStatus = "finished"
	ExportJobFailed     ExportJobStatus = "failed"
)

// Export formats accepted by the job service.
const (
	ExportFormatJSON = "json"
	ExportFormatCSV  = "csv"
	ExportFormatPDF  = "pdf"
)

// ExportJob is the client-visible state of a queued export.
type ExportJob struct {
	ID          string            `json:"id"`
	RecordType  models.RecordType `json:"recordType"`
	Format      string            `json:"format"`
	Filters     map[string]string `json:"filters,omitempty"`
	Status      ExportJobStatus   `json:"status"`
	Error       string            `json:"error,omitempty"`
	DownloadURL string            `json:"downloadUrl,omitempty"`
	ExpiresAt   *time.Time        `json:"expiresAt,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	FinishedAt  *time.Time        `json:"finishedAt,omitempty"`

	requester models.Identity
	relPath   string
}

// ExportDownload aggregates resolved download data.
type ExportDownload struct {
	File      *os.File
	Filename  string
	ExpiresAt time.Time
}

type exportQuerier interface {
	Query(ctx context.Context, identity models.Identity, recordType models.RecordType, filters map[string]string) ([]models.Record, bool, error)
}

type exportStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportJobConfig tunes the background export pipeline.
type ExportJobConfig struct {
	APIPrefix       string
	ResultTTL       time.Duration
	CleanupInterval time.Duration
	Workers         int
	MaxRetries      int
}

// ExportJobService renders record exports in the background. Jobs run with
// the identity of the requester, so downloads never contain records the
// requester could not list directly.
type ExportJobService struct {
	store  exportQuerier
	files  exportStorage
	signer *storage.SignedURLSigner
	csv    *export.CSVExporter
	json   *export.JSONExporter
	pdf    *export.PDFExporter
	queue  *jobs.Queue
	logger *zap.Logger
	cfg    ExportJobConfig

	mu   sync.RWMutex
	byID map[string]*ExportJob
}

// NewExportJobService constructs the service. Start must be called before
// jobs can be enqueued.
func NewExportJobService(store exportQuerier, files exportStorage, signer *storage.SignedURLSigner, logger *zap.Logger, cfg ExportJobConfig) *ExportJobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	s := &ExportJobService{
		store:  store,
		files:  files,
		signer: signer,
		csv:    export.NewCSVExporter(),
		json:   export.NewJSONExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
		cfg:    cfg,
		byID:   make(map[string]*ExportJob),
	}
	s.queue = jobs.NewQueue("exports", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	return s
}

// Start boots the worker pool and the periodic file cleanup.
func (s *ExportJobService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.files.CleanupOlderThan(s.cfg.ResultTTL); err != nil {
					s.logger.Sugar().Warnw("export cleanup failed", "error", err)
				}
			}
		}
	}()
}

// Stop drains the worker pool.
func (s *ExportJobService) Stop() {
	s.queue.Stop()
}

// CreateJob registers and enqueues a new export.
func (s *ExportJobService) CreateJob(identity models.Identity, recordType models.RecordType, format string, filters map[string]string) (*ExportJob, error) {
	switch format {
	case ExportFormatJSON, ExportFormatCSV, ExportFormatPDF:
	case "":
		format = ExportFormatJSON
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be json, csv or pdf")
	}

	job := &ExportJob{
		ID:         uuid.NewString(),
		RecordType: recordType,
		Format:     format,
		Filters:    cloneFilters(filters),
		Status:     ExportJobQueued,
		CreatedAt:  time.Now().UTC(),
		requester:  identity,
	}

	s.mu.Lock()
	s.byID[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(recordType)}); err != nil {
		s.fail(job.ID, "failed to enqueue export")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}
	return s.snapshot(job.ID)
}

// Job returns job state, enforcing ownership for non-admin requesters.
func (s *ExportJobService) Job(id string, identity models.Identity) (*ExportJob, error) {
	s.mu.RLock()
	job, ok := s.byID[id]
	var requester models.Identity
	if ok {
		requester = job.requester
	}
	s.mu.RUnlock()

	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	if identity.Role != models.RoleAdmin && requester != identity {
		return nil, appErrors.ErrForbidden
	}
	return s.snapshot(id)
}

// ResolveDownload validates a signed token and opens the rendered file.
func (s *ExportJobService) ResolveDownload(token string) (*ExportDownload, error) {
	jobID, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}

	s.mu.RLock()
	job, ok := s.byID[jobID]
	var status ExportJobStatus
	var storedPath string
	if ok {
		status = job.Status
		storedPath = job.relPath
	}
	s.mu.RUnlock()

	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	if status != ExportJobFinished || storedPath != relPath {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export not ready")
	}

	file, err := s.files.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &ExportDownload{
		File:      file,
		Filename:  filepath.Base(relPath),
		ExpiresAt: expiresAt,
	}, nil
}

func (s *ExportJobService) handle(ctx context.Context, qj jobs.Job) error {
	s.mu.Lock()
	job, ok := s.byID[qj.ID]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	job.Status = ExportJobProcessing
	requester := job.requester
	recordType := job.RecordType
	format := job.Format
	filters := cloneFilters(job.Filters)
	s.mu.Unlock()

	payload, err := s.render(ctx, requester, recordType, format, filters)
	if err != nil {
		if qj.Attempt >= s.cfg.MaxRetries {
			s.fail(qj.ID, err.Error())
		} else {
			s.requeue(qj.ID, err.Error())
		}
		return err
	}

	filename := fmt.Sprintf("%s_%s.%s", recordType, time.Now().UTC().Format("20060102_150405"), format)
	relPath, err := s.files.Save(filename, payload)
	if err != nil {
		s.fail(qj.ID, "failed to store export")
		return err
	}

	token, expiresAt, err := s.signer.Generate(qj.ID, relPath)
	if err != nil {
		s.fail(qj.ID, "failed to sign download")
		return err
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	url := fmt.Sprintf("%s/downloads/%s", prefix, token)
	now := time.Now().UTC()

	s.mu.Lock()
	if job, ok := s.byID[qj.ID]; ok {
		job.Status = ExportJobFinished
		job.Error = ""
		job.DownloadURL = url
		job.ExpiresAt = &expiresAt
		job.FinishedAt = &now
		job.relPath = relPath
	}
	s.mu.Unlock()
	return nil
}

func (s *ExportJobService) render(ctx context.Context, identity models.Identity, recordType models.RecordType, format string, filters map[string]string) ([]byte, error) {
	records, _, err := s.store.Query(ctx, identity, recordType, filters)
	if err != nil {
		return nil, err
	}

	switch format {
	case ExportFormatJSON:
		return s.json.Render(records)
	case ExportFormatCSV:
		dataset, err := export.FromRecords(records)
		if err != nil {
			return nil, err
		}
		return s.csv.Render(dataset)
	case ExportFormatPDF:
		dataset, err := export.FromRecords(records)
		if err != nil {
			return nil, err
		}
		return s.pdf.Render(dataset, fmt.Sprintf("%s export", recordType))
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
}

func (s *ExportJobService) fail(id, message string) {
	now := time.Now().UTC()
	s.mu.Lock()
	if job, ok := s.byID[id]; ok {
		job.Status = ExportJobFailed
		job.Error = message
		job.FinishedAt = &now
	}
	s.mu.Unlock()
}

func (s *ExportJobService) requeue(id, message string) {
	s.mu.Lock()
	if job, ok := s.byID[id]; ok {
		job.Status = ExportJobQueued
		job.Error = message
	}
	s.mu.Unlock()
}

func (s *ExportJobService) snapshot(id string) (*ExportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.byID[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	copied := *job
	copied.Filters = cloneFilters(job.Filters)
	return &copied, nil
}

func cloneFilters(filters map[string]string) map[string]string {
	if len(filters) == 0 {
		return nil
	}
	out := make(map[string]string, len(filters))
	for k, v := range filters {
		out[k] = v
	}
	return out
}
