package export

import (
	"encoding/json"
	"fmt"

	"github.com/noah-isme/sma-dashboard-api/internal/models"
)

// JSONExporter renders records as a pretty-printed JSON array.
type JSONExporter struct{}

// NewJSONExporter builds a JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Render produces indented JSON bytes for the records.
func (e *JSONExporter) Render(records []models.Record) ([]byte, error) {
	if records == nil {
		records = []models.Record{}
	}
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render json export: %w", err)
	}
	return raw, nil
}
