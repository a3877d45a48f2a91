package export

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-dashboard-api/internal/models"
)

func exportRecords() []models.Record {
	return []models.Record{
		&models.Grade{
			RecordMeta:     models.RecordMeta{RecordType: models.TypeGrade, ID: "g-1", Author: "Siti", Approved: true},
			StudentName:    "Andi",
			Class:          "10A",
			Subject:        "Math",
			AssessmentType: "Quiz",
			Score:          json.Number("85"),
			Date:           "2024-05-01",
		},
		&models.Grade{
			RecordMeta:     models.RecordMeta{RecordType: models.TypeGrade, ID: "g-2", Author: "Siti", Approved: true},
			StudentName:    `Budi "Bud" S.`,
			Class:          "10A",
			Subject:        "Math",
			AssessmentType: "Quiz",
			Score:          json.Number("90"),
			Date:           "2024-05-02",
		},
	}
}

func TestFromRecordsHeadersFromFirstRecord(t *testing.T) {
	data, err := FromRecords(exportRecords())
	require.NoError(t, err)
	assert.Contains(t, data.Headers, "studentName")
	assert.Contains(t, data.Headers, "score")
	assert.Contains(t, data.Headers, "type")
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "Andi", data.Rows[0]["studentName"])
	assert.Equal(t, "85", data.Rows[0]["score"])

	empty, err := FromRecords(nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Headers)
}

func TestCSVExporterQuotesFields(t *testing.T) {
	data, err := FromRecords(exportRecords())
	require.NoError(t, err)

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3, "header plus one line per record")
	assert.Contains(t, lines[0], "studentName")
	assert.Contains(t, string(out), `"Budi ""Bud"" S."`, "embedded quotes are doubled")
}

func TestJSONExporterPrettyPrints(t *testing.T) {
	out, err := NewJSONExporter().Render(exportRecords())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "[\n"))

	decoded, err := models.DecodeList(out)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, models.TypeGrade, decoded[0].Type())

	empty, err := NewJSONExporter().Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}

func TestPDFExporterProducesDocument(t *testing.T) {
	data, err := FromRecords(exportRecords())
	require.NoError(t, err)

	out, err := NewPDFExporter().Render(data, "grade export")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}
