package export

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/noah-isme/sma-dashboard-api/internal/models"
)

// FromRecords flattens records into a tabular dataset. The header row comes
// from the first record's field keys, sorted for a deterministic column
// order; later records only contribute values for those columns.
func FromRecords(records []models.Record) (Dataset, error) {
	if len(records) == 0 {
		return Dataset{}, nil
	}

	first, err := models.Flatten(records[0])
	if err != nil {
		return Dataset{}, err
	}
	headers := make([]string, 0, len(first))
	for key := range first {
		headers = append(headers, key)
	}
	sort.Strings(headers)

	rows := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		fields, err := models.Flatten(rec)
		if err != nil {
			return Dataset{}, err
		}
		row := make(map[string]string, len(headers))
		for _, header := range headers {
			value, ok := fields[header]
			if !ok || value == nil {
				continue
			}
			row[header] = formatValue(value)
		}
		rows = append(rows, row)
	}

	return Dataset{Headers: headers, Rows: rows}, nil
}

func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]any, []any:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(raw)
	default:
		return fmt.Sprintf("%v", v)
	}
}
