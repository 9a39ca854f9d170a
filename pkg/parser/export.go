package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"legacymig/pkg/schema"
)

// ErrNotExport is returned when the input is valid JSON but not an array of
// export items.
var ErrNotExport = errors.New("not a phpMyAdmin JSON export")

// ParseWarning represents a non-fatal issue encountered while reading the
// export. Row is 1-indexed within the table, 0 when the issue is table-level.
type ParseWarning struct {
	Table   string `json:"table"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ExportResult contains the legacy tables alongside any warnings.
type ExportResult struct {
	Tables   map[string]*schema.Table `json:"tables"`
	Order    []string                 `json:"order"`
	Warnings []ParseWarning           `json:"warnings"`
}

// Rows returns the rows of a table, or nil when the export has no such table.
func (r *ExportResult) Rows(name string) []schema.Row {
	if t, ok := r.Tables[name]; ok {
		return t.Rows
	}
	return nil
}

// ParseExport reads a phpMyAdmin JSON export into named tables.
//
// The export is an array of items; items with "type": "table" carry a "name"
// and a "data" array of row objects. Every string is passed through Repair
// before the rows are flattened. Values are converted as follows:
//   - string: kept
//   - null: column absent
//   - number: its literal text
//   - bool: "1" or "0"
//   - object/array: JSON text, with a warning
//
// Malformed items and rows are skipped with a warning; only an unreadable or
// non-array document is an error.
func ParseExport(data []byte) (*ExportResult, error) {
	decoded, _, err := DetectAndDecode(data)
	if err != nil {
		return nil, fmt.Errorf("encoding detection failed: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(decoded))
	dec.UseNumber()

	var items []any
	if err := dec.Decode(&items); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: top level is %s", ErrNotExport, typeErr.Value)
		}
		return nil, fmt.Errorf("decoding export: %w", err)
	}

	result := &ExportResult{
		Tables:   make(map[string]*schema.Table),
		Order:    make([]string, 0),
		Warnings: make([]ParseWarning, 0),
	}

	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			result.warn("", 0, fmt.Sprintf("item %d is not an object; skipped", i))
			continue
		}
		if typ, _ := obj["type"].(string); typ != "table" {
			continue
		}

		name, _ := obj["name"].(string)
		if name == "" {
			result.warn("", 0, fmt.Sprintf("table item %d has no name; skipped", i))
			continue
		}

		var rawRows []any
		switch d := obj["data"].(type) {
		case nil:
		case []any:
			rawRows = d
		default:
			result.warn(name, 0, fmt.Sprintf("data is %T, expected array; table left empty", d))
		}

		table, exists := result.Tables[name]
		if exists {
			result.warn(name, 0, "duplicate table item; rows appended")
		} else {
			table = &schema.Table{Name: name, Rows: make([]schema.Row, 0, len(rawRows))}
			result.Tables[name] = table
			result.Order = append(result.Order, name)
		}

		repaired, _ := RepairValue(rawRows).([]any)
		for j, raw := range repaired {
			rowObj, ok := raw.(map[string]any)
			if !ok {
				result.warn(name, j+1, fmt.Sprintf("row is %T, expected object; skipped", raw))
				continue
			}
			table.Rows = append(table.Rows, result.flatten(name, j+1, rowObj))
		}
	}

	return result, nil
}

// flatten converts one decoded row object into a string-keyed legacy row.
func (r *ExportResult) flatten(table string, rowNum int, obj map[string]any) schema.Row {
	row := make(schema.Row, len(obj))
	for col, val := range obj {
		switch v := val.(type) {
		case nil:
			// NULL column: absent
		case string:
			row[col] = v
		case json.Number:
			row[col] = v.String()
		case bool:
			if v {
				row[col] = "1"
			} else {
				row[col] = "0"
			}
		default:
			b, err := json.Marshal(v)
			if err != nil {
				r.warn(table, rowNum, fmt.Sprintf("column %s: %v; dropped", col, err))
				continue
			}
			row[col] = string(b)
			r.warn(table, rowNum, fmt.Sprintf("column %s holds nested %T; stored as JSON text", col, v))
		}
	}
	return row
}

func (r *ExportResult) warn(table string, row int, msg string) {
	r.Warnings = append(r.Warnings, ParseWarning{Table: table, Row: row, Message: msg})
}
