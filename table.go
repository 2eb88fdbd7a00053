package furnilytics

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Row is one record with values keyed by column name. Numbers decode as
// json.Number so large identifiers and high-precision values survive intact.
type Row map[string]any

// Table is an ordered collection of rows sharing a column set, the client's
// stand-in for a data frame. Columns keep the order of first appearance
// across rows, mirroring the server's field order rather than Go's sorted
// map iteration. The zero value is an empty table.
type Table struct {
	columns []string
	rows    []Row
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Columns returns the column names in order of first appearance.
func (t *Table) Columns() []string {
	columns := make([]string, len(t.columns))
	copy(columns, t.columns)
	return columns
}

// Rows returns all rows. The slice is a copy but the row maps are shared,
// so treat them as read-only.
func (t *Table) Rows() []Row {
	rows := make([]Row, len(t.rows))
	copy(rows, t.rows)
	return rows
}

// Row returns the i-th row, or nil when i is out of range.
func (t *Table) Row(i int) Row {
	if i < 0 || i >= len(t.rows) {
		return nil
	}
	return t.rows[i]
}

// Value returns the value at row i and the named column. The second return
// is false when the row is out of range or the row has no such column.
func (t *Table) Value(i int, column string) (any, bool) {
	row := t.Row(i)
	if row == nil {
		return nil, false
	}
	value, ok := row[column]
	return value, ok
}

// Cell renders the value at row i and the named column as a display string
// using the same formatting as WriteCSV. Missing values render as "".
func (t *Table) Cell(i int, column string) string {
	value, ok := t.Value(i, column)
	if !ok {
		return ""
	}
	cell, err := formatCell(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return cell
}

// WriteCSV writes the table as CSV with a header row. Strings and numbers
// are written verbatim, null becomes an empty cell, and nested objects or
// arrays are rendered as compact JSON. An empty table writes nothing.
func (t *Table) WriteCSV(w io.Writer) error {
	if len(t.columns) == 0 {
		return nil
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(t.columns); err != nil {
		return err
	}

	record := make([]string, len(t.columns))
	for _, row := range t.rows {
		for i, column := range t.columns {
			cell, err := formatCell(row[column])
			if err != nil {
				return err
			}
			record[i] = cell
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatCell(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	}
}

// tableFromEnvelope decodes an enveloped listing body {..., "data": [rows]}.
// A missing or null "data" field yields an empty table.
func tableFromEnvelope(endpoint string, body []byte) (*Table, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, shapeError(endpoint, err)
	}
	if len(envelope.Data) == 0 {
		return &Table{}, nil
	}
	return decodeRows(endpoint, envelope.Data)
}

// tableFromRows decodes a bare JSON array of row objects. When the body is
// an object instead, an embedded "data" field is accepted as a fallback for
// servers that move to the enveloped shape.
func tableFromRows(endpoint string, body []byte) (*Table, error) {
	trimmed := bytes.TrimSpace(body)

	if len(trimmed) > 0 && trimmed[0] == '[' {
		return decodeRows(endpoint, trimmed)
	}

	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope struct {
			Data *json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err == nil && envelope.Data != nil {
			return decodeRows(endpoint, *envelope.Data)
		}
	}

	return nil, shapeError(endpoint, nil)
}

func decodeRows(endpoint string, data []byte) (*Table, error) {
	var rawRows []json.RawMessage
	if err := json.Unmarshal(data, &rawRows); err != nil {
		return nil, shapeError(endpoint, err)
	}

	table := &Table{}
	if len(rawRows) == 0 {
		return table, nil
	}

	table.rows = make([]Row, 0, len(rawRows))
	seen := make(map[string]struct{})
	for _, raw := range rawRows {
		row, keys, err := decodeRow(raw)
		if err != nil {
			return nil, shapeError(endpoint, err)
		}
		for _, key := range keys {
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				table.columns = append(table.columns, key)
			}
		}
		table.rows = append(table.rows, row)
	}

	return table, nil
}

func decodeRow(raw json.RawMessage) (Row, []string, error) {
	row := Row{}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&row); err != nil {
		return nil, nil, err
	}

	keys, err := objectKeys(raw)
	if err != nil {
		return nil, nil, err
	}
	return row, keys, nil
}

// objectKeys returns the top-level keys of a JSON object in document order.
// Decoding into a map loses that order, so the raw bytes are scanned again
// with the streaming tokenizer.
func objectKeys(raw []byte) ([]string, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))

	tok, err := decoder.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("row is not a JSON object")
	}

	var keys []string
	for decoder.More() {
		keyTok, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key token %v", keyTok)
		}
		keys = append(keys, key)

		if err := skipValue(decoder); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func skipValue(decoder *json.Decoder) error {
	tok, err := decoder.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || (delim != '{' && delim != '[') {
		return nil
	}

	depth := 1
	for depth > 0 {
		tok, err := decoder.Token()
		if err != nil {
			return err
		}
		if delim, ok := tok.(json.Delim); ok {
			switch delim {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}

// shapeError reports a response whose JSON did not match any shape the
// endpoint is documented to return.
func shapeError(endpoint string, cause error) *ClientError {
	return &ClientError{
		Type:      ErrorTypeAPI,
		Message:   "Unexpected response shape from " + endpoint,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}
