package furnilytics

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_ColumnOrder(t *testing.T) {
	table, err := tableFromRows("/data/{id}", []byte(`[
		{"b": 1, "a": 2},
		{"c": 3, "a": 4},
		{"d": 5}
	]`))
	require.NoError(t, err)

	// Columns follow first appearance across rows, not lexical order.
	assert.Equal(t, []string{"b", "a", "c", "d"}, table.Columns())
	assert.Equal(t, 3, table.Len())
}

func TestTable_NumberPrecision(t *testing.T) {
	table, err := tableFromRows("/data/{id}", []byte(`[
		{"big": 9007199254740993, "price": 19.99}
	]`))
	require.NoError(t, err)

	// 9007199254740993 is not representable as float64; json.Number keeps it.
	big, ok := table.Value(0, "big")
	require.True(t, ok)
	assert.Equal(t, json.Number("9007199254740993"), big)
	assert.Equal(t, "9007199254740993", table.Cell(0, "big"))
	assert.Equal(t, "19.99", table.Cell(0, "price"))
}

func TestTable_RowAccess(t *testing.T) {
	table, err := tableFromRows("/data/{id}", []byte(`[{"a": "x"}]`))
	require.NoError(t, err)

	assert.Nil(t, table.Row(-1))
	assert.Nil(t, table.Row(1))
	assert.NotNil(t, table.Row(0))

	_, ok := table.Value(5, "a")
	assert.False(t, ok)

	_, ok = table.Value(0, "missing")
	assert.False(t, ok)
	assert.Equal(t, "", table.Cell(0, "missing"))
}

func TestTable_RowsReturnsCopy(t *testing.T) {
	table, err := tableFromRows("/data/{id}", []byte(`[{"a": 1}, {"a": 2}]`))
	require.NoError(t, err)

	rows := table.Rows()
	require.Len(t, rows, 2)

	rows[0] = nil
	assert.NotNil(t, table.Row(0), "mutating the returned slice must not affect the table")

	columns := table.Columns()
	columns[0] = "mutated"
	assert.Equal(t, []string{"a"}, table.Columns())
}

func TestTable_ZeroValue(t *testing.T) {
	var table Table

	assert.Equal(t, 0, table.Len())
	assert.Empty(t, table.Columns())
	assert.Nil(t, table.Row(0))

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf))
	assert.Equal(t, 0, buf.Len(), "empty table writes no CSV output")
}

func TestTable_WriteCSV(t *testing.T) {
	table, err := tableFromRows("/data/{id}", []byte(`[
		{"date": "2024-01-31", "sales": 120.5, "flags": {"core": true}, "note": null},
		{"date": "2024-02-29", "sales": 98, "flags": [1, 2], "note": "ok"},
		{"date": "2024-03-31"}
	]`))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf))

	want := "date,sales,flags,note\n" +
		"2024-01-31,120.5,\"{\"\"core\"\":true}\",\n" +
		"2024-02-29,98,\"[1,2]\",ok\n" +
		"2024-03-31,,,\n"
	assert.Equal(t, want, buf.String())
}

func TestTable_WriteCSVBooleans(t *testing.T) {
	table, err := tableFromRows("/data/{id}", []byte(`[{"active": true, "name": "desk"}]`))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf))
	assert.Equal(t, "active,name\ntrue,desk\n", buf.String())
}

func TestTableFromRows_LeadingWhitespace(t *testing.T) {
	table, err := tableFromRows("/data/{id}", []byte("  \n\t [ {\"a\": 1} ] "))
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}

func TestTableFromRows_EmptyArray(t *testing.T) {
	table, err := tableFromRows("/data/{id}", []byte(`[]`))
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
	assert.Empty(t, table.Columns())
}

func TestTableFromEnvelope_IgnoresSiblingFields(t *testing.T) {
	table, err := tableFromEnvelope("/datasets", []byte(`{
		"source": "catalog",
		"generated_at": "2026-08-01T00:00:00Z",
		"data": [{"id": "furniture/sales"}]
	}`))
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, []string{"id"}, table.Columns())
}

func TestObjectKeys_NestedKeysDoNotLeak(t *testing.T) {
	table, err := tableFromRows("/data/{id}", []byte(`[
		{"outer": {"inner": 1, "deep": {"deeper": 2}}, "list": [{"elem": 3}], "tail": 4}
	]`))
	require.NoError(t, err)

	// Only top-level keys become columns.
	assert.Equal(t, []string{"outer", "list", "tail"}, table.Columns())
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"Nil", nil, ""},
		{"String", "desk", "desk"},
		{"Number", json.Number("42.5"), "42.5"},
		{"BoolTrue", true, "true"},
		{"BoolFalse", false, "false"},
		{"Float", float64(3.5), "3.5"},
		{"Object", map[string]any{"k": "v"}, `{"k":"v"}`},
		{"Array", []any{json.Number("1"), "two"}, `[1,"two"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatCell(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
