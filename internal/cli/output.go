package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	furnilytics "github.com/Furnilytics/Furnilytics-lib"
)

// renderTable writes a table with aligned columns, one header line followed
// by one line per row.
func renderTable(w io.Writer, table *furnilytics.Table) error {
	columns := table.Columns()
	if len(columns) == 0 {
		_, err := fmt.Fprintln(w, "(no rows)")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, strings.Join(columns, "\t")); err != nil {
		return err
	}

	cells := make([]string, len(columns))
	for i := 0; i < table.Len(); i++ {
		for j, column := range columns {
			cells[j] = table.Cell(i, column)
		}
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// printJSON writes v as indented JSON followed by a newline.
func printJSON(w io.Writer, v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(encoded))
	return err
}
