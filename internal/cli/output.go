package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// printRows renders query results. Text format is one row per line with
// tab-separated columns; json is an array of rows, which round-trips
// values containing tabs or newlines.
func printRows(w io.Writer, format string, rows [][]string) error {
	if format == "json" {
		if rows == nil {
			rows = [][]string{}
		}
		enc := json.NewEncoder(w)
		return enc.Encode(rows)
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return nil
}
