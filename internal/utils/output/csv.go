package output

import (
	"encoding/csv"
	"io"

	"github.com/law-makers/datalayer/internal/schema"
)

// WriteCSV writes the header titles followed by one line per row.
func WriteCSV(w io.Writer, table *schema.Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(table.Header.Titles()); err != nil {
		return err
	}
	for _, row := range table.Rows {
		if err := writer.Write(row.Strings()); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
