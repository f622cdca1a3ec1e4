package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/hyperifyio/hanadict/internal/dictionary"
)

// WriteCSV writes a header row followed by one record per row. There is no
// index column.
func WriteCSV(w io.Writer, rows []dictionary.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(dictionary.Header()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, r := range rows {
		if err := cw.Write(r.Record()); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
