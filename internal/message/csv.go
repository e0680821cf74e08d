package message

import (
	"encoding/csv"
	"io"
	"time"
)

// CSVHeader lists the export columns.
var CSVHeader = []string{"date", "direction", "number", "text"}

// WriteCSV writes msgs with a header row.
func WriteCSV(w io.Writer, msgs []*Message) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, m := range msgs {
		record := []string{
			m.Date.UTC().Format(time.RFC3339),
			string(m.Direction),
			m.Identity,
			m.Text,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
