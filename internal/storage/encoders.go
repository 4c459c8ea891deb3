// internal/storage/encoders.go
package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strings"
)

// encoder writes a full collection snapshot in one output format.
type encoder interface {
	name() string
	ext() string
	encode(w io.Writer, fields []string, records []Record) error
}

// delimitedEncoder is the primary flat-line format: comma-joined field values,
// one record per line. Embedded commas are not escaped; this is a known
// limitation of the on-disk format.
type delimitedEncoder struct{}

func (delimitedEncoder) name() string { return "txt" }
func (delimitedEncoder) ext() string  { return ".txt" }

func (delimitedEncoder) encode(w io.Writer, fields []string, records []Record) error {
	for _, rec := range records {
		parts := make([]string, len(fields))
		for i, f := range fields {
			parts[i] = rec[f]
		}
		if _, err := io.WriteString(w, strings.Join(parts, ",")+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// jsonEncoder writes the collection as a list of records.
type jsonEncoder struct{}

func (jsonEncoder) name() string { return "json" }
func (jsonEncoder) ext() string  { return ".json" }

func (jsonEncoder) encode(w io.Writer, fields []string, records []Record) error {
	out := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		row := make(map[string]string, len(fields))
		for _, f := range fields {
			row[f] = rec[f]
		}
		out = append(out, row)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// csvEncoder writes a tabular file with a header row matching field order.
type csvEncoder struct{}

func (csvEncoder) name() string { return "csv" }
func (csvEncoder) ext() string  { return ".csv" }

func (csvEncoder) encode(w io.Writer, fields []string, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(fields); err != nil {
		return err
	}
	for _, rec := range records {
		row := make([]string, len(fields))
		for i, f := range fields {
			row[i] = rec[f]
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
