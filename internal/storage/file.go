// internal/storage/file.go
package storage

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// FileStore keeps one primary delimited text file per collection under a base
// directory and mirrors every save into JSON and CSV siblings.
type FileStore struct {
	dir      string
	encoders []encoder
	tracer   trace.Tracer
}

// NewFileStore creates a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileStore{
		dir:      dir,
		encoders: []encoder{delimitedEncoder{}, jsonEncoder{}, csvEncoder{}},
		tracer:   otel.Tracer("toolshed/storage"),
	}, nil
}

// Load reads the primary text file for a collection. Malformed lines (wrong
// field count) are skipped silently; historical data is parsed tolerantly. A
// missing file is an empty collection, not an error.
func (fs *FileStore) Load(ctx context.Context, collection string, fields []string) ([]Record, error) {
	_, span := fs.tracer.Start(ctx, "store.load",
		trace.WithAttributes(attribute.String("collection", collection)),
	)
	defer span.End()

	f, err := os.Open(filepath.Join(fs.dir, collection+".txt"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", collection, err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) != len(fields) {
			continue
		}
		rec := make(Record, len(fields))
		for i, field := range fields {
			rec[field] = parts[i]
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", collection, err)
	}

	span.SetAttributes(attribute.Int("records.loaded", len(records)))
	return records, nil
}

// Save writes the snapshot through every encoder. A format that fails to
// write is reported as false in the result map and does not stop the rest.
func (fs *FileStore) Save(ctx context.Context, collection string, fields []string, records []Record) map[string]bool {
	_, span := fs.tracer.Start(ctx, "store.save",
		trace.WithAttributes(
			attribute.String("collection", collection),
			attribute.Int("records.count", len(records)),
		),
	)
	defer span.End()

	result := make(map[string]bool, len(fs.encoders))
	for _, enc := range fs.encoders {
		result[enc.name()] = fs.writeFormat(collection, enc, fields, records) == nil
		span.AddEvent("format.written", trace.WithAttributes(
			attribute.String("format", enc.name()),
			attribute.Bool("ok", result[enc.name()]),
		))
	}
	return result
}

func (fs *FileStore) writeFormat(collection string, enc encoder, fields []string, records []Record) error {
	f, err := os.Create(filepath.Join(fs.dir, collection+enc.ext()))
	if err != nil {
		return err
	}
	if err := enc.encode(f, fields, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
