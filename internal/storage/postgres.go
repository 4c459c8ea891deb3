// internal/storage/postgres.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PostgresStore persists collections to a single records table, replacing the
// whole collection on every save so the contract matches the file store:
// load-all at startup, save-all on demand.
type PostgresStore struct {
	db     *sql.DB
	tracer trace.Tracer
}

// NewPostgresStore wraps an open connection and ensures the schema exists.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			collection TEXT NOT NULL,
			position   INT NOT NULL,
			data       JSONB NOT NULL,
			PRIMARY KEY (collection, position)
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("ensure records table: %w", err)
	}
	return &PostgresStore{
		db:     db,
		tracer: otel.Tracer("toolshed/storage"),
	}, nil
}

// Load returns the collection in insertion order. Rows whose payload does not
// unmarshal are skipped, mirroring the file store's tolerant parsing.
func (ps *PostgresStore) Load(ctx context.Context, collection string, fields []string) ([]Record, error) {
	ctx, span := ps.tracer.Start(ctx, "store.load",
		trace.WithAttributes(attribute.String("collection", collection)),
	)
	defer span.End()

	rows, err := ps.db.QueryContext(ctx, `
		SELECT data
		FROM records
		WHERE collection = $1
		ORDER BY position ASC
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		rec := Record{}
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}

	span.SetAttributes(attribute.Int("records.loaded", len(records)))
	return records, nil
}

// Save atomically replaces the collection. The single backing format is
// reported under the "postgres" key.
func (ps *PostgresStore) Save(ctx context.Context, collection string, fields []string, records []Record) map[string]bool {
	ctx, span := ps.tracer.Start(ctx, "store.save",
		trace.WithAttributes(
			attribute.String("collection", collection),
			attribute.Int("records.count", len(records)),
		),
	)
	defer span.End()

	return map[string]bool{"postgres": ps.replace(ctx, collection, fields, records) == nil}
}

func (ps *PostgresStore) replace(ctx context.Context, collection string, fields []string, records []Record) error {
	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE collection = $1`, collection); err != nil {
		return fmt.Errorf("clear collection: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (collection, position, data)
		VALUES ($1, $2, $3)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		row := make(map[string]string, len(fields))
		for _, f := range fields {
			row[f] = rec[f]
		}
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("marshal record %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, collection, i, data); err != nil {
			if pqErr, ok := err.(*pq.Error); ok {
				return fmt.Errorf("insert record %d: %s: %w", i, pqErr.Code, err)
			}
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
