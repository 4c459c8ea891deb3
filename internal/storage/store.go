// internal/storage/store.go
package storage

import "context"

// Record is one flat persisted row, keyed by field name. All values travel as
// strings; typed parsing is the owning module's concern.
type Record map[string]string

// Store persists whole collections at once. Load reads the primary format
// only; Save fans a snapshot out to every configured format and reports
// success per format, never aborting the remaining formats on failure.
type Store interface {
	Load(ctx context.Context, collection string, fields []string) ([]Record, error)
	Save(ctx context.Context, collection string, fields []string, records []Record) map[string]bool
}
