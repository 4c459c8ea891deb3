package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var toolFields = []string{"id", "title", "category", "stock", "condition", "estimated_value"}

func TestFileStoreRoundTrip(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	records := []Record{
		{"id": "T1", "title": "Hammer", "category": "hand", "stock": "5", "condition": "available", "estimated_value": "12.50"},
		{"id": "T2", "title": "Drill", "category": "power", "stock": "2", "condition": "maintenance", "estimated_value": "80.00"},
	}

	result := fs.Save(context.Background(), "implements", toolFields, records)
	assert.Equal(t, map[string]bool{"txt": true, "json": true, "csv": true}, result)

	loaded, err := fs.Load(context.Background(), "implements", toolFields)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, records[0], loaded[0])
	assert.Equal(t, records[1], loaded[1])
}

func TestFileStoreLoadMissingFileIsEmpty(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	loaded, err := fs.Load(context.Background(), "members", []string{"id"})
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestFileStoreLoadSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)

	content := "T1,Hammer,hand,5,available,12.50\n" +
		"garbage line\n" +
		"\n" +
		"T2,Drill,power,2,maintenance,80.00\n" +
		"T3,too,few,fields\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "implements.txt"), []byte(content), 0o644))

	loaded, err := fs.Load(context.Background(), "implements", toolFields)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "T1", loaded[0]["id"])
	assert.Equal(t, "T2", loaded[1]["id"])
}

func TestFileStoreWritesAllThreeFormats(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)

	records := []Record{{"id": "M1", "first_name": "Ana", "last_name": "Ruiz"}}
	fields := []string{"id", "first_name", "last_name"}
	fs.Save(context.Background(), "members", fields, records)

	txt, err := os.ReadFile(filepath.Join(dir, "members.txt"))
	require.NoError(t, err)
	assert.Equal(t, "M1,Ana,Ruiz\n", string(txt))

	raw, err := os.ReadFile(filepath.Join(dir, "members.json"))
	require.NoError(t, err)
	var rows []map[string]string
	require.NoError(t, json.Unmarshal(raw, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Ana", rows[0]["first_name"])

	csvRaw, err := os.ReadFile(filepath.Join(dir, "members.csv"))
	require.NoError(t, err)
	assert.Equal(t, "id,first_name,last_name\nM1,Ana,Ruiz\n", string(csvRaw))
}
