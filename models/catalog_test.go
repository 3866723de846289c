package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalogSelected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"streams": [
			{"tap_stream_id": "integrations", "stream": "integrations", "schema": {}, "key_properties": ["id"], "replication_method": "INCREMENTAL", "replication_key": "lastUpdated"},
			{"tap_stream_id": "lookups", "stream": "lookups", "schema": {}, "key_properties": ["name"], "replication_method": "INCREMENTAL"}
		]
	}`), 0644))

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, catalog.Streams, 2)

	selected := catalog.Selected()
	assert.True(t, selected["integrations"])
	assert.True(t, selected["lookups"])
	assert.False(t, selected["connections"])
}

func TestRecordVersusSchema(t *testing.T) {
	entry := CatalogEntry{
		Stream: "integrations",
		Schema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id":     map[string]interface{}{"type": "string"},
				"status": map[string]interface{}{"type": "string"},
			},
		},
	}

	valid, err := entry.RecordVersusSchema(map[string]interface{}{"id": "abc", "status": "ACTIVATED"})
	assert.True(t, valid)
	assert.NoError(t, err)

	valid, err = entry.RecordVersusSchema(map[string]interface{}{"id": 123})
	assert.False(t, valid)
	assert.Error(t, err)
}
