package models

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

type Catalog struct {
	Streams []CatalogEntry `json:"streams"`
}

type CatalogEntry struct {
	TapStreamID       string                 `json:"tap_stream_id"`
	Stream            string                 `json:"stream"`
	Schema            map[string]interface{} `json:"schema"`
	KeyProperties     []string               `json:"key_properties"`
	ReplicationMethod string                 `json:"replication_method"`
	ReplicationKey    string                 `json:"replication_key,omitempty"`
}

// LoadCatalog reads a catalog JSON file used to restrict extraction.
func LoadCatalog(filePath string) (*Catalog, error) {
	catalogFile, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading catalog file: %w", err)
	}

	var catalog Catalog
	if err := json.Unmarshal(catalogFile, &catalog); err != nil {
		return nil, fmt.Errorf("error unmarshaling catalog json: %w", err)
	}

	return &catalog, nil
}

// Selected returns the set of stream names the catalog names.
func (c *Catalog) Selected() map[string]bool {
	selected := make(map[string]bool, len(c.Streams))
	for _, entry := range c.Streams {
		selected[entry.TapStreamID] = true
	}
	return selected
}

// Message emits a SCHEMA message for the catalog entry.
func (e CatalogEntry) Message() error {
	return Message{
		Type:          "SCHEMA",
		Stream:        e.Stream,
		Schema:        e.Schema,
		KeyProperties: e.KeyProperties,
	}.Emit()
}

// RecordVersusSchema validates a record against the entry's JSON schema.
func (e CatalogEntry) RecordVersusSchema(record map[string]interface{}) (bool, error) {
	schemaLoader := gojsonschema.NewGoLoader(e.Schema)
	recordLoader := gojsonschema.NewGoLoader(record)

	result, _ := gojsonschema.Validate(schemaLoader, recordLoader)

	if result.Valid() {
		return true, nil
	}

	return false, fmt.Errorf("%s", result.Errors())
}
