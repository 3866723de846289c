package models

import (
	"encoding/json"
	"fmt"
	"os"
)

// Message is a Singer protocol message. Singer messages are the only output
// written to stdout; all logging goes to stderr.
type Message struct {
	Type          string                 `json:"type"`
	Stream        string                 `json:"stream,omitempty"`
	Record        map[string]interface{} `json:"record,omitempty"`
	TimeExtracted string                 `json:"time_extracted,omitempty"`
	Schema        interface{}            `json:"schema,omitempty"`
	Value         interface{}            `json:"value,omitempty"`
	KeyProperties []string               `json:"key_properties,omitempty"`
}

// Emit writes the message to stdout as a single JSON line.
func (m Message) Emit() error {
	messageJson, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("error creating %s message: %w", m.Type, err)
	}

	os.Stdout.Write(messageJson)
	os.Stdout.Write([]byte("\n"))

	return nil
}
