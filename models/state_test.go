package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateAdvanceKeepsMax(t *testing.T) {
	state := NewState()

	state.Advance("integrations", "lastUpdated", "2025-01-02T00:00:00Z")
	assert.Equal(t, "2025-01-02T00:00:00Z", state.Get("integrations", "lastUpdated"))

	// An older value never moves the bookmark backwards.
	state.Advance("integrations", "lastUpdated", "2024-12-31T00:00:00Z")
	assert.Equal(t, "2025-01-02T00:00:00Z", state.Get("integrations", "lastUpdated"))

	state.Advance("integrations", "lastUpdated", "2025-03-01T12:30:00Z")
	assert.Equal(t, "2025-03-01T12:30:00Z", state.Get("integrations", "lastUpdated"))
}

func TestStateAdvanceIgnoresEmpty(t *testing.T) {
	state := NewState()

	state.Advance("integrations", "", "2025-01-01T00:00:00Z")
	state.Advance("integrations", "lastUpdated", "")
	assert.Empty(t, state.Bookmarks)
}

func TestStateGetUnknownStream(t *testing.T) {
	state := NewState()
	assert.Equal(t, "", state.Get("connections", "lastUpdated"))
}

func TestLoadState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"bookmarks": {
			"integrations": {"lastUpdated": "2025-01-15T09:00:00Z"}
		}
	}`), 0644))

	state, err := LoadState(path)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-15T09:00:00Z", state.Get("integrations", "lastUpdated"))
	assert.Equal(t, "", state.Get("lookups", "lastUpdated"))
}

func TestLoadStateMissingFile(t *testing.T) {
	_, err := LoadState(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
