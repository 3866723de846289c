package models

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	util "github.com/5amCurfew/tap-oracle-oic/util"
)

var StateMutex sync.RWMutex

// TapState holds per-stream bookmarks:
// {"bookmarks": {"<stream>": {"<replication_key>": "<last_value>"}}}
type TapState struct {
	Bookmarks map[string]map[string]string `json:"bookmarks"`
}

func NewState() *TapState {
	return &TapState{Bookmarks: map[string]map[string]string{}}
}

// LoadState reads a state JSON file produced by a previous run.
func LoadState(filePath string) (*TapState, error) {
	stateFile, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading state file: %w", err)
	}

	state := NewState()
	if err := json.Unmarshal(stateFile, state); err != nil {
		return nil, fmt.Errorf("error unmarshaling state json: %w", err)
	}
	if state.Bookmarks == nil {
		state.Bookmarks = map[string]map[string]string{}
	}

	return state, nil
}

// Get returns the bookmarked value for a stream's replication key, or "".
func (s *TapState) Get(stream, replicationKey string) string {
	StateMutex.RLock()
	defer StateMutex.RUnlock()

	if bookmark, ok := s.Bookmarks[stream]; ok {
		return bookmark[replicationKey]
	}
	return ""
}

// Advance moves the bookmark forward when value is greater than the stored
// one. Replication values are RFC3339 timestamps upstream, so lexicographic
// comparison orders them correctly.
func (s *TapState) Advance(stream, replicationKey, value string) {
	if replicationKey == "" || value == "" {
		return
	}

	StateMutex.Lock()
	defer StateMutex.Unlock()

	bookmark, ok := s.Bookmarks[stream]
	if !ok {
		bookmark = map[string]string{}
		s.Bookmarks[stream] = bookmark
	}
	if value > bookmark[replicationKey] {
		bookmark[replicationKey] = value
	}
}

// Message emits a STATE message with the full bookmark map.
func (s *TapState) Message() error {
	StateMutex.RLock()
	defer StateMutex.RUnlock()

	return Message{
		Type:  "STATE",
		Value: map[string]interface{}{"bookmarks": s.Bookmarks},
	}.Emit()
}

// Write persists the state to tap_oracle_oic_state.json.
func (s *TapState) Write() error {
	StateMutex.RLock()
	defer StateMutex.RUnlock()

	if err := util.WriteJSON("tap_oracle_oic_state.json", s); err != nil {
		return fmt.Errorf("state json writing to json file error: %v", err)
	}
	return nil
}
