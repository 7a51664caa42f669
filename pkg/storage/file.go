package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/lhanjian/yarhs/pkg/domain"
)

// FileStore persists a ConfigSnapshot as a single JSON document, written
// atomically (temp file + rename) so a crash mid-write never leaves a
// truncated state file behind. Grounded on original_source/src/config/
// state.rs's AppState::new, which loads one persisted document covering every
// resource kind at startup and merges it with the base file config.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the file at path. The file and its
// parent directory need not exist yet; Save creates both.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// fileState is the on-disk document: the snapshot plus its custom-route
// insertion order, which ConfigSnapshot itself does not serialize.
type fileState struct {
	*domain.ConfigSnapshot
	CustomRouteOrder []string `json:"custom_route_order,omitempty"`
}

// Save atomically overwrites the state file with snap.
func (f *FileStore) Save(snap *domain.ConfigSnapshot) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(fileState{ConfigSnapshot: snap, CustomRouteOrder: snap.Routes.CustomRouteOrder}, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil { //nolint:gosec // state file, not a secret
		return err
	}
	return os.Rename(tmp, f.path)
}

// Load reads the persisted snapshot. A missing file is not an error; it
// returns (nil, nil) so callers fall back to the config file's own values.
func (f *FileStore) Load() (*domain.ConfigSnapshot, error) {
	//nolint:gosec // path is operator-controlled (server.state_file)
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var snap domain.ConfigSnapshot
	state := fileState{ConfigSnapshot: &snap}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	snap.Routes.CustomRouteOrder = state.CustomRouteOrder
	return &snap, nil
}
