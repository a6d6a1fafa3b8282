package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// snapshotPrefix is the filename prefix for saved snapshots.
const snapshotPrefix = "android-cli-snapshot-"

// SnapshotStore keeps the last flattened snapshot per device on disk, so a
// later capture, possibly from another process, can be diffed against it.
type SnapshotStore struct {
	Dir    string
	Device string
}

// Path returns the snapshot file for the store's device.
func (s SnapshotStore) Path() string {
	safe := strings.NewReplacer("/", "_", " ", "_", ":", "_").Replace(s.Device)
	return filepath.Join(s.Dir, snapshotPrefix+safe+".json")
}

// Save replaces the stored snapshot.
func (s SnapshotStore) Save(nodes []FlatNode) error {
	data, err := json.Marshal(nodes)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return os.WriteFile(s.Path(), data, 0o644)
}

// Load reads the stored snapshot. found is false when none was saved yet.
func (s SnapshotStore) Load() (nodes []FlatNode, found bool, err error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, false, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return nodes, true, nil
}
