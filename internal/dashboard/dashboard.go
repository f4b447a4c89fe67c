// Package dashboard writes the current-prices snapshot read by the static
// dashboard and the API.
package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/tinchodeluca/scann-url/internal/domain"
	"github.com/tinchodeluca/scann-url/internal/fsutil"
)

// Default configuration values.
const (
	defaultDir          = "docs"
	defaultSnapshotFile = "docs/data/current-prices.json"
)

// ErrNoSnapshot is returned when no run has written a snapshot yet.
var ErrNoSnapshot = errors.New("no snapshot written yet")

// Config locates the dashboard files.
type Config struct {
	Dir          string `env:"DASHBOARD_DIR"           yaml:"dir"`
	SnapshotFile string `env:"DASHBOARD_SNAPSHOT_FILE" yaml:"snapshot_file"`
}

// WithDefaults returns a copy of the config with default values applied for zero-value fields.
func (c Config) WithDefaults() Config {
	if c.Dir == "" {
		c.Dir = defaultDir
	}
	if c.SnapshotFile == "" {
		c.SnapshotFile = defaultSnapshotFile
	}
	return c
}

// SnapshotStore reads and writes the snapshot file.
type SnapshotStore struct {
	path string
}

// NewSnapshotStore returns a store for path.
func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

// Path returns the snapshot file.
func (s *SnapshotStore) Path() string {
	return s.path
}

// Write replaces the snapshot atomically.
func (s *SnapshotStore) Write(snap domain.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err = fsutil.WriteFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Read returns the last written snapshot.
func (s *SnapshotStore) Read() (domain.Snapshot, error) {
	var snap domain.Snapshot

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return snap, ErrNoSnapshot
	}
	if err != nil {
		return snap, fmt.Errorf("read snapshot %s: %w", s.path, err)
	}
	if err = json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}
	return snap, nil
}
