package deploy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Marker is the guard file content written once a pool exists.
type Marker struct {
	RunID       string `json:"run_id"`
	Network     string `json:"network"`
	PoolAddress string `json:"pool_address"`
	CreatedAt   string `json:"created_at"`
}

// Guard keeps a second run from creating another pool by accident.
type Guard struct {
	path  string
	force bool
}

// NewGuard returns a guard backed by path. An empty path disables it.
func NewGuard(path string, force bool) *Guard {
	return &Guard{path: path, force: force}
}

func (g *Guard) enabled() bool {
	return g != nil && g.path != ""
}

// Load reads the marker, if any.
func (g *Guard) Load() (Marker, bool, error) {
	if !g.enabled() {
		return Marker{}, false, nil
	}

	stat, err := os.Stat(g.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Marker{}, false, nil
		}
		return Marker{}, false, fmt.Errorf("stat guard: %w", err)
	}
	if stat.IsDir() {
		return Marker{}, false, fmt.Errorf("guard path is a directory")
	}

	data, err := os.ReadFile(g.path)
	if err != nil {
		return Marker{}, false, fmt.Errorf("read guard: %w", err)
	}

	var marker Marker
	if err := json.Unmarshal(data, &marker); err != nil {
		return Marker{}, false, fmt.Errorf("parse guard: %w", err)
	}
	return marker, true, nil
}

// Check fails with ErrAlreadyDeployed when a marker exists and force is off.
func (g *Guard) Check() error {
	marker, ok, err := g.Load()
	if err != nil {
		return err
	}
	if !ok || g.force {
		return nil
	}
	return fmt.Errorf("%w: pool %s on %s (run %s, %s); rerun with --force to create another",
		ErrAlreadyDeployed, marker.PoolAddress, marker.Network, marker.RunID, marker.CreatedAt)
}

// Mark writes the marker atomically.
func (g *Guard) Mark(marker Marker) error {
	if !g.enabled() {
		return nil
	}

	dir := filepath.Dir(g.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create guard dir: %w", err)
		}
	}

	if marker.CreatedAt == "" {
		marker.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	data, err := json.Marshal(marker)
	if err != nil {
		return fmt.Errorf("marshal guard: %w", err)
	}

	tmpPath := g.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write guard tmp: %w", err)
	}
	if err := os.Rename(tmpPath, g.path); err != nil {
		return fmt.Errorf("rename guard: %w", err)
	}
	return nil
}
