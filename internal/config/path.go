package config

import (
	"os"
	"path/filepath"
)

// DefaultDataDir returns where the reference gateway keeps its Pebble store
// when no directory is configured: $XDG_DATA_HOME/segstream, then
// ~/.segstream, then ./data.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "segstream")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "./data"
	}
	return filepath.Join(home, ".segstream")
}
