package config

import (
	"os"
	"path/filepath"
)

// ConfigDir returns the fillr configuration directory.
// Resolution order: XDG_CONFIG_HOME/fillr > ~/.config/fillr.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fillr")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "fillr")
	}
	return filepath.Join(home, ".config", "fillr")
}

// StateDir returns the fillr state directory (database and logs).
// Resolution order: FILLR_STATE_DIR > XDG_STATE_HOME/fillr > ~/.local/state/fillr.
func StateDir() string {
	if dir := os.Getenv("FILLR_STATE_DIR"); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "fillr")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".local", "state", "fillr")
	}
	return filepath.Join(home, ".local", "state", "fillr")
}
