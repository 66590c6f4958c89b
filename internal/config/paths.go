package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dir returns the configuration directory for hhdt:
//   - $HHDT_CONFIG_DIR (full override)
//   - $XDG_CONFIG_HOME/hhdt
//   - ~/.config/hhdt (fallback)
func Dir() (string, error) {
	if dir := os.Getenv(EnvPrefix + "CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "hhdt"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".config", "hhdt"), nil
}
