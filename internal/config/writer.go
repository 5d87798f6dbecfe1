package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigExists is returned by WriteConfig when a file is already present
// and overwrite was not requested.
var ErrConfigExists = errors.New("config file already exists")

// WriteConfig writes the user configuration to the config file.
func WriteConfig(ac AppConfig, overwrite bool) (string, error) {
	path, err := Path()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return path, WriteConfigTo(path, ac, overwrite)
}

// WriteConfigTo writes ac as YAML to path, creating parent directories.
func WriteConfigTo(path string, ac AppConfig, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, ErrConfigExists)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	body, err := yaml.Marshal(ac)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	content := append([]byte("# ytlink configuration\n"), body...)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
