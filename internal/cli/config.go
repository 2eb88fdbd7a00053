package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultConfigName is looked up in the user's home directory when no
// --config flag is given.
const defaultConfigName = ".furnilytics.yaml"

// fileConfig mirrors the optional ~/.furnilytics.yaml. Every field may be
// omitted; flags and environment variables take precedence over it.
type fileConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRetries     *int   `yaml:"max_retries"`
}

// loadConfigIfExists reads the config file at path, or the default location
// when path is empty. A missing file is not an error; a file that exists but
// does not parse is.
func loadConfigIfExists(path string) (*fileConfig, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil
		}
		path = filepath.Join(home, defaultConfigName)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil, nil
		}
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file %s not found", path)
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}
