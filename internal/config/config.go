package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the default config file location.
const DefaultConfigPath = "~/.config/backstage/visits/config.yaml"

// Config holds all visit tracker configuration.
type Config struct {
	Visits  VisitsConfig  `yaml:"visits"`
	Storage StorageConfig `yaml:"storage"`
}

// VisitsConfig controls the working set.
type VisitsConfig struct {
	// Limit is the maximum number of retained visit records.
	Limit int `yaml:"limit"`
}

// StorageConfig selects and locates the persistence backend.
type StorageConfig struct {
	// Backend is one of "memory", "file" or "sqlite".
	Backend string `yaml:"backend"`
	// Path is the directory holding the data files.
	Path string `yaml:"path"`
	// SQLiteFile is the database file name under Path.
	SQLiteFile string `yaml:"sqlite_file"`
	// VisitsFile is the JSON file name under Path for the file backend.
	VisitsFile string `yaml:"visits_file"`
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read, contains invalid YAML, or
// fails validation.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if c.Visits.Limit <= 0 {
		return fmt.Errorf("visits.limit must be positive, got %d", c.Visits.Limit)
	}
	switch c.Storage.Backend {
	case "memory", "file", "sqlite":
	default:
		return fmt.Errorf("storage.backend must be memory, file or sqlite, got %q", c.Storage.Backend)
	}
	return nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := ExpandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		return cfg, nil
	}

	return Load(path)
}

// DataDir resolves the storage directory with ~ expanded.
func (c *Config) DataDir() (string, error) {
	return ExpandPath(c.Storage.Path)
}
