package soupdb

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/soupdb/soupdb/internal/errs"
)

// defaultDataDir is the data directory used when no config file sets one.
const defaultDataDir = "/var/soupdb"

// Config is SoupDB's top-level configuration: currently just the root
// directory each database's files live under, one subdirectory per
// database name.
type Config struct {
	DataDir string `yaml:"data_dir"`
}

// DefaultConfig returns a Config pointing at the default data directory.
func DefaultConfig() Config {
	return Config{DataDir: defaultDataDir}
}

// LoadConfig reads a YAML config file at path. A missing file is not an
// error: it yields DefaultConfig().
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, errs.Wrap(errs.IoError, err, "read config file %q", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errs.Wrap(errs.ParseError, err, "parse config file %q", path)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir
	}
	return cfg, nil
}

// EnsureDataDir creates the configured data directory (and any missing
// parents).
func (c Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return errs.Wrap(errs.IoError, err, "create data directory %q", c.DataDir)
	}
	return nil
}
