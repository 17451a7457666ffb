package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Load reads a project file over the defaults and resolves relative paths
// against the file's directory.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		return nil, errors.Wrapf(err, "config: load %s", path)
	}
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrap(err, "config: resolve project dir")
	}
	cfg.BaseDir = dir
	cfg.resolvePaths()
	return cfg, nil
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) abs(p string) string {
	if p == "" || filepath.IsAbs(p) || c.BaseDir == "" {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

func (c *Config) resolvePaths() {
	c.Output.Dir = c.abs(c.Output.Dir)
	c.Logging.LogFile = c.abs(c.Logging.LogFile)
	if c.Output.Manifest != "" && !filepath.IsAbs(c.Output.Manifest) {
		c.Output.Manifest = filepath.Join(c.Output.Dir, c.Output.Manifest)
	}
	for i := range c.Targets {
		t := &c.Targets[i]
		t.Mesh = c.abs(t.Mesh)
		for j, p := range t.Colliders {
			t.Colliders[j] = c.abs(p)
		}
		for m, p := range t.DirectionMaps {
			t.DirectionMaps[m] = c.abs(p)
		}
	}
}
