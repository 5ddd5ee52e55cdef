package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const savedHeader = "# studioview configuration\n"

// Save writes the config to the user's config directory.
func (c *Config) Save() error {
	return c.SaveTo(filepath.Join(ConfigDir(), "config.yaml"))
}

// SaveTo validates the config and writes it to path as YAML.
func (c *Config) SaveTo(path string) error {
	if err := c.validate(); err != nil {
		return errors.Wrap(err, "refusing to save invalid config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create config dir")
	}

	var buf bytes.Buffer
	buf.WriteString(savedHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return errors.Wrap(err, "encode config")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, "encode config")
	}
	return errors.Wrap(os.WriteFile(path, buf.Bytes(), 0644), "write config")
}
