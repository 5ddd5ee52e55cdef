package config

import (
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvConfig names a config file when --config is not given.
const EnvConfig = "STUDIOVIEW_CONFIG"

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	path := ConfigPath()
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, errors.Wrapf(err, "loading config from %s", path)
		}
	}

	applyFlags(cfg)
	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, "after flags")
	}
	return cfg, nil
}

// findConfigFile returns the first existing config in the working
// directory or the user config directory.
func findConfigFile() string {
	for _, path := range []string{
		"studioview.yaml",
		"config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "StudioRender")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "StudioRender")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "studiorender")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "studiorender")
	}
}

// loadFromFile merges a YAML file over cfg. Unknown keys are rejected.
func loadFromFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrap(err, "decode")
	}
	return cfg.validate()
}

// validate rejects values the renderer cannot honour.
func (c *Config) validate() error {
	switch c.Animation.GaitEstimation {
	case GaitFromPosition, GaitFromVelocity:
	default:
		return errors.Errorf("unknown gait estimation %q", c.Animation.GaitEstimation)
	}
	if c.Debug.DrawEntities < 0 || c.Debug.DrawEntities > 5 {
		return errors.Errorf("draw_entities %d out of range 0..5", c.Debug.DrawEntities)
	}
	if c.Shadow.SunElevation < 0 || c.Shadow.SunElevation > 90 {
		return errors.Errorf("sun_elevation %g out of range 0..90", c.Shadow.SunElevation)
	}
	if c.Shadow.MaxFaces < 0 {
		return errors.Errorf("negative shadow max_faces %d", c.Shadow.MaxFaces)
	}
	return nil
}
