package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults overrides the wrapper's built-in conversion defaults. Pointer
// fields distinguish "not set in the file" from a zero value.
type Defaults struct {
	Compress         *bool   `yaml:"compress"`
	CompressionLevel *int    `yaml:"compression_level"`
	Depth            *int    `yaml:"depth"`
	ExportFormat     *string `yaml:"export_format"`
	FilenameFormat   *string `yaml:"filename_format"`
	WriteBehavior    *string `yaml:"write_behavior"`
}

// Config is the optional per-user wrapper configuration. Everything in it
// can still be overridden per invocation by flags or library options.
type Config struct {
	// Binary is an explicit path to the dcm2niix executable.
	Binary   string   `yaml:"binary"`
	LogLevel string   `yaml:"log_level"`
	Defaults Defaults `yaml:"defaults"`
}

// Path returns the config file location: $DCM2NIIW_CONFIG when set,
// otherwise <user config dir>/dcm2niiw/config.yaml.
func Path() string {
	if p := strings.TrimSpace(os.Getenv("DCM2NIIW_CONFIG")); p != "" {
		return p
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "dcm2niiw", "config.yaml")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "dcm2niiw", "config.yaml")
	}
	return ""
}

// Read parses the config file at Path. A missing file is not an error and
// yields the zero Config.
func Read() (Config, error) {
	return ReadFile(Path())
}

// ReadFile parses the config file at path. An empty path or absent file
// yields the zero Config.
func ReadFile(path string) (Config, error) {
	var cfg Config
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
