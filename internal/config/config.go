// Package config loads the optional YAML configuration file tinyquery
// accepts alongside its functional Open options.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config describes the knobs tinyquery.Open understands beyond the
// database path itself.
type Config struct {
	// LogLevel is parsed with logrus.ParseLevel; empty means "info".
	LogLevel string `yaml:"log_level"`

	// PageCacheWarn is read from the config file, but tinyquery.Open does
	// not pass it on: the pager keeps no cache-size limit and logs no
	// warning based on it.
	PageCacheWarn int `yaml:"page_cache_warn"`
}

// Default returns the configuration tinyquery.Open falls back to when no
// config file is given: LogLevel "info", PageCacheWarn zero.
func Default() Config {
	return Config{LogLevel: "info"}
}

// Load reads and parses a YAML config file from path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}
