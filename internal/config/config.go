// Package config loads the CLI configuration file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid configuration")

// Config is the CLI configuration.
type Config struct {
	// Prefixes are predeclared for every expression.
	Prefixes map[string]string `yaml:"prefixes"`
	// Base resolves relative IRIs in expressions.
	Base        string      `yaml:"base"`
	Store       StoreConfig `yaml:"store"`
	Concurrency int         `yaml:"concurrency"`
	Log         LogConfig   `yaml:"log"`
}

type StoreConfig struct {
	// Path of the badger directory. Empty means no store.
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Prefixes: map[string]string{
			"xsd":  "http://www.w3.org/2001/XMLSchema#",
			"rdf":  "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
			"rdfs": "http://www.w3.org/2000/01/rdf-schema#",
		},
		Concurrency: runtime.GOMAXPROCS(0),
		Log:         LogConfig{Level: "warn"},
	}
}

// Load reads a YAML file over the defaults. Prefixes in the file are added
// to the default ones.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
	default:
		return Config{}, fmt.Errorf("unsupported config file extension: %s", ext)
	}
	return Parse(data)
}

// Parse decodes YAML data over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	defaults := cfg.Prefixes
	cfg.Prefixes = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	for k, v := range defaults {
		if _, ok := cfg.Prefixes[k]; !ok {
			if cfg.Prefixes == nil {
				cfg.Prefixes = make(map[string]string)
			}
			cfg.Prefixes[k] = v
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c Config) Validate() error {
	if c.Concurrency < 0 {
		return fmt.Errorf("%w: concurrency must not be negative, got %d", ErrInvalid, c.Concurrency)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Log.Level. An empty level is info.
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if c.Log.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, c.Log.Level)
	}
	return level, nil
}
