package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/samcharles93/npywrite/internal/logger"
)

// Config represents the npywrite configuration file
// (~/.config/npywrite/config.yaml). Pointer fields distinguish "not set"
// from zero values.
type Config struct {
	DType       string  `yaml:"dtype"`
	Separator   *string `yaml:"separator"`
	Output      string  `yaml:"output"`
	StrictDType *bool   `yaml:"strict_dtype"`
	AllowRagged *bool   `yaml:"allow_ragged"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	ServerAddress string `yaml:"server_address"`
	MaxBodyBytes  *int64 `yaml:"max_body_bytes"`
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "npywrite", "config.yaml")
}

// LoadConfig reads the config file at path. A missing file yields a zero
// Config; a malformed one is an error.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// applyConfig copies config values onto options whose flag was not set on
// the command line.
func applyConfig(c *cli.Command, cfg Config, o *cliOptions) {
	if cfg.DType != "" && !c.IsSet("dtype") {
		o.dtype = cfg.DType
	}
	if cfg.Separator != nil && !c.IsSet("separator") {
		o.separator = *cfg.Separator
	}
	if cfg.Output != "" && !c.IsSet("output") {
		o.output = cfg.Output
	}
	if cfg.StrictDType != nil && !c.IsSet("strict-dtype") {
		o.strictDType = *cfg.StrictDType
	}
	if cfg.AllowRagged != nil && !c.IsSet("allow-ragged") {
		o.allowRagged = *cfg.AllowRagged
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		o.logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		o.logFormat = cfg.LogFormat
	}
	o.serverAddress = cfg.ServerAddress
	if cfg.MaxBodyBytes != nil {
		o.maxBodyBytes = *cfg.MaxBodyBytes
	}
}

// setup loads the config file and installs the logger in the context.
func setup(o *cliOptions, stderr io.Writer) cli.BeforeFunc {
	return func(ctx context.Context, c *cli.Command) (context.Context, error) {
		path := o.configPath
		if path == "" {
			path = defaultConfigPath()
		}
		cfg, err := LoadConfig(path)
		if err != nil {
			return ctx, fmt.Errorf("config: %w", err)
		}
		applyConfig(c, cfg, o)

		level := logger.ParseLevel(o.logLevel)
		if o.debug {
			level = logger.ParseLevel("debug")
		}
		log := logger.ForFormat(stderr, o.logFormat, level)
		log.Debug("config loaded", "path", path, "dtype", o.dtype, "output", o.output)
		return logger.WithContext(ctx, log), nil
	}
}
