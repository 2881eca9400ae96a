/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: config.go
Description: Configuration for the boundary tools. Values come from a config file, AKAYLEE_*
environment variables and command-line flags, merged by viper.
*/

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
	"github.com/kleascm/akaylee-boundary/pkg/logging"
	"github.com/spf13/viper"
)

// EnvPrefix is the environment variable prefix, e.g. AKAYLEE_RUN_WORKERS
const EnvPrefix = "AKAYLEE"

// RunConfig configures the replay engine
type RunConfig struct {
	Harness        string        `mapstructure:"harness" toml:"harness"`
	Workers        int           `mapstructure:"workers" toml:"workers"`
	Runs           int           `mapstructure:"runs" toml:"runs"`
	Timeout        time.Duration `mapstructure:"timeout" toml:"timeout"`
	MaxCrashes     int           `mapstructure:"max_crashes" toml:"max_crashes"`
	ArtifactPrefix string        `mapstructure:"artifact_prefix" toml:"artifact_prefix"`
	ReportDir      string        `mapstructure:"report_dir" toml:"report_dir"`
}

// Config is the full tool configuration
type Config struct {
	Log logging.LoggerConfig `mapstructure:"log" toml:"log"`
	Run RunConfig            `mapstructure:"run" toml:"run"`
}

// Default returns the built-in defaults
func Default() Config {
	return Config{
		Log: logging.DefaultLoggerConfig(),
		Run: RunConfig{
			Harness:        "demo",
			Workers:        1,
			Runs:           1,
			ArtifactPrefix: "./",
		},
	}
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if c.Run.Workers <= 0 {
		return fmt.Errorf("run.workers must be positive, got %d", c.Run.Workers)
	}
	if c.Run.Runs <= 0 {
		return fmt.Errorf("run.runs must be positive, got %d", c.Run.Runs)
	}
	if c.Run.Timeout < 0 {
		return fmt.Errorf("run.timeout must not be negative")
	}
	if c.Run.MaxCrashes < 0 {
		return fmt.Errorf("run.max_crashes must not be negative")
	}
	// workers and runs are multiplied into per-run totals
	if _, err := safecast.Conv[int32](c.Run.Workers); err != nil {
		return fmt.Errorf("run.workers out of range: %w", err)
	}
	if _, err := safecast.Conv[int32](c.Run.Runs); err != nil {
		return fmt.Errorf("run.runs out of range: %w", err)
	}
	return nil
}

// SetDefaults registers Default() with v so unset keys fall back to it
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("log.level", string(d.Log.Level))
	v.SetDefault("log.format", string(d.Log.Format))
	v.SetDefault("log.output_dir", d.Log.OutputDir)
	v.SetDefault("log.max_files", d.Log.MaxFiles)
	v.SetDefault("log.timestamp", d.Log.Timestamp)
	v.SetDefault("log.caller", d.Log.Caller)
	v.SetDefault("log.colors", d.Log.Colors)
	v.SetDefault("run.harness", d.Run.Harness)
	v.SetDefault("run.workers", d.Run.Workers)
	v.SetDefault("run.runs", d.Run.Runs)
	v.SetDefault("run.timeout", d.Run.Timeout)
	v.SetDefault("run.max_crashes", d.Run.MaxCrashes)
	v.SetDefault("run.artifact_prefix", d.Run.ArtifactPrefix)
	v.SetDefault("run.report_dir", d.Run.ReportDir)
}

// Load reads the optional config file and the environment into v, then decodes and validates.
func Load(v *viper.Viper, configFile string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// tomlRun mirrors RunConfig with the timeout as a duration string, which is how viper reads it back.
type tomlRun struct {
	Harness        string `toml:"harness"`
	Workers        int    `toml:"workers"`
	Runs           int    `toml:"runs"`
	Timeout        string `toml:"timeout"`
	MaxCrashes     int    `toml:"max_crashes"`
	ArtifactPrefix string `toml:"artifact_prefix"`
	ReportDir      string `toml:"report_dir"`
}

type tomlConfig struct {
	Log logging.LoggerConfig `toml:"log"`
	Run tomlRun              `toml:"run"`
}

// WriteDefault writes Default() as TOML to path. Existing files are not overwritten.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	d := Default()
	out := tomlConfig{
		Log: d.Log,
		Run: tomlRun{
			Harness:        d.Run.Harness,
			Workers:        d.Run.Workers,
			Runs:           d.Run.Runs,
			Timeout:        d.Run.Timeout.String(),
			MaxCrashes:     d.Run.MaxCrashes,
			ArtifactPrefix: d.Run.ArtifactPrefix,
			ReportDir:      d.Run.ReportDir,
		},
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(out); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return f.Close()
}
