package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Log       LogConfig       `yaml:"log"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Sessions  SessionsConfig  `yaml:"sessions"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// File enables rotating file output in addition to (or, with Stdout
	// false, instead of) standard output.
	File   string `yaml:"file"`
	Stdout *bool  `yaml:"stdout"`
}

// ToStdout reports whether logs go to standard output. Defaults to true.
func (l LogConfig) ToStdout() bool {
	return l.Stdout == nil || *l.Stdout
}

type AnalysisConfig struct {
	MinVisibility     float64 `yaml:"min_visibility"`
	DefaultTargetReps int     `yaml:"default_target_reps"`
}

type SessionsConfig struct {
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	ReapInterval time.Duration `yaml:"reap_interval"`
	MaxActive    int           `yaml:"max_active"`
}

// Default returns a config with every optional field filled in.
func Default() *Config {
	return &Config{
		Server:    ServerConfig{Host: "0.0.0.0", Port: 8080},
		Tailscale: TailscaleConfig{Hostname: "biomechfit", StateDir: "tsnet-state"},
		Log:       LogConfig{Level: "info", Format: "text"},
		Analysis:  AnalysisConfig{MinVisibility: 0.5, DefaultTargetReps: 8},
		Sessions:  SessionsConfig{IdleTimeout: 15 * time.Minute, ReapInterval: time.Minute, MaxActive: 256},
	}
}

// Load reads config from a YAML file over Default, then applies environment
// variable overrides. Env vars use the prefix BIOMECHFIT_ and
// underscore-separated paths:
//
//	BIOMECHFIT_SERVER_HOST, BIOMECHFIT_SERVER_PORT, BIOMECHFIT_AUTH_API_KEY,
//	BIOMECHFIT_TAILSCALE_ENABLED, BIOMECHFIT_TAILSCALE_HOSTNAME,
//	BIOMECHFIT_LOG_LEVEL, BIOMECHFIT_LOG_FILE,
//	BIOMECHFIT_ANALYSIS_MIN_VISIBILITY, BIOMECHFIT_SESSIONS_IDLE_TIMEOUT
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BIOMECHFIT_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("BIOMECHFIT_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("BIOMECHFIT_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("BIOMECHFIT_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	if v := os.Getenv("BIOMECHFIT_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("BIOMECHFIT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("BIOMECHFIT_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("BIOMECHFIT_ANALYSIS_MIN_VISIBILITY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Analysis.MinVisibility = f
		}
	}
	if v := os.Getenv("BIOMECHFIT_SESSIONS_IDLE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Sessions.IdleTimeout = d
		}
	}
}

// validate reports every problem at once.
func (c *Config) validate() error {
	var err error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Auth.APIKey == "" {
		err = multierr.Append(err, errors.New("auth.api_key is required"))
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		err = multierr.Append(err, errors.New("tailscale.hostname is required when tailscale is enabled"))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		err = multierr.Append(err, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		err = multierr.Append(err, fmt.Errorf("log.format %q is not one of text, json", c.Log.Format))
	}
	if !c.Log.ToStdout() && c.Log.File == "" {
		err = multierr.Append(err, errors.New("log.file is required when log.stdout is false"))
	}
	if c.Analysis.MinVisibility < 0 || c.Analysis.MinVisibility > 1 {
		err = multierr.Append(err, fmt.Errorf("analysis.min_visibility must be within [0,1], got %v", c.Analysis.MinVisibility))
	}
	if c.Analysis.DefaultTargetReps <= 0 {
		err = multierr.Append(err, errors.New("analysis.default_target_reps must be positive"))
	}
	if c.Sessions.IdleTimeout < 0 || c.Sessions.ReapInterval < 0 {
		err = multierr.Append(err, errors.New("sessions durations must not be negative"))
	}
	if c.Sessions.MaxActive < 0 {
		err = multierr.Append(err, errors.New("sessions.max_active must not be negative"))
	}
	return err
}
