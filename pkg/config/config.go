// Package config loads tool configuration from the environment and an
// optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for a run. It is built once before the run
// and passed down explicitly; nothing reads it as ambient state.
type Config struct {
	Token     string   `env:"DNSIMPLE_TOKEN"`
	AccountID string   `env:"DNSIMPLE_ACCOUNT_ID"`
	Sandbox   bool     `env:"DNSIMPLE_SANDBOX" envDefault:"false"`
	Hostnames []string `env:"HOSTNAMES" envSeparator:","`
	LogLevel  string   `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON   bool     `env:"LOG_JSON" envDefault:"false"`
}

// fileConfig mirrors Config for the optional YAML file.
type fileConfig struct {
	Token     string   `yaml:"token"`
	AccountID string   `yaml:"account_id"`
	Sandbox   bool     `yaml:"sandbox"`
	Hostnames []string `yaml:"hostnames"`
	LogLevel  string   `yaml:"log_level"`
	LogJSON   bool     `yaml:"log_json"`
}

// Load builds the configuration. A .env file in the working directory is
// loaded into the environment first (missing is fine), then environment
// variables are parsed. When path is non-empty the YAML file there fills in
// any values the environment left unset; environment wins on conflict.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Hostnames = normalizeHostnames(cfg.Hostnames)
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if c.Token == "" {
		c.Token = fc.Token
	}
	if c.AccountID == "" {
		c.AccountID = fc.AccountID
	}
	if os.Getenv("DNSIMPLE_SANDBOX") == "" && fc.Sandbox {
		c.Sandbox = true
	}
	if len(c.Hostnames) == 0 {
		c.Hostnames = fc.Hostnames
	}
	if os.Getenv("LOG_LEVEL") == "" && fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if os.Getenv("LOG_JSON") == "" && fc.LogJSON {
		c.LogJSON = true
	}
	return nil
}

// normalizeHostnames trims whitespace and drops empty entries, so values like
// "a.example.com, b.example.com," parse cleanly.
func normalizeHostnames(hostnames []string) []string {
	out := make([]string, 0, len(hostnames))
	for _, h := range hostnames {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}

// Validate checks the preconditions that must hold before any reconciliation
// logic runs.
func (c *Config) Validate() error {
	if c.Token == "" {
		return errors.New("DNSIMPLE_TOKEN is required")
	}
	if len(c.Hostnames) == 0 {
		return errors.New("HOSTNAMES is required (comma-separated list of hostnames)")
	}
	return nil
}

// Summary returns a redacted, human-readable description of the loaded
// configuration for help and startup output.
func (c *Config) Summary() string {
	token := "[not configured]"
	if c.Token != "" {
		token = "[configured]"
	}
	account := c.AccountID
	if account == "" {
		account = "[auto-detected]"
	}
	sandbox := "disabled"
	if c.Sandbox {
		sandbox = "enabled"
	}
	hostnames := "[not configured]"
	if len(c.Hostnames) > 0 {
		hostnames = strings.Join(c.Hostnames, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  DNSimple token: %s\n", token)
	fmt.Fprintf(&b, "  Account ID:     %s\n", account)
	fmt.Fprintf(&b, "  Sandbox mode:   %s\n", sandbox)
	fmt.Fprintf(&b, "  Hostname(s):    %s\n", hostnames)
	return b.String()
}
