// Package config loads and validates the gerritmon configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root of the YAML configuration file.
type Config struct {
	// Gerrit configures the stream-events source.
	Gerrit GerritConfig `yaml:"gerrit"`
	// Dashboard configures the read-only HTTP presentation layer.
	Dashboard DashboardConfig `yaml:"dashboard"`
	// Builds configures the local build executor.
	Builds BuildsConfig `yaml:"builds"`
	// Rules lists the trigger rules evaluated against each event.
	Rules []RuleConfig `yaml:"rules"`
}

// GerritConfig holds the event-source connection settings.
type GerritConfig struct {
	// Address is the host:port of the stream-events endpoint.
	Address string `yaml:"address"`
	// ReconnectsPerMinute bounds how fast the client re-dials a flapping
	// connection. Default: 6.
	ReconnectsPerMinute int `yaml:"reconnects_per_minute"`
}

// DashboardConfig holds the HTTP dashboard settings.
type DashboardConfig struct {
	// Listen is the address the dashboard binds to. Default: ":8080".
	Listen string `yaml:"listen"`
	// RefreshSeconds is the HTML meta-refresh interval. Default: 10.
	RefreshSeconds int `yaml:"refresh_seconds"`
}

// BuildsConfig holds executor settings.
type BuildsConfig struct {
	// MaxConcurrent bounds how many builds run at once. Default: 4.
	MaxConcurrent int `yaml:"max_concurrent"`
	// Timeout is the per-build wall-clock limit as a duration string
	// ("30m", "1h"). Default: 30m.
	Timeout string `yaml:"timeout"`

	// TimeoutDuration is Timeout parsed during Load.
	TimeoutDuration time.Duration `yaml:"-"`
}

// RuleConfig declares one trigger rule: which review-system project/branch
// combinations trigger a build of Name, and how.
type RuleConfig struct {
	// Name is the build-target project started when the rule matches.
	Name string `yaml:"name"`
	// PatternStyle is how Pattern is interpreted: plain, wildcard or regexp.
	// Default: plain.
	PatternStyle string `yaml:"pattern_style"`
	// Pattern matches the event's review project.
	Pattern string `yaml:"pattern"`
	// BranchStyle is how Branch is interpreted. Default: plain.
	BranchStyle string `yaml:"branch_style"`
	// Branch matches the event's branch. Empty matches every branch.
	Branch string `yaml:"branch"`
	// Command is the build command to execute.
	Command []string `yaml:"command"`
	// Silent excludes this rule's builds from the coarse all-builds-completed
	// signal.
	Silent bool `yaml:"silent"`
}

// Load reads and validates the configuration at path. Listen addresses can
// be overridden with GERRITMON_LISTEN and GERRITMON_GERRIT_ADDRESS.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if addr := os.Getenv("GERRITMON_GERRIT_ADDRESS"); addr != "" {
		cfg.Gerrit.Address = addr
	}
	if listen := os.Getenv("GERRITMON_LISTEN"); listen != "" {
		cfg.Dashboard.Listen = listen
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Gerrit.ReconnectsPerMinute <= 0 {
		c.Gerrit.ReconnectsPerMinute = 6
	}
	if c.Dashboard.Listen == "" {
		c.Dashboard.Listen = ":8080"
	}
	if c.Dashboard.RefreshSeconds <= 0 {
		c.Dashboard.RefreshSeconds = 10
	}
	if c.Builds.MaxConcurrent <= 0 {
		c.Builds.MaxConcurrent = 4
	}
	if c.Builds.Timeout == "" {
		c.Builds.Timeout = "30m"
	}
	for i := range c.Rules {
		if c.Rules[i].PatternStyle == "" {
			c.Rules[i].PatternStyle = "plain"
		}
		if c.Rules[i].BranchStyle == "" {
			c.Rules[i].BranchStyle = "plain"
		}
	}
}

// Validate checks the configuration for values Load's defaulting cannot fix.
func (c *Config) Validate() error {
	if c.Gerrit.Address == "" {
		return fmt.Errorf("gerrit.address is required")
	}
	timeout, err := time.ParseDuration(c.Builds.Timeout)
	if err != nil {
		return fmt.Errorf("builds.timeout: %w", err)
	}
	if timeout <= 0 {
		return fmt.Errorf("builds.timeout must be positive, got %s", c.Builds.Timeout)
	}
	c.Builds.TimeoutDuration = timeout
	for i, rule := range c.Rules {
		if rule.Name == "" {
			return fmt.Errorf("rules[%d]: name is required", i)
		}
		if rule.Pattern == "" {
			return fmt.Errorf("rules[%d] (%s): pattern is required", i, rule.Name)
		}
		if len(rule.Command) == 0 {
			return fmt.Errorf("rules[%d] (%s): command is required", i, rule.Name)
		}
		if !validStyle(rule.PatternStyle) {
			return fmt.Errorf("rules[%d] (%s): unknown pattern_style %q", i, rule.Name, rule.PatternStyle)
		}
		if !validStyle(rule.BranchStyle) {
			return fmt.Errorf("rules[%d] (%s): unknown branch_style %q", i, rule.Name, rule.BranchStyle)
		}
	}
	return nil
}

func validStyle(style string) bool {
	switch style {
	case "plain", "wildcard", "regexp":
		return true
	}
	return false
}
