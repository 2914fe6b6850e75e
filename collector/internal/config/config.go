package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultInterval       = 30 * time.Minute
	DefaultPageSize       = 100
	DefaultMaxPages       = 200
	DefaultRequestTimeout = 30 * time.Second
	DefaultLockTTL        = 15 * time.Minute
	DefaultOutputPath     = "data/snapshot.json"
	DefaultLockPath       = "data/collector.lock"
	DefaultEmailEnv       = "JIRA_EMAIL"
	DefaultTokenEnv       = "JIRA_API_TOKEN"
)

// Config holds the collector-side configuration parsed from the
// `collector:` section of config.yaml. The `viewer:` key in the same file
// is ignored.
type Config struct {
	Collector CollectorConfig `yaml:"collector"`
}

// CollectorConfig holds all collector settings.
type CollectorConfig struct {
	// Jira describes the upstream issue tracker.
	Jira JiraConfig `yaml:"jira"`

	// Interval controls how often daemon mode triggers a pipeline run.
	// Ignored with -once.
	Interval time.Duration `yaml:"interval"`

	// OutputPath is where the snapshot artifact is published.
	OutputPath string `yaml:"output_path"`

	// LockPath is the run-level mutual-exclusion lock file. Overlapping
	// triggers are skipped while a live lock exists.
	LockPath string `yaml:"lock_path"`

	// LockTTL is how old a lock file may grow before it is considered
	// abandoned by a crashed run and taken over.
	LockTTL time.Duration `yaml:"lock_ttl"`

	// RulesPath optionally overrides the built-in classification rule set
	// with a versioned YAML rule list. Empty means built-in rules.
	RulesPath string `yaml:"rules_path"`
}

// JiraConfig describes the upstream Jira Cloud project.
type JiraConfig struct {
	// Domain is the Jira Cloud host, e.g. "example.atlassian.net".
	Domain string `yaml:"domain"`

	// Project is the Jira project key whose bugs are aggregated.
	Project string `yaml:"project"`

	// EmailEnv / TokenEnv are the names of the environment variables that
	// hold the basic-auth credential pair.
	EmailEnv string `yaml:"email_env"`
	TokenEnv string `yaml:"token_env"`

	// PageSize is the maxResults sent per search page request.
	PageSize int `yaml:"page_size"`

	// MaxPages bounds pagination against cursor loops from a malformed
	// upstream. Exceeding it fails the run as a protocol error.
	MaxPages int `yaml:"max_pages"`

	// RequestTimeout applies per page request.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Email returns the basic-auth email resolved from the environment.
func (j JiraConfig) Email() string {
	if j.EmailEnv == "" {
		return ""
	}
	return os.Getenv(j.EmailEnv)
}

// Token returns the API token resolved from the environment.
func (j JiraConfig) Token() string {
	if j.TokenEnv == "" {
		return ""
	}
	return os.Getenv(j.TokenEnv)
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Collector: CollectorConfig{
			Jira: JiraConfig{
				EmailEnv:       DefaultEmailEnv,
				TokenEnv:       DefaultTokenEnv,
				PageSize:       DefaultPageSize,
				MaxPages:       DefaultMaxPages,
				RequestTimeout: DefaultRequestTimeout,
			},
			Interval:   DefaultInterval,
			OutputPath: DefaultOutputPath,
			LockPath:   DefaultLockPath,
			LockTTL:    DefaultLockTTL,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	c := cfg.Collector
	if c.Jira.Domain == "" {
		return fmt.Errorf("collector.jira.domain is required")
	}
	if c.Jira.Project == "" {
		return fmt.Errorf("collector.jira.project is required")
	}
	if c.Jira.PageSize <= 0 {
		return fmt.Errorf("collector.jira.page_size must be positive")
	}
	if c.Jira.MaxPages <= 0 {
		return fmt.Errorf("collector.jira.max_pages must be positive")
	}
	if c.Jira.RequestTimeout <= 0 {
		return fmt.Errorf("collector.jira.request_timeout must be positive")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("collector.interval must be positive")
	}
	if c.OutputPath == "" {
		return fmt.Errorf("collector.output_path is required")
	}
	if c.LockPath == "" {
		return fmt.Errorf("collector.lock_path is required")
	}
	if c.LockTTL <= 0 {
		return fmt.Errorf("collector.lock_ttl must be positive")
	}
	return nil
}
