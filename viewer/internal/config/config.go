package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultRefreshInterval = time.Minute
	DefaultFetchTimeout    = 10 * time.Second
	DefaultHTTPPort        = 8080
)

// Config holds the viewer-side configuration parsed from the `viewer:`
// section of config.yaml.
type Config struct {
	Viewer ViewerConfig `yaml:"viewer"`
}

// ViewerConfig holds all viewer settings.
type ViewerConfig struct {
	// ArtifactURL is where the collector's published snapshot is fetched
	// from. A plain filesystem path (no scheme) reads the artifact locally
	// for same-host deployments.
	ArtifactURL string `yaml:"artifact_url"`

	// RefreshInterval controls how often the reader re-polls the artifact.
	RefreshInterval time.Duration `yaml:"refresh_interval"`

	// FetchTimeout bounds one artifact fetch. A fetch still in flight when
	// the next refresh fires is superseded and its result discarded.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// HTTPPort is the port the read-only JSON API listens on.
	HTTPPort int `yaml:"http_port"`
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

func defaults() *Config {
	return &Config{
		Viewer: ViewerConfig{
			RefreshInterval: DefaultRefreshInterval,
			FetchTimeout:    DefaultFetchTimeout,
			HTTPPort:        DefaultHTTPPort,
		},
	}
}

func validate(cfg *Config) error {
	v := cfg.Viewer
	if v.ArtifactURL == "" {
		return fmt.Errorf("viewer.artifact_url is required")
	}
	if v.RefreshInterval <= 0 {
		return fmt.Errorf("viewer.refresh_interval must be positive")
	}
	if v.FetchTimeout <= 0 {
		return fmt.Errorf("viewer.fetch_timeout must be positive")
	}
	if v.HTTPPort <= 0 || v.HTTPPort > 65535 {
		return fmt.Errorf("viewer.http_port must be a valid port")
	}
	return nil
}
