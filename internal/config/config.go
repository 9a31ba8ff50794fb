// Package config loads runtime configuration from a YAML file and the
// environment using viper. Every knob has a default so the pipeline runs
// locally with the in-memory backend and the built-in catalog without any
// config file at all.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/spendsense/spendsense/internal/domain"
)

// Config holds all runtime settings for the recommendation pipeline.
type Config struct {
	// Backend selects the persistence layer: "memory" or "bigquery".
	Backend string `mapstructure:"backend"`

	// BigQuery settings, used only when Backend is "bigquery".
	ProjectID string `mapstructure:"project_id"`
	Dataset   string `mapstructure:"dataset"`

	// CatalogURI points at the content catalog JSON. Supports local paths
	// and gs:// object URIs. Empty means the built-in catalog.
	CatalogURI string `mapstructure:"catalog_uri"`

	// Windows restricts which lookback windows are computed. Empty means
	// all supported windows.
	Windows []string `mapstructure:"windows"`

	// WorkerCount is the number of concurrent pipeline workers consuming
	// the job queue.
	WorkerCount int `mapstructure:"worker_count"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `mapstructure:"queue_size"`

	// Notion settings for the decision-trace export command.
	NotionAPIKey     string `mapstructure:"notion_api_key"`
	NotionDatabaseID string `mapstructure:"notion_database_id"`
}

// Load reads configuration from the given file path (optional) and the
// environment. Environment variables use the SPENDSENSE_ prefix, e.g.
// SPENDSENSE_PROJECT_ID overrides project_id.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("backend", "memory")
	v.SetDefault("project_id", "")
	v.SetDefault("dataset", "spendsense")
	v.SetDefault("catalog_uri", "")
	v.SetDefault("windows", []string{})
	v.SetDefault("worker_count", 4)
	v.SetDefault("queue_size", 100)
	v.SetDefault("notion_api_key", "")
	v.SetDefault("notion_database_id", "")

	v.SetEnvPrefix("SPENDSENSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("Load: reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("Load: unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	return &cfg, nil
}

// TimeWindows returns the configured lookback windows as domain values. An
// empty configuration means every supported window.
func (c *Config) TimeWindows() []domain.TimeWindow {
	if len(c.Windows) == 0 {
		return domain.AllWindows()
	}
	out := make([]domain.TimeWindow, 0, len(c.Windows))
	for _, w := range c.Windows {
		out = append(out, domain.TimeWindow(w))
	}
	return out
}

// Validate checks cross-field constraints that viper cannot express.
func (c *Config) Validate() error {
	switch c.Backend {
	case "memory":
	case "bigquery":
		if c.ProjectID == "" {
			return fmt.Errorf("backend %q requires project_id", c.Backend)
		}
		if c.Dataset == "" {
			return fmt.Errorf("backend %q requires dataset", c.Backend)
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	if c.WorkerCount < 1 {
		return fmt.Errorf("worker_count must be at least 1, got %d", c.WorkerCount)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("queue_size must be at least 1, got %d", c.QueueSize)
	}

	for _, w := range c.Windows {
		switch w {
		case "30d", "90d", "180d":
		default:
			return fmt.Errorf("unknown window %q", w)
		}
	}
	return nil
}
