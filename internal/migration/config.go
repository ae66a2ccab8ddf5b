package migration

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config drives a migration run. Every field has a sensible default so a
// minimal file only needs the catalog path.
type Config struct {
	BatchSize        int `yaml:"batch_size"`
	RateLimitDelayMS int `yaml:"rate_limit_delay_ms"`

	// Legacy establishment ids already migrated and therefore skipped.
	ExcludeEstablishments []string `yaml:"exclude_establishments"`

	// Path to the structured activity catalog JSON.
	ActivitiesCatalog string `yaml:"activities_catalog"`

	// Only legacy responses completed after this date (dd/mm/yyyy) migrate.
	ResponsesSince string `yaml:"responses_since"`

	DefaultAcademicYear string `yaml:"default_academic_year"`
	DefaultLevel        string `yaml:"default_level"`
}

func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.RateLimitDelayMS <= 0 {
		c.RateLimitDelayMS = 500
	}
	if c.ResponsesSince == "" {
		c.ResponsesSince = "01/01/2025"
	}
	if c.DefaultAcademicYear == "" {
		c.DefaultAcademicYear = "2025/2026"
	}
	if c.DefaultLevel == "" {
		c.DefaultLevel = "Level 2"
	}
}

func (c *Config) RateLimitDelay() time.Duration {
	return time.Duration(c.RateLimitDelayMS) * time.Millisecond
}

func (c *Config) IsExcluded(knackID string) bool {
	for _, id := range c.ExcludeEstablishments {
		if id == knackID {
			return true
		}
	}
	return false
}
