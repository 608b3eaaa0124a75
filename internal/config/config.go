package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"quizmaster/internal/badge"
)

type Config struct {
	Quiz struct {
		URL      string `yaml:"url"`
		ProxyURL string `yaml:"proxy_url"`
		Timeout  string `yaml:"timeout"`
		CacheTTL string `yaml:"cache_ttl"`
	} `yaml:"quiz"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Feed struct {
		Port string `yaml:"port"`
	} `yaml:"feed"`
	Tiers []TierConfig `yaml:"tiers"`
}

// TierConfig is one row of the score tier table, highest threshold first.
type TierConfig struct {
	Name     string  `yaml:"name"`
	MinScore float64 `yaml:"min_score"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TierTable converts the configured tiers, falling back to the defaults when
// none are configured. The descending-order invariant is validated here so a
// bad table fails at startup, not mid-quiz.
func (c Config) TierTable() (badge.TierTable, error) {
	if len(c.Tiers) == 0 {
		return badge.DefaultTiers(), nil
	}
	table := make(badge.TierTable, 0, len(c.Tiers))
	for _, t := range c.Tiers {
		table = append(table, badge.Tier{Name: t.Name, MinScore: t.MinScore})
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("tiers: %w", err)
	}
	return table, nil
}

// DurationOr parses a duration string or returns the fallback if empty or
// malformed.
func DurationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
