// Package config assembles service settings from defaults, an optional YAML
// file, and environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ercilio-oss/lastmile-dsp-italy/internal/severity"
)

// Config holds everything the serving layer needs at startup.
type Config struct {
	HTTPPort    string
	FeedPath    string
	RosterPath  string
	FeedURL     string // when set, the workbook is downloaded before load
	WatchFeeds  bool
	MinCombined int
	DefaultYear int // 0 = all years
	Thresholds  severity.Thresholds
}

type fileConfig struct {
	FeedPath    string               `yaml:"feed_path"`
	RosterPath  string               `yaml:"roster_path"`
	HTTPPort    string               `yaml:"http_port"`
	MinCombined *int                 `yaml:"min_combined"`
	DefaultYear *int                 `yaml:"default_year"`
	Thresholds  *severity.Thresholds `yaml:"thresholds"`
}

const (
	defaultPort       = ":8080"
	defaultFeedPath   = "data/feeds.xlsx"
	defaultRosterPath = "data/roster.yaml"
	maxMinCombined    = 1000
)

// Load builds the effective configuration. A missing config file is fine;
// a present but unparseable one is an error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:   defaultPort,
		FeedPath:   defaultFeedPath,
		RosterPath: defaultRosterPath,
		FeedURL:    os.Getenv("FEED_URL"),
		WatchFeeds: parseBoolEnv("WATCH_FEEDS"),
		Thresholds: severity.DefaultThresholds(),
	}

	configPath := getEnv("CONFIG_PATH", "config.yaml")
	if raw, err := os.ReadFile(configPath); err == nil {
		var fc fileConfig
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", configPath, err)
		}
		if fc.FeedPath != "" {
			cfg.FeedPath = fc.FeedPath
		}
		if fc.RosterPath != "" {
			cfg.RosterPath = fc.RosterPath
		}
		if fc.HTTPPort != "" {
			cfg.HTTPPort = fc.HTTPPort
		}
		if fc.MinCombined != nil {
			cfg.MinCombined = *fc.MinCombined
		}
		if fc.DefaultYear != nil {
			cfg.DefaultYear = *fc.DefaultYear
		}
		if fc.Thresholds != nil {
			cfg.Thresholds = *fc.Thresholds
		}
	}

	if v := os.Getenv("HTTP_PORT"); v != "" {
		cfg.HTTPPort = v
	}
	if v := os.Getenv("FEED_PATH"); v != "" {
		cfg.FeedPath = v
	}
	if v := os.Getenv("ROSTER_PATH"); v != "" {
		cfg.RosterPath = v
	}
	if v := os.Getenv("MIN_COMBINED"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("MIN_COMBINED: %w", err)
		}
		cfg.MinCombined = n
	}
	if v := os.Getenv("DEFAULT_YEAR"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("DEFAULT_YEAR: %w", err)
		}
		cfg.DefaultYear = n
	}

	if !strings.HasPrefix(cfg.HTTPPort, ":") {
		cfg.HTTPPort = ":" + cfg.HTTPPort
	}
	if cfg.MinCombined < 0 {
		cfg.MinCombined = 0
	}
	if cfg.MinCombined > maxMinCombined {
		cfg.MinCombined = maxMinCombined
	}
	if cfg.Thresholds.CriticalSevere <= 0 || cfg.Thresholds.HighCombined <= 0 || cfg.Thresholds.MediumCombined <= 0 {
		cfg.Thresholds = severity.DefaultThresholds()
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolEnv(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}
