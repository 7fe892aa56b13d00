package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	Discord  DiscordConfig
	Redis    RedisConfig
	Beyond   BeyondConfig
	Tracker  TrackerConfig
	Patterns PatternsConfig
}

// DiscordConfig holds Discord delivery configuration
type DiscordConfig struct {
	WebhookID    string
	WebhookToken string
	Username     string // Optional: display name for webhook posts
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// BeyondConfig holds D&D Beyond client configuration
type BeyondConfig struct {
	BaseURL    string
	RetryMax   int
	TimeoutSec int
}

// TrackerConfig holds the polling loop configuration
type TrackerConfig struct {
	CharacterIDs []int
	Schedule     string // cron spec for refresh runs
	ChangelogDB  string // sqlite file path
}

// PatternsConfig holds the priority pattern-table configuration
type PatternsConfig struct {
	FilePath         string
	AutoDiscover     bool
	DiscordMin       string // minimum priority label for Discord delivery
	ChangelogMin     string // minimum priority label for the change log
	DiscoveryDefault string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Discord: DiscordConfig{
			WebhookID:    os.Getenv("DISCORD_WEBHOOK_ID"),
			WebhookToken: os.Getenv("DISCORD_WEBHOOK_TOKEN"),
			Username:     getEnvOrDefault("DISCORD_USERNAME", "Beyond Tracker"),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
		},
		Beyond: BeyondConfig{
			BaseURL:    getEnvOrDefault("BEYOND_API_URL", "https://character-service.dndbeyond.com/character/v5/character"),
			RetryMax:   getEnvAsIntOrDefault("BEYOND_RETRY_MAX", 3),
			TimeoutSec: getEnvAsIntOrDefault("BEYOND_TIMEOUT_SEC", 30),
		},
		Tracker: TrackerConfig{
			Schedule:    getEnvOrDefault("TRACKER_SCHEDULE", "@every 15m"),
			ChangelogDB: getEnvOrDefault("CHANGELOG_DB", "changelog.db"),
		},
		Patterns: PatternsConfig{
			FilePath:         getEnvOrDefault("PATTERN_FILE", "field_patterns.yaml"),
			AutoDiscover:     getEnvAsBoolOrDefault("PATTERN_AUTO_DISCOVER", true),
			DiscordMin:       getEnvOrDefault("DISCORD_MIN_PRIORITY", "medium"),
			ChangelogMin:     getEnvOrDefault("CHANGELOG_MIN_PRIORITY", "low"),
			DiscoveryDefault: getEnvOrDefault("PATTERN_DISCOVERY_DEFAULT", "medium"),
		},
	}

	ids, err := parseCharacterIDs(os.Getenv("CHARACTER_IDS"))
	if err != nil {
		return nil, err
	}
	cfg.Tracker.CharacterIDs = ids

	// Validate required fields
	if len(cfg.Tracker.CharacterIDs) == 0 {
		return nil, fmt.Errorf("CHARACTER_IDS is required")
	}

	return cfg, nil
}

func parseCharacterIDs(raw string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("CHARACTER_IDS contains invalid id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
