package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CHARACTER_IDS", "12345")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []int{12345}, cfg.Tracker.CharacterIDs)
	assert.Equal(t, "@every 15m", cfg.Tracker.Schedule)
	assert.Equal(t, "changelog.db", cfg.Tracker.ChangelogDB)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, "https://character-service.dndbeyond.com/character/v5/character", cfg.Beyond.BaseURL)
	assert.Equal(t, 3, cfg.Beyond.RetryMax)
	assert.Equal(t, "Beyond Tracker", cfg.Discord.Username)
	assert.Equal(t, "medium", cfg.Patterns.DiscordMin)
	assert.Equal(t, "low", cfg.Patterns.ChangelogMin)
	assert.True(t, cfg.Patterns.AutoDiscover)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CHARACTER_IDS", "1, 2,3")
	t.Setenv("REDIS_ADDR", "redis.internal:6380")
	t.Setenv("REDIS_DB", "7")
	t.Setenv("TRACKER_SCHEDULE", "@every 5m")
	t.Setenv("PATTERN_AUTO_DISCOVER", "false")
	t.Setenv("DISCORD_MIN_PRIORITY", "high")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, cfg.Tracker.CharacterIDs)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	assert.Equal(t, 7, cfg.Redis.DB)
	assert.Equal(t, "@every 5m", cfg.Tracker.Schedule)
	assert.False(t, cfg.Patterns.AutoDiscover)
	assert.Equal(t, "high", cfg.Patterns.DiscordMin)
}

func TestLoad_RequiresCharacterIDs(t *testing.T) {
	t.Setenv("CHARACTER_IDS", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHARACTER_IDS")
}

func TestLoad_RejectsMalformedCharacterIDs(t *testing.T) {
	t.Setenv("CHARACTER_IDS", "123,abc")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "abc")
}
