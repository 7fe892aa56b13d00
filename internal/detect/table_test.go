package detect_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/beyond-tracker/internal/detect"
	"github.com/KirkDiggler/beyond-tracker/internal/domain/character"
)

func TestPatternTable_Defaults(t *testing.T) {
	table := detect.NewPatternTable(nil)

	priority, ok := table.Resolve("level")
	require.True(t, ok)
	assert.Equal(t, character.PriorityCritical, priority)

	priority, ok = table.Resolve("spells.Fireball")
	require.True(t, ok)
	assert.Equal(t, character.PriorityHigh, priority)

	priority, ok = table.Resolve("currency.gold")
	require.True(t, ok)
	assert.Equal(t, character.PriorityLow, priority)

	_, ok = table.Resolve("never.seen.before")
	assert.False(t, ok)
}

func TestPatternTable_ExactBeatsWildcard(t *testing.T) {
	table := detect.NewPatternTable(&detect.PatternTableConfig{
		Rules: map[string]string{
			"spells.*":       "high",
			"spells.Message": "low",
		},
	})

	priority, ok := table.Resolve("spells.Message")
	require.True(t, ok)
	assert.Equal(t, character.PriorityLow, priority)

	priority, ok = table.Resolve("spells.Fireball")
	require.True(t, ok)
	assert.Equal(t, character.PriorityHigh, priority)
}

func TestPatternTable_SpecificWildcardWins(t *testing.T) {
	table := detect.NewPatternTable(&detect.PatternTableConfig{
		Rules: map[string]string{
			"inventory*":           "medium",
			"inventory.*.quantity": "low",
		},
	})

	priority, ok := table.Resolve("inventory.Rope.quantity")
	require.True(t, ok)
	assert.Equal(t, character.PriorityLow, priority)

	priority, ok = table.Resolve("inventory.Rope")
	require.True(t, ok)
	assert.Equal(t, character.PriorityMedium, priority)
}

func TestPatternTable_IgnoredDistinctFromLow(t *testing.T) {
	table := detect.NewPatternTable(nil)

	priority, ok := table.Resolve("meta.request_id")
	require.True(t, ok)
	assert.Equal(t, character.PriorityIgnored, priority)
	assert.NotEqual(t, character.PriorityLow, priority)
	assert.Less(t, int(priority), int(character.PriorityLow))
}

func TestPatternTable_AutoDiscovery(t *testing.T) {
	file := filepath.Join(t.TempDir(), "patterns.yaml")
	table := detect.NewPatternTable(&detect.PatternTableConfig{
		AutoDiscover:     true,
		DiscoveryDefault: character.PriorityLow,
		FilePath:         file,
	})

	priority := table.Discover("brand.new.field")
	assert.Equal(t, character.PriorityLow, priority)

	// registered: now resolvable
	resolved, ok := table.Resolve("brand.new.field")
	require.True(t, ok)
	assert.Equal(t, character.PriorityLow, resolved)

	// persisted
	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "brand.new.field")
}

func TestPatternTable_NoRediscoveryForCoveredPaths(t *testing.T) {
	file := filepath.Join(t.TempDir(), "patterns.yaml")
	table := detect.NewPatternTable(&detect.PatternTableConfig{
		AutoDiscover: true,
		FilePath:     file,
	})

	// spells.* already covers this; discovery must not register an exact
	// entry or rewrite the file
	priority := table.Discover("spells.Fireball")
	assert.Equal(t, character.PriorityHigh, priority)

	_, err := os.Stat(file)
	assert.True(t, os.IsNotExist(err), "covered path should not trigger persistence")
}

func TestPatternTable_SnapshotIsolation(t *testing.T) {
	table := detect.NewPatternTable(&detect.PatternTableConfig{
		AutoDiscover:     true,
		DiscoveryDefault: character.PriorityHigh,
	})

	snap := table.Snapshot()
	table.Discover("added.after.snapshot")

	_, ok := snap.Resolve("added.after.snapshot")
	assert.False(t, ok, "snapshot must not see later registrations")

	_, ok = table.Resolve("added.after.snapshot")
	assert.True(t, ok)
}

func TestLoadPatternTableFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "patterns.yaml")
	require.NoError(t, os.WriteFile(file, []byte("priorities:\n  level: critical\n  \"spells.*\": high\n"), 0o644))

	rules, err := detect.LoadPatternTableFile(file)
	require.NoError(t, err)
	assert.Equal(t, "critical", rules["level"])
	assert.Equal(t, "high", rules["spells.*"])

	// missing file is not an error
	rules, err = detect.LoadPatternTableFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Nil(t, rules)
}
