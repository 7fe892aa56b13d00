package detect

import (
	"fmt"

	"github.com/KirkDiggler/beyond-tracker/internal/domain/character"
)

// basicStatField describes one scalar stat the basic-stats detector tracks.
type basicStatField struct {
	field    string
	category character.Category
	priority character.Priority
	numeric  bool
	describe func(oldVal, newVal any) string
}

var basicStatFields = []basicStatField{
	{
		field:    "name",
		category: character.CategoryBasicInfo,
		priority: character.PriorityHigh,
		describe: func(oldVal, newVal any) string {
			return fmt.Sprintf("Name changed: %v → %v", oldVal, newVal)
		},
	},
	{
		field:    "race",
		category: character.CategoryBasicInfo,
		priority: character.PriorityMedium,
		describe: func(oldVal, newVal any) string {
			return fmt.Sprintf("Race changed: %v → %v", oldVal, newVal)
		},
	},
	{
		field:    "class",
		category: character.CategoryBasicInfo,
		priority: character.PriorityHigh,
		describe: func(oldVal, newVal any) string {
			return fmt.Sprintf("Class changed: %v → %v", oldVal, newVal)
		},
	},
	{
		field:    "subclass",
		category: character.CategoryBasicInfo,
		priority: character.PriorityHigh,
		describe: func(oldVal, newVal any) string {
			return fmt.Sprintf("Subclass changed: %v → %v", oldVal, newVal)
		},
	},
	{
		field:    "level",
		category: character.CategoryProgression,
		priority: character.PriorityCritical,
		numeric:  true,
		describe: func(oldVal, newVal any) string {
			oldNum, _ := AsFloat(oldVal)
			newNum, _ := AsFloat(newVal)
			if newNum > oldNum {
				return fmt.Sprintf("Level up! %v → %v", oldVal, newVal)
			}
			return fmt.Sprintf("Level changed: %v → %v", oldVal, newVal)
		},
	},
	{
		field:    "experience",
		category: character.CategoryProgression,
		priority: character.PriorityLow,
		numeric:  true,
		describe: func(oldVal, newVal any) string {
			return fmt.Sprintf("Experience: %v → %v", oldVal, newVal)
		},
	},
	{
		field:    "proficiency_bonus",
		category: character.CategoryProgression,
		priority: character.PriorityHigh,
		numeric:  true,
		describe: func(oldVal, newVal any) string {
			return fmt.Sprintf("Proficiency bonus: %s → %s", signed(oldVal), signed(newVal))
		},
	},
	{
		field:    "max_hp",
		category: character.CategoryCombat,
		priority: character.PriorityCritical,
		numeric:  true,
		describe: func(oldVal, newVal any) string {
			return fmt.Sprintf("Max HP: %v → %v", oldVal, newVal)
		},
	},
	{
		field:    "current_hp",
		category: character.CategoryCombat,
		priority: character.PriorityMedium,
		numeric:  true,
		describe: func(oldVal, newVal any) string {
			return fmt.Sprintf("Current HP: %v → %v", oldVal, newVal)
		},
	},
	{
		field:    "temp_hp",
		category: character.CategoryCombat,
		priority: character.PriorityLow,
		numeric:  true,
		describe: func(oldVal, newVal any) string {
			return fmt.Sprintf("Temporary HP: %v → %v", oldVal, newVal)
		},
	},
	{
		field:    "armor_class",
		category: character.CategoryCombat,
		priority: character.PriorityHigh,
		numeric:  true,
		describe: func(oldVal, newVal any) string {
			return fmt.Sprintf("AC changed: %v → %v", oldVal, newVal)
		},
	},
	{
		field:    "initiative",
		category: character.CategoryCombat,
		priority: character.PriorityMedium,
		numeric:  true,
		describe: func(oldVal, newVal any) string {
			return fmt.Sprintf("Initiative: %s → %s", signed(oldVal), signed(newVal))
		},
	},
	{
		field:    "speed",
		category: character.CategoryCombat,
		priority: character.PriorityMedium,
		numeric:  true,
		describe: func(oldVal, newVal any) string {
			return fmt.Sprintf("Speed: %v → %v", oldVal, newVal)
		},
	},
}

// basicStatsDetector tracks the headline scalar stats. It also owns the
// level-up HP rule: when max HP rises by some delta and current HP rises by
// exactly the same delta from a full-HP character, the current-HP movement
// is a derived side-effect of the max-HP movement and only the max-HP change
// is reported.
type basicStatsDetector struct{}

// NewBasicStatsDetector builds the basic-stats detector.
func NewBasicStatsDetector() Detector { return &basicStatsDetector{} }

func (d *basicStatsDetector) Name() string { return "basic_stats" }

// Root claims no prefix: each tracked field is excluded from the fallback
// comparator individually via ClaimedFields.
func (d *basicStatsDetector) Root() string { return "" }

// ClaimedFields lists the scalar paths this detector owns.
func (d *basicStatsDetector) ClaimedFields() []string {
	fields := make([]string, len(basicStatFields))
	for i, stat := range basicStatFields {
		fields[i] = stat.field
	}
	return fields
}

func (d *basicStatsDetector) Detect(oldData, newData map[string]any) ([]*character.FieldChange, error) {
	suppressCurrentHP := d.isDerivedCurrentHP(oldData, newData)

	var changes []*character.FieldChange
	for _, stat := range basicStatFields {
		if stat.field == "current_hp" && suppressCurrentHP {
			continue
		}

		oldVal, hadOld := Get(oldData, stat.field)
		newVal, hasNew := Get(newData, stat.field)
		if !hadOld && !hasNew {
			continue
		}
		if !MateriallyDifferent(oldVal, newVal) {
			continue
		}

		changeType := character.ChangeTypeModified
		switch {
		case !hadOld || oldVal == nil:
			changeType = character.ChangeTypeAdded
		case !hasNew || newVal == nil:
			changeType = character.ChangeTypeRemoved
		case stat.numeric:
			changeType = ClassifyNumeric(stat.field, oldVal, newVal)
		}

		change := character.NewFieldChange(stat.field, oldVal, newVal, changeType)
		change.Category = stat.category
		change.Priority = stat.priority
		if changeType == character.ChangeTypeAdded {
			change.Description = fmt.Sprintf("%s recorded: %v", titleCase(stat.field), newVal)
		} else if changeType == character.ChangeTypeRemoved {
			change.Description = fmt.Sprintf("%s removed (was %v)", titleCase(stat.field), oldVal)
		} else {
			change.Description = stat.describe(oldVal, newVal)
		}
		changes = append(changes, change)
	}
	return changes, nil
}

// isDerivedCurrentHP applies the level-up suppression rule: at full HP, a max
// increase drags current along with it.
func (d *basicStatsDetector) isDerivedCurrentHP(oldData, newData map[string]any) bool {
	oldMax, ok := numericStat(oldData, "max_hp")
	if !ok {
		return false
	}
	newMax, ok := numericStat(newData, "max_hp")
	if !ok {
		return false
	}
	oldCurrent, ok := numericStat(oldData, "current_hp")
	if !ok {
		return false
	}
	newCurrent, ok := numericStat(newData, "current_hp")
	if !ok {
		return false
	}

	maxDelta := newMax - oldMax
	currentDelta := newCurrent - oldCurrent
	wasAtFull := oldCurrent == oldMax
	return maxDelta > 0 && currentDelta == maxDelta && wasAtFull
}

func numericStat(data map[string]any, field string) (float64, bool) {
	raw, ok := Get(data, field)
	if !ok {
		return 0, false
	}
	return AsFloat(raw)
}
