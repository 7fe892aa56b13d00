package detect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KirkDiggler/beyond-tracker/internal/domain/character"
	dnderr "github.com/KirkDiggler/beyond-tracker/internal/errors"
)

// spellSlotDetector diffs spell-slot counts per slot level. Slots exist for
// levels 1 through 9 only: cantrips are level 0 and never have slots, so a
// level-0 entry in the data is a payload artifact and is never reported.
type spellSlotDetector struct{}

// NewSpellSlotDetector builds the spell-slot detector.
func NewSpellSlotDetector() Detector { return &spellSlotDetector{} }

func (d *spellSlotDetector) Name() string { return "spell_slots" }
func (d *spellSlotDetector) Root() string { return "spell_slots" }

func (d *spellSlotDetector) Detect(oldData, newData map[string]any) ([]*character.FieldChange, error) {
	oldSlots, oldErr := extractSpellSlots(oldData)
	newSlots, newErr := extractSpellSlots(newData)
	if oldErr != nil && newErr != nil {
		return nil, dnderr.Wrap(oldErr, "spell_slots: extraction failed on both sides")
	}

	var changes []*character.FieldChange
	for level := 1; level <= 9; level++ {
		oldCount := oldSlots[level]
		newCount := newSlots[level]
		// equal counts include the both-zero case, so absent levels on
		// both sides report nothing
		if oldCount == newCount {
			continue
		}

		changeType := character.ChangeTypeIncremented
		if newCount < oldCount {
			changeType = character.ChangeTypeDecremented
		}

		path := fmt.Sprintf("spell_slots.level_%d", level)
		change := character.NewFieldChange(path, oldCount, newCount, changeType)
		change.Category = character.CategorySpells
		change.Priority = character.PriorityMedium
		change.Description = fmt.Sprintf("Level %d spell slots: %d → %d", level, oldCount, newCount)
		changes = append(changes, change)
	}

	if oldErr != nil {
		return changes, dnderr.Wrap(oldErr, "spell_slots: old-side extraction failed")
	}
	if newErr != nil {
		return changes, dnderr.Wrap(newErr, "spell_slots: new-side extraction failed")
	}
	return changes, nil
}

// extractSpellSlots normalizes the spell_slots field to level -> count.
// Accepted key shapes: "level_3", "3". Level 0 and out-of-range levels are
// dropped here so no downstream code ever sees them.
func extractSpellSlots(data map[string]any) (map[int]int, error) {
	slots := make(map[int]int)

	raw, ok := Get(data, "spell_slots")
	if !ok || raw == nil {
		return slots, nil
	}
	m, ok := asStringMap(raw)
	if !ok {
		return slots, dnderr.Extractionf("spell_slots is %T, expected a mapping", raw)
	}

	for key, valueRaw := range m {
		level, ok := parseSlotLevel(key)
		if !ok || level < 1 || level > 9 {
			continue
		}
		count, isNum := AsInt(valueRaw)
		if !isNum {
			// structured slot entries track max and used separately
			if v, found := Get(valueRaw, "max"); found {
				count, isNum = AsInt(v)
			}
			if !isNum {
				continue
			}
		}
		slots[level] = count
	}
	return slots, nil
}

func parseSlotLevel(key string) (int, bool) {
	key = strings.TrimPrefix(strings.ToLower(key), "level_")
	level, err := strconv.Atoi(key)
	if err != nil {
		return 0, false
	}
	return level, true
}
