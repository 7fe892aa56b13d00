package detect

import (
	"sort"
	"strings"

	"github.com/KirkDiggler/beyond-tracker/internal/domain/character"
	"github.com/KirkDiggler/beyond-tracker/internal/domain/shared"
)

// genericTokens mark boilerplate descriptions. When two changes collide on a
// path, a description containing none of these beats one that does.
var genericTokens = []string{"field", "value", "changed", "modified"}

// Deduplicate collapses changes that share a field path, typically one from a
// specialized detector and one from the fallback comparator. The survivor is
// the most descriptive entry: longer description first, then the one free of
// generic boilerplate. Order of first appearance is preserved.
func Deduplicate(changes []*character.FieldChange) []*character.FieldChange {
	byPath := make(map[string]int, len(changes))
	var result []*character.FieldChange

	for _, change := range changes {
		if !change.Meaningful() {
			continue
		}
		idx, seen := byPath[change.FieldPath]
		if !seen {
			byPath[change.FieldPath] = len(result)
			result = append(result, change)
			continue
		}
		if moreDescriptive(change, result[idx]) {
			result[idx] = change
		}
	}
	return result
}

func moreDescriptive(candidate, incumbent *character.FieldChange) bool {
	if len(candidate.Description) != len(incumbent.Description) {
		return len(candidate.Description) > len(incumbent.Description)
	}
	return !isGeneric(candidate.Description) && isGeneric(incumbent.Description)
}

func isGeneric(description string) bool {
	lower := strings.ToLower(description)
	for _, token := range genericTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

// GroupByCategory buckets changes by category, preserving input order within
// each bucket except where a domain ordering applies: spell changes list
// forgotten before learned, then by spell level, then alphabetically;
// ability-score changes follow STR/DEX/CON/INT/WIS/CHA with decreases before
// increases within one ability.
func GroupByCategory(changes []*character.FieldChange) map[character.Category][]*character.FieldChange {
	groups := make(map[character.Category][]*character.FieldChange)
	for _, change := range changes {
		groups[change.Category] = append(groups[change.Category], change)
	}

	if spells, ok := groups[character.CategorySpells]; ok {
		sortSpellChanges(spells)
	}
	if abilities, ok := groups[character.CategoryAbilities]; ok {
		sortAbilityChanges(abilities)
	}
	return groups
}

func sortSpellChanges(changes []*character.FieldChange) {
	sort.SliceStable(changes, func(i, j int) bool {
		a, b := changes[i], changes[j]

		aForgotten := a.ChangeType == character.ChangeTypeRemoved
		bForgotten := b.ChangeType == character.ChangeTypeRemoved
		if aForgotten != bForgotten {
			return aForgotten
		}

		aLevel := spellLevel(a)
		bLevel := spellLevel(b)
		if aLevel != bLevel {
			return aLevel < bLevel
		}

		return a.FieldPath < b.FieldPath
	})
}

func spellLevel(change *character.FieldChange) int {
	for _, value := range []any{change.NewValue, change.OldValue} {
		if value == nil {
			continue
		}
		if level, found := Get(value, "level"); found {
			if n, ok := AsInt(level); ok {
				return n
			}
		}
	}
	// slot paths carry the level in the path itself
	if level, ok := parseSlotLevel(strings.TrimPrefix(change.FieldPath, "spell_slots.")); ok {
		return level
	}
	return 0
}

func sortAbilityChanges(changes []*character.FieldChange) {
	sort.SliceStable(changes, func(i, j int) bool {
		a, b := changes[i], changes[j]

		aRank := abilityRank(a.FieldPath)
		bRank := abilityRank(b.FieldPath)
		if aRank != bRank {
			return aRank < bRank
		}

		aDecrease := a.ChangeType == character.ChangeTypeDecremented
		bDecrease := b.ChangeType == character.ChangeTypeDecremented
		if aDecrease != bDecrease {
			return aDecrease
		}
		return a.FieldPath < b.FieldPath
	})
}

func abilityRank(path string) int {
	name := path
	if idx := strings.LastIndex(path, "."); idx >= 0 {
		name = path[idx+1:]
	}
	return shared.AttributeRank(name)
}

// SortChanges orders a final change list priority-descending, then field-path
// ascending. Change-type order within equal priority is unspecified; the
// stable sort keeps input order there.
func SortChanges(changes []*character.FieldChange) {
	sort.SliceStable(changes, func(i, j int) bool {
		if changes[i].Priority != changes[j].Priority {
			return changes[i].Priority > changes[j].Priority
		}
		return changes[i].FieldPath < changes[j].FieldPath
	})
}

// defaultFieldGroups names glob-pattern groups for include/exclude filtering
// by the notification layer.
var defaultFieldGroups = map[string][]string{
	"basic_info":  {"name", "race", "class", "subclass", "background", "alignment"},
	"progression": {"level", "experience", "proficiency_bonus"},
	"combat":      {"max_hp", "current_hp", "temp_hp", "armor_class", "initiative", "speed", "hit_dice*", "death_saves*"},
	"abilities":   {"ability_scores*", "saving_throws*"},
	"skills":      {"skills*", "passive_perception", "proficiencies*"},
	"spells":      {"spells*", "spell_slots*", "spell_save_dc", "spell_attack_bonus"},
	"features":    {"feats*", "features*", "traits*"},
	"equipment":   {"equipment*", "attuned_items*"},
	"inventory":   {"inventory*", "currency*"},
	"social":      {"languages*", "notes*", "backstory*"},
}

// FilterByGroups keeps changes whose path matches an included group and drops
// changes matching an excluded group; exclude wins when both match. Empty
// include means everything is included.
func FilterByGroups(changes []*character.FieldChange, include, exclude []string) []*character.FieldChange {
	return FilterByGroupsWith(defaultFieldGroups, changes, include, exclude)
}

// FilterByGroupsWith is FilterByGroups against a caller-supplied group table.
func FilterByGroupsWith(groups map[string][]string, changes []*character.FieldChange, include, exclude []string) []*character.FieldChange {
	result := make([]*character.FieldChange, 0, len(changes))
	for _, change := range changes {
		if matchesAnyGroup(groups, exclude, change.FieldPath) {
			continue
		}
		if len(include) > 0 && !matchesAnyGroup(groups, include, change.FieldPath) {
			continue
		}
		result = append(result, change)
	}
	return result
}

func matchesAnyGroup(groups map[string][]string, names []string, path string) bool {
	for _, name := range names {
		for _, pattern := range groups[name] {
			if MatchPattern(pattern, path) {
				return true
			}
		}
	}
	return false
}
