package detect

import (
	"strings"

	"github.com/KirkDiggler/beyond-tracker/internal/domain/character"
)

// categoryRule binds a field-path pattern to a semantic category. Rules are
// ordered: the first anchored match wins, so narrow rules sit above broad
// ones.
type categoryRule struct {
	pattern  string
	category character.Category
}

var defaultCategoryRules = []categoryRule{
	{"name", character.CategoryBasicInfo},
	{"race", character.CategoryBasicInfo},
	{"class", character.CategoryBasicInfo},
	{"subclass", character.CategoryBasicInfo},
	{"background", character.CategoryBasicInfo},
	{"alignment", character.CategoryBasicInfo},
	{"level", character.CategoryProgression},
	{"experience", character.CategoryProgression},
	{"proficiency_bonus", character.CategoryProgression},
	{"ability_scores.*", character.CategoryAbilities},
	{"saving_throws.*", character.CategoryAbilities},
	{"skills.*", character.CategorySkills},
	{"passive_perception", character.CategorySkills},
	{"max_hp", character.CategoryCombat},
	{"current_hp", character.CategoryCombat},
	{"temp_hp", character.CategoryCombat},
	{"armor_class", character.CategoryCombat},
	{"initiative", character.CategoryCombat},
	{"speed", character.CategoryCombat},
	{"hit_dice*", character.CategoryCombat},
	{"death_saves.*", character.CategoryCombat},
	{"spells*", character.CategorySpells},
	{"spell_slots.*", character.CategorySpells},
	{"spell_save_dc", character.CategorySpells},
	{"spell_attack_bonus", character.CategorySpells},
	{"spellcasting*", character.CategorySpells},
	{"feats*", character.CategoryFeatures},
	{"features*", character.CategoryFeatures},
	{"traits*", character.CategoryFeatures},
	{"equipment*", character.CategoryEquipment},
	{"attuned_items*", character.CategoryEquipment},
	{"inventory*", character.CategoryInventory},
	{"currency.*", character.CategoryInventory},
	{"proficiencies*", character.CategorySkills},
	{"languages*", character.CategorySocial},
	{"notes*", character.CategorySocial},
	{"backstory*", character.CategorySocial},
}

// substring fallbacks used only when no anchored rule matches. Kept separate
// from the anchored table: priority resolution must never use contains
// matching, but category inference for odd fallback paths still does.
var containsCategoryHints = []categoryRule{
	{"spell", character.CategorySpells},
	{"slot", character.CategorySpells},
	{"hp", character.CategoryCombat},
	{"armor", character.CategoryCombat},
	{"attack", character.CategoryCombat},
	{"damage", character.CategoryCombat},
	{"skill", character.CategorySkills},
	{"proficien", character.CategorySkills},
	{"ability", character.CategoryAbilities},
	{"inventory", character.CategoryInventory},
	{"currency", character.CategoryInventory},
	{"gold", character.CategoryInventory},
	{"item", character.CategoryInventory},
	{"equip", character.CategoryEquipment},
	{"feat", character.CategoryFeatures},
	{"level", character.CategoryProgression},
	{"xp", character.CategoryProgression},
}

// numericFieldPatterns is the allowlist governing delta classification. Being
// numerically typed is not enough: plenty of fields carry numbers that should
// never read as "increased by N" (internal ids, versions, dates).
var numericFieldPatterns = []string{
	"level",
	"experience",
	"proficiency_bonus",
	"max_hp",
	"current_hp",
	"temp_hp",
	"armor_class",
	"initiative",
	"speed",
	"passive_perception",
	"spell_save_dc",
	"spell_attack_bonus",
	"ability_scores.*",
	"saving_throws.*",
	"skills.*",
	"spell_slots.*",
	"currency.*",
	"inventory[*].quantity",
	"hit_dice.*",
}

// MatchPattern reports whether path matches pattern. A '*' matches any run
// of characters including path separators, and the match is anchored at both
// ends. Patterns without '*' require exact equality.
func MatchPattern(pattern, path string) bool {
	if !strings.Contains(pattern, "*") {
		return pattern == path
	}

	parts := strings.Split(pattern, "*")
	if !strings.HasPrefix(path, parts[0]) {
		return false
	}
	rest := path[len(parts[0]):]
	for _, part := range parts[1 : len(parts)-1] {
		idx := strings.Index(rest, part)
		if idx < 0 {
			return false
		}
		rest = rest[idx+len(part):]
	}
	return strings.HasSuffix(rest, parts[len(parts)-1])
}

// PatternSpecificity ranks wildcard patterns: fewer wildcards beats more,
// then longer literal text beats shorter. Higher is more specific.
func PatternSpecificity(pattern string) int {
	stars := strings.Count(pattern, "*")
	return (10-stars)*1000 + (len(pattern) - stars)
}

// CategoryForPath resolves the semantic category of a field path using the
// anchored rule table, most specific match first.
func CategoryForPath(path string) character.Category {
	var best character.Category
	bestScore := -1
	for _, rule := range defaultCategoryRules {
		if !MatchPattern(rule.pattern, path) {
			continue
		}
		score := PatternSpecificity(rule.pattern)
		if !strings.Contains(rule.pattern, "*") {
			// exact match always wins
			return rule.category
		}
		if score > bestScore {
			bestScore = score
			best = rule.category
		}
	}
	if bestScore >= 0 {
		return best
	}
	return character.CategoryMetadata
}

// InferCategory is the legacy contains-mode lookup used by the fallback
// comparator for paths the anchored table has never seen.
func InferCategory(path string) character.Category {
	if category := CategoryForPath(path); category != character.CategoryMetadata {
		return category
	}
	lower := strings.ToLower(path)
	for _, hint := range containsCategoryHints {
		if strings.Contains(lower, hint.pattern) {
			return hint.category
		}
	}
	return character.CategoryMetadata
}

// IsNumericField reports whether a path is on the delta allowlist.
func IsNumericField(path string) bool {
	for _, pattern := range numericFieldPatterns {
		if MatchPattern(pattern, path) {
			return true
		}
	}
	return false
}

// ClassifyNumeric picks the change type for a numeric field pair. Fields off
// the allowlist, and pairs that fail coercion, degrade to modified.
func ClassifyNumeric(path string, oldValue, newValue any) character.ChangeType {
	if !IsNumericField(path) {
		return character.ChangeTypeModified
	}
	oldNum, oldOK := AsFloat(oldValue)
	newNum, newOK := AsFloat(newValue)
	if !oldOK || !newOK {
		return character.ChangeTypeModified
	}
	switch {
	case newNum > oldNum:
		return character.ChangeTypeIncremented
	case newNum < oldNum:
		return character.ChangeTypeDecremented
	default:
		return character.ChangeTypeModified
	}
}
