package beyond

import (
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/KirkDiggler/beyond-tracker/internal/domain/shared"
	"github.com/KirkDiggler/beyond-tracker/internal/rules"
)

// skillAbilities maps each skill to the ability that governs it.
var skillAbilities = map[string]shared.Attribute{
	"acrobatics":      shared.AttributeDexterity,
	"animal_handling": shared.AttributeWisdom,
	"arcana":          shared.AttributeIntelligence,
	"athletics":       shared.AttributeStrength,
	"deception":       shared.AttributeCharisma,
	"history":         shared.AttributeIntelligence,
	"insight":         shared.AttributeWisdom,
	"intimidation":    shared.AttributeCharisma,
	"investigation":   shared.AttributeIntelligence,
	"medicine":        shared.AttributeWisdom,
	"nature":          shared.AttributeIntelligence,
	"perception":      shared.AttributeWisdom,
	"performance":     shared.AttributeCharisma,
	"persuasion":      shared.AttributeCharisma,
	"religion":        shared.AttributeIntelligence,
	"sleight_of_hand": shared.AttributeDexterity,
	"stealth":         shared.AttributeDexterity,
	"survival":        shared.AttributeWisdom,
}

// modifierProfile collects the grants scattered across the payload's
// modifier groups (race, class, background, item, feat) into one view.
type modifierProfile struct {
	skills    map[string]bool
	expertise map[string]bool
	saves     map[string]bool
	buckets   map[string]map[string]struct{}
	languages map[string]struct{}
}

func parseModifiers(data gjson.Result) *modifierProfile {
	profile := &modifierProfile{
		skills:    make(map[string]bool),
		expertise: make(map[string]bool),
		saves:     make(map[string]bool),
		buckets:   make(map[string]map[string]struct{}),
		languages: make(map[string]struct{}),
	}
	data.Get("modifiers").ForEach(func(_, group gjson.Result) bool {
		group.ForEach(func(_, mod gjson.Result) bool {
			subType := mod.Get("subType").String()
			name := mod.Get("friendlySubtypeName").String()
			switch mod.Get("type").String() {
			case "proficiency":
				profile.addProficiency(subType, name)
			case "expertise":
				if skill, ok := skillKey(subType); ok {
					profile.skills[skill] = true
					profile.expertise[skill] = true
				}
			case "language":
				if name != "" {
					profile.languages[name] = struct{}{}
				}
			}
			return true
		})
		return true
	})
	return profile
}

func (p *modifierProfile) addProficiency(subType, name string) {
	if skill, ok := skillKey(subType); ok {
		p.skills[skill] = true
		return
	}
	if ability, isSave := strings.CutSuffix(subType, "-saving-throws"); isSave {
		p.saves[ability] = true
		return
	}
	if name == "" {
		return
	}
	profType := classifyProficiency(subType)
	set := p.buckets[profType]
	if set == nil {
		set = make(map[string]struct{})
		p.buckets[profType] = set
	}
	set[name] = struct{}{}
}

// classifyProficiency sorts a non-skill proficiency subtype into the bucket
// it is reported under. Individual weapons ("longsword") carry no group
// marker in their subtype, so anything unrecognized lands in weapons.
func classifyProficiency(subType string) string {
	switch {
	case strings.Contains(subType, "armor") || subType == "shields":
		return "armor"
	case strings.Contains(subType, "tools") || strings.Contains(subType, "vehicles") ||
		strings.HasSuffix(subType, "-kit") || strings.HasSuffix(subType, "-supplies") ||
		strings.HasSuffix(subType, "-utensils") || strings.HasSuffix(subType, "-set"):
		return "tools"
	default:
		return "weapons"
	}
}

func skillKey(subType string) (string, bool) {
	key := strings.ReplaceAll(subType, "-", "_")
	_, ok := skillAbilities[key]
	return key, ok
}

func (p *modifierProfile) proficiencies() map[string]any {
	if len(p.buckets) == 0 {
		return nil
	}
	out := make(map[string]any, len(p.buckets))
	for profType, set := range p.buckets {
		out[profType] = sortedNames(set)
	}
	return out
}

func (p *modifierProfile) languageList() []string {
	if len(p.languages) == 0 {
		return nil
	}
	return sortedNames(p.languages)
}

// weaponProficient checks the weapon bucket for the item itself or for its
// category. D&D Beyond names single-weapon grants in the singular, so a
// plural form is accepted too.
func (p *modifierProfile) weaponProficient(name, weaponType string) bool {
	set := p.buckets["weapons"]
	if set == nil {
		return false
	}
	if _, ok := set[name]; ok {
		return true
	}
	if _, ok := set[name+"s"]; ok {
		return true
	}
	switch weaponType {
	case "Martial Weapon":
		_, ok := set["Martial Weapons"]
		return ok
	case "Simple Weapon":
		_, ok := set["Simple Weapons"]
		return ok
	}
	return false
}

func deriveSkills(scores map[string]any, level int, profile *modifierProfile) map[string]any {
	skills := make(map[string]any, len(skillAbilities))
	for skill, ability := range skillAbilities {
		skills[skill] = rules.SkillBonus(scoreOf(scores, ability), level, profile.skills[skill], profile.expertise[skill])
	}
	return skills
}

func deriveSaves(scores map[string]any, level int, profile *modifierProfile) map[string]any {
	saves := make(map[string]any, len(shared.Attributes))
	for _, ability := range shared.Attributes {
		saves[string(ability)] = rules.SaveBonus(scoreOf(scores, ability), level, profile.saves[string(ability)])
	}
	return saves
}

func scoreOf(scores map[string]any, ability shared.Attribute) int {
	if score, ok := scores[string(ability)].(int); ok {
		return score
	}
	return 10
}

// rangedAttackType is D&D Beyond's attackType for ranged weapons (melee is 1).
const rangedAttackType = 2

// equippedItems builds the equipment list from inventory entries flagged as
// equipped. Weapons additionally carry their computed attack bonus.
func equippedItems(data gjson.Result, profile *modifierProfile, scores map[string]any, level int) []any {
	var out []any
	data.Get("inventory").ForEach(func(_, item gjson.Result) bool {
		if !item.Get("equipped").Bool() {
			return true
		}
		def := item.Get("definition")
		name := def.Get("name").String()
		if name == "" {
			return true
		}
		entry := map[string]any{"name": name}
		if def.Get("filterType").String() == "Weapon" {
			weapon := rules.Weapon{
				Name:       name,
				Ranged:     def.Get("attackType").Int() == rangedAttackType,
				Finesse:    weaponHasProperty(def, "Finesse"),
				Proficient: profile.weaponProficient(name, def.Get("type").String()),
			}
			entry["attack_bonus"] = rules.WeaponAttackBonus(weapon, intScores(scores), level)
		}
		out = append(out, entry)
		return true
	})
	return out
}

func weaponHasProperty(def gjson.Result, want string) bool {
	found := false
	def.Get("properties").ForEach(func(_, prop gjson.Result) bool {
		if prop.Get("name").String() == want {
			found = true
			return false
		}
		return true
	})
	return found
}

func intScores(scores map[string]any) map[string]int {
	out := make(map[string]int, len(scores))
	for name, value := range scores {
		if score, ok := value.(int); ok {
			out[name] = score
		}
	}
	return out
}

func sortedNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
