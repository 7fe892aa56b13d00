package beyond

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/KirkDiggler/beyond-tracker/internal/domain/shared"
	dnderr "github.com/KirkDiggler/beyond-tracker/internal/errors"
	"github.com/KirkDiggler/beyond-tracker/internal/rules"
)

// statIDs maps D&D Beyond stat ids (1-6) to ability names.
var statIDs = map[int64]shared.Attribute{
	1: shared.AttributeStrength,
	2: shared.AttributeDexterity,
	3: shared.AttributeConstitution,
	4: shared.AttributeIntelligence,
	5: shared.AttributeWisdom,
	6: shared.AttributeCharisma,
}

// Normalize converts a raw D&D Beyond character payload into the flat domain
// vocabulary the detectors key on. The payload wraps everything under "data";
// a payload without it is rejected rather than guessed at.
func Normalize(payload []byte) (map[string]any, error) {
	root := gjson.ParseBytes(payload)
	data := root.Get("data")
	if !data.Exists() {
		// some endpoints return the character unwrapped
		if root.Get("name").Exists() {
			data = root
		} else {
			return nil, dnderr.Extractionf("payload has no character data")
		}
	}

	out := map[string]any{
		"name": data.Get("name").String(),
	}

	level := characterLevel(data)
	out["level"] = level
	out["proficiency_bonus"] = rules.ProficiencyBonus(level)

	if race := data.Get("race.fullName"); race.Exists() {
		out["race"] = race.String()
	}
	if classes := data.Get("classes"); classes.Exists() {
		names := make([]string, 0, 2)
		classes.ForEach(func(_, class gjson.Result) bool {
			if name := class.Get("definition.name").String(); name != "" {
				names = append(names, name)
			}
			return true
		})
		if len(names) > 0 {
			out["class"] = strings.Join(names, "/")
		}
		if sub := classes.Get("0.subclassDefinition.name"); sub.Exists() {
			out["subclass"] = sub.String()
		}
	}

	scores := abilityScores(data)
	out["ability_scores"] = scores
	normalizeHitPoints(data, out)

	// skill, save, and passive bonuses are derived rather than scraped; the
	// payload only carries the proficiency grants they are computed from
	profile := parseModifiers(data)
	if len(scores) > 0 {
		out["skills"] = deriveSkills(scores, level, profile)
		out["saving_throws"] = deriveSaves(scores, level, profile)
		out["passive_perception"] = rules.PassivePerception(
			scoreOf(scores, shared.AttributeWisdom), level, profile.skills["perception"])
	}
	if profs := profile.proficiencies(); len(profs) > 0 {
		out["proficiencies"] = profs
	}
	if langs := profile.languageList(); len(langs) > 0 {
		out["languages"] = langs
	}

	if ac := data.Get("armorClass"); ac.Exists() {
		out["armor_class"] = int(ac.Int())
	}
	if xp := data.Get("currentXp"); xp.Exists() {
		out["experience"] = int(xp.Int())
	}

	out["currency"] = currencies(data)
	out["inventory"] = inventory(data)
	if equipped := equippedItems(data, profile, scores, level); len(equipped) > 0 {
		out["equipment"] = equipped
	}
	out["spells"] = spells(data)
	if slots := spellSlots(data); len(slots) > 0 {
		out["spell_slots"] = slots
	}
	if feats := feats(data); len(feats) > 0 {
		out["feats"] = feats
	}

	return out, nil
}

func characterLevel(data gjson.Result) int {
	total := 0
	data.Get("classes").ForEach(func(_, class gjson.Result) bool {
		total += int(class.Get("level").Int())
		return true
	})
	if total == 0 {
		total = 1
	}
	return total
}

func abilityScores(data gjson.Result) map[string]any {
	scores := make(map[string]any, len(statIDs))
	data.Get("stats").ForEach(func(_, stat gjson.Result) bool {
		name, ok := statIDs[stat.Get("id").Int()]
		if !ok {
			return true
		}
		scores[string(name)] = int(stat.Get("value").Int())
		return true
	})
	data.Get("overrideStats").ForEach(func(_, stat gjson.Result) bool {
		name, ok := statIDs[stat.Get("id").Int()]
		if !ok || stat.Get("value").Type == gjson.Null {
			return true
		}
		scores[string(name)] = int(stat.Get("value").Int())
		return true
	})
	return scores
}

func normalizeHitPoints(data gjson.Result, out map[string]any) {
	base := data.Get("baseHitPoints").Int()
	bonus := data.Get("bonusHitPoints").Int()
	override := data.Get("overrideHitPoints")

	maxHP := base + bonus
	if override.Exists() && override.Type != gjson.Null {
		maxHP = override.Int()
	}
	out["max_hp"] = int(maxHP)
	out["current_hp"] = int(maxHP - data.Get("removedHitPoints").Int())
	if temp := data.Get("temporaryHitPoints"); temp.Exists() && temp.Int() != 0 {
		out["temp_hp"] = int(temp.Int())
	}
}

func currencies(data gjson.Result) map[string]any {
	coins := map[string]string{
		"cp": "copper",
		"sp": "silver",
		"ep": "electrum",
		"gp": "gold",
		"pp": "platinum",
	}
	out := make(map[string]any, len(coins))
	for key, name := range coins {
		out[name] = int(data.Get("currencies." + key).Int())
	}
	return out
}

func inventory(data gjson.Result) []any {
	var items []any
	data.Get("inventory").ForEach(func(_, item gjson.Result) bool {
		name := item.Get("definition.name").String()
		if name == "" {
			return true
		}
		quantity := item.Get("quantity").Int()
		if quantity == 0 {
			quantity = 1
		}
		entry := map[string]any{
			"name":     name,
			"quantity": int(quantity),
		}
		if item.Get("equipped").Bool() {
			entry["equipped"] = true
		}
		items = append(items, entry)
		return true
	})
	return items
}

func spells(data gjson.Result) []any {
	var known []any
	seen := make(map[string]struct{})

	add := func(spell gjson.Result) bool {
		name := spell.Get("definition.name").String()
		if name == "" {
			return true
		}
		if _, dup := seen[name]; dup {
			return true
		}
		seen[name] = struct{}{}
		known = append(known, map[string]any{
			"name":  name,
			"level": int(spell.Get("definition.level").Int()),
		})
		return true
	}

	data.Get("classSpells").ForEach(func(_, classSpells gjson.Result) bool {
		classSpells.Get("spells").ForEach(func(_, spell gjson.Result) bool {
			return add(spell)
		})
		return true
	})
	// racial and feat spells live in a parallel structure
	data.Get("spells").ForEach(func(_, group gjson.Result) bool {
		if group.IsArray() {
			group.ForEach(func(_, spell gjson.Result) bool {
				return add(spell)
			})
		}
		return true
	})
	return known
}

// spellSlots emits level_1 through level_9 only; D&D Beyond reports slot
// rows for levels a character cannot cast at, and cantrips have no slots.
func spellSlots(data gjson.Result) map[string]any {
	slots := make(map[string]any)
	data.Get("spellSlots").ForEach(func(_, slot gjson.Result) bool {
		level := int(slot.Get("level").Int())
		available := int(slot.Get("available").Int())
		if level < 1 || level > 9 || available == 0 {
			return true
		}
		slots[slotKey(level)] = available
		return true
	})
	return slots
}

func slotKey(level int) string {
	return "level_" + strconv.Itoa(level)
}

func feats(data gjson.Result) []any {
	var out []any
	data.Get("feats").ForEach(func(_, feat gjson.Result) bool {
		if name := feat.Get("definition.name").String(); name != "" {
			out = append(out, name)
		}
		return true
	})
	return out
}
