package detect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KirkDiggler/beyond-tracker/internal/domain/character"
	dnderr "github.com/KirkDiggler/beyond-tracker/internal/errors"
)

// Detector is one domain-scoped change detector. Detectors diff normalized
// entity sets extracted from each side, not raw field trees, so an array
// reshuffle in the source payload does not read as a wall of changes.
type Detector interface {
	// Name identifies the detector in logs.
	Name() string

	// Root is the top-level field prefix this detector claims. The fallback
	// comparator skips claimed prefixes.
	Root() string

	// Detect compares the two data trees and returns the changes found. A
	// non-nil error means extraction failed; any changes returned alongside
	// it are still valid partial results.
	Detect(oldData, newData map[string]any) ([]*character.FieldChange, error)
}

// entity is one normalized domain object (a spell, an item, a feat) with
// optional scalar attributes tracked for in-place changes.
type entity struct {
	name  string
	attrs map[string]any
}

func (e entity) attr(key string) any {
	if e.attrs == nil {
		return nil
	}
	return e.attrs[key]
}

// entityDetector is the single parameterized detector template. Every
// list-shaped domain (spells, inventory, feats, equipment, proficiencies)
// instantiates it with its own extraction and description closures instead
// of hand-rolling another diff loop.
type entityDetector struct {
	name     string
	root     string
	category character.Category

	// priority for gained/lost entities
	entityPriority character.Priority

	extract        func(data map[string]any) ([]entity, error)
	describeAdded  func(e entity) string
	describeRemove func(e entity) string

	// optional tracked scalar sub-attribute on common entities
	trackedAttr     string
	trackedPriority character.Priority
	describeTracked func(e entity, oldVal, newVal any) string
}

func (d *entityDetector) Name() string { return d.name }
func (d *entityDetector) Root() string { return d.root }

func (d *entityDetector) Detect(oldData, newData map[string]any) ([]*character.FieldChange, error) {
	oldEntities, oldErr := d.extract(oldData)
	newEntities, newErr := d.extract(newData)
	if oldErr != nil && newErr != nil {
		return nil, dnderr.Wrapf(oldErr, "%s: extraction failed on both sides", d.name)
	}

	oldByName := indexEntities(oldEntities)
	newByName := indexEntities(newEntities)

	var changes []*character.FieldChange

	for _, name := range sortedKeys(newByName) {
		if _, existed := oldByName[name]; existed {
			continue
		}
		e := newByName[name]
		change := character.NewFieldChange(d.entityPath(name), nil, d.entityValue(e), character.ChangeTypeAdded)
		change.Category = d.category
		change.Priority = d.entityPriority
		change.Description = d.describeAdded(e)
		changes = append(changes, change)
	}

	for _, name := range sortedKeys(oldByName) {
		if _, remains := newByName[name]; remains {
			continue
		}
		e := oldByName[name]
		change := character.NewFieldChange(d.entityPath(name), d.entityValue(e), nil, character.ChangeTypeRemoved)
		change.Category = d.category
		change.Priority = d.entityPriority
		change.Description = d.describeRemove(e)
		changes = append(changes, change)
	}

	if d.trackedAttr != "" {
		for _, name := range sortedKeys(newByName) {
			oldEntity, existed := oldByName[name]
			if !existed {
				continue
			}
			newEntity := newByName[name]
			changes = append(changes, d.trackedChange(oldEntity, newEntity)...)
		}
	}

	// an error on one side means that side extracted as empty; report the
	// partial diff but surface the failure to the orchestrator
	if oldErr != nil {
		return changes, dnderr.Wrapf(oldErr, "%s: old-side extraction failed", d.name)
	}
	if newErr != nil {
		return changes, dnderr.Wrapf(newErr, "%s: new-side extraction failed", d.name)
	}
	return changes, nil
}

func (d *entityDetector) trackedChange(oldEntity, newEntity entity) []*character.FieldChange {
	oldVal := oldEntity.attr(d.trackedAttr)
	newVal := newEntity.attr(d.trackedAttr)
	oldNum, oldOK := AsFloat(oldVal)
	newNum, newOK := AsFloat(newVal)
	if !oldOK || !newOK || oldNum == newNum {
		return nil
	}

	changeType := character.ChangeTypeIncremented
	if newNum < oldNum {
		changeType = character.ChangeTypeDecremented
	}

	path := d.entityPath(newEntity.name) + "." + d.trackedAttr
	change := character.NewFieldChange(path, oldVal, newVal, changeType)
	change.Category = d.category
	change.Priority = d.trackedPriority
	change.Description = d.describeTracked(newEntity, oldVal, newVal)
	return []*character.FieldChange{change}
}

func (d *entityDetector) entityPath(name string) string {
	return d.root + "." + name
}

func (d *entityDetector) entityValue(e entity) any {
	if len(e.attrs) > 0 {
		value := map[string]any{"name": e.name}
		for k, v := range e.attrs {
			value[k] = v
		}
		return value
	}
	return e.name
}

func indexEntities(entities []entity) map[string]entity {
	byName := make(map[string]entity, len(entities))
	for _, e := range entities {
		if e.name == "" {
			continue
		}
		byName[e.name] = e
	}
	return byName
}

func sortedKeys(m map[string]entity) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// extractEntityList pulls a list field and normalizes each element to an
// entity. Elements may be plain name strings or structured objects; the
// shared accessor handles either shape. attrKeys lists the scalar attributes
// to carry over when present.
func extractEntityList(data map[string]any, field string, attrKeys ...string) ([]entity, error) {
	raw, ok := Get(data, field)
	if !ok || raw == nil {
		return nil, nil
	}

	list, ok := asSlice(raw)
	if !ok {
		return nil, dnderr.Extractionf("field %q is %T, expected a list", field, raw)
	}

	entities := make([]entity, 0, len(list))
	for _, element := range list {
		if name, isString := element.(string); isString {
			entities = append(entities, entity{name: name})
			continue
		}
		name := GetString(element, "name", "")
		if name == "" {
			continue
		}
		e := entity{name: name}
		for _, key := range attrKeys {
			if v, found := Get(element, key); found {
				if e.attrs == nil {
					e.attrs = make(map[string]any, len(attrKeys))
				}
				e.attrs[key] = v
			}
		}
		entities = append(entities, e)
	}
	return entities, nil
}

// NewSpellDetector diffs the known-spell set. Spells are keyed by name and
// carry their level; slot counts are a different concept handled by the
// spell-slot detector.
func NewSpellDetector() Detector {
	return &entityDetector{
		name:           "spells",
		root:           "spells",
		category:       character.CategorySpells,
		entityPriority: character.PriorityHigh,
		extract: func(data map[string]any) ([]entity, error) {
			return extractEntityList(data, "spells", "level")
		},
		describeAdded: func(e entity) string {
			if level, ok := AsInt(e.attr("level")); ok {
				if level == 0 {
					return fmt.Sprintf("Learned cantrip: %s", e.name)
				}
				return fmt.Sprintf("Learned level %d spell: %s", level, e.name)
			}
			return fmt.Sprintf("Learned spell: %s", e.name)
		},
		describeRemove: func(e entity) string {
			return fmt.Sprintf("Forgot spell: %s", e.name)
		},
	}
}

// NewInventoryDetector diffs carried items by name and tracks quantity on
// items present on both sides.
func NewInventoryDetector() Detector {
	return &entityDetector{
		name:            "inventory",
		root:            "inventory",
		category:        character.CategoryInventory,
		entityPriority:  character.PriorityMedium,
		trackedAttr:     "quantity",
		trackedPriority: character.PriorityLow,
		extract: func(data map[string]any) ([]entity, error) {
			return extractEntityList(data, "inventory", "quantity")
		},
		describeAdded: func(e entity) string {
			if qty, ok := AsInt(e.attr("quantity")); ok && qty > 1 {
				return fmt.Sprintf("Gained item: %s (x%d)", e.name, qty)
			}
			return fmt.Sprintf("Gained item: %s", e.name)
		},
		describeRemove: func(e entity) string {
			return fmt.Sprintf("Lost item: %s", e.name)
		},
		describeTracked: func(e entity, oldVal, newVal any) string {
			return fmt.Sprintf("%s quantity: %v → %v", e.name, oldVal, newVal)
		},
	}
}

// NewFeatDetector diffs the feat list.
func NewFeatDetector() Detector {
	return &entityDetector{
		name:           "feats",
		root:           "feats",
		category:       character.CategoryFeatures,
		entityPriority: character.PriorityHigh,
		extract: func(data map[string]any) ([]entity, error) {
			return extractEntityList(data, "feats")
		},
		describeAdded: func(e entity) string {
			return fmt.Sprintf("Gained feat: %s", e.name)
		},
		describeRemove: func(e entity) string {
			return fmt.Sprintf("Lost feat: %s", e.name)
		},
	}
}

// NewFeatureDetector diffs class and racial features.
func NewFeatureDetector() Detector {
	return &entityDetector{
		name:           "features",
		root:           "features",
		category:       character.CategoryFeatures,
		entityPriority: character.PriorityMedium,
		extract: func(data map[string]any) ([]entity, error) {
			return extractEntityList(data, "features")
		},
		describeAdded: func(e entity) string {
			return fmt.Sprintf("Gained feature: %s", e.name)
		},
		describeRemove: func(e entity) string {
			return fmt.Sprintf("Lost feature: %s", e.name)
		},
	}
}

// NewEquipmentDetector diffs equipped items and tracks the attack bonus on
// weapons equipped on both sides.
func NewEquipmentDetector() Detector {
	return &entityDetector{
		name:            "equipment",
		root:            "equipment",
		category:        character.CategoryEquipment,
		entityPriority:  character.PriorityMedium,
		trackedAttr:     "attack_bonus",
		trackedPriority: character.PriorityMedium,
		extract: func(data map[string]any) ([]entity, error) {
			return extractEntityList(data, "equipment", "slot", "attack_bonus")
		},
		describeAdded: func(e entity) string {
			if slot := GetString(e.attrs, "slot", ""); slot != "" {
				return fmt.Sprintf("Equipped %s: %s", slot, e.name)
			}
			return fmt.Sprintf("Equipped: %s", e.name)
		},
		describeRemove: func(e entity) string {
			return fmt.Sprintf("Unequipped: %s", e.name)
		},
		describeTracked: func(e entity, oldVal, newVal any) string {
			return fmt.Sprintf("%s attack bonus: %s → %s", e.name, signed(oldVal), signed(newVal))
		},
	}
}

// proficiencyDetector diffs proficiency names per proficiency type. The
// proficiencies field is a mapping of type to name list, so it does not fit
// the flat-list template directly; it wraps the template's set logic per
// type instead.
type proficiencyDetector struct{}

// NewProficiencyDetector builds the per-type proficiency detector.
func NewProficiencyDetector() Detector { return &proficiencyDetector{} }

func (d *proficiencyDetector) Name() string { return "proficiencies" }
func (d *proficiencyDetector) Root() string { return "proficiencies" }

func (d *proficiencyDetector) Detect(oldData, newData map[string]any) ([]*character.FieldChange, error) {
	oldByType, oldErr := extractProficiencies(oldData)
	newByType, newErr := extractProficiencies(newData)
	if oldErr != nil && newErr != nil {
		return nil, dnderr.Wrap(oldErr, "proficiencies: extraction failed on both sides")
	}

	types := make(map[string]struct{})
	for t := range oldByType {
		types[t] = struct{}{}
	}
	for t := range newByType {
		types[t] = struct{}{}
	}

	sortedTypes := make([]string, 0, len(types))
	for t := range types {
		sortedTypes = append(sortedTypes, t)
	}
	sort.Strings(sortedTypes)

	var changes []*character.FieldChange
	for _, profType := range sortedTypes {
		oldSet := oldByType[profType]
		newSet := newByType[profType]

		for _, name := range sortedSetKeys(newSet) {
			if _, existed := oldSet[name]; existed {
				continue
			}
			path := fmt.Sprintf("proficiencies.%s.%s", profType, name)
			change := character.NewFieldChange(path, nil, name, character.ChangeTypeAdded)
			change.Category = character.CategorySkills
			change.Priority = character.PriorityMedium
			change.Description = fmt.Sprintf("Gained %s proficiency: %s", strings.TrimSuffix(profType, "s"), name)
			changes = append(changes, change)
		}
		for _, name := range sortedSetKeys(oldSet) {
			if _, remains := newSet[name]; remains {
				continue
			}
			path := fmt.Sprintf("proficiencies.%s.%s", profType, name)
			change := character.NewFieldChange(path, name, nil, character.ChangeTypeRemoved)
			change.Category = character.CategorySkills
			change.Priority = character.PriorityMedium
			change.Description = fmt.Sprintf("Lost %s proficiency: %s", strings.TrimSuffix(profType, "s"), name)
			changes = append(changes, change)
		}
	}

	if oldErr != nil {
		return changes, dnderr.Wrap(oldErr, "proficiencies: old-side extraction failed")
	}
	if newErr != nil {
		return changes, dnderr.Wrap(newErr, "proficiencies: new-side extraction failed")
	}
	return changes, nil
}

func extractProficiencies(data map[string]any) (map[string]map[string]struct{}, error) {
	raw, ok := Get(data, "proficiencies")
	if !ok || raw == nil {
		return nil, nil
	}
	byTypeRaw, ok := asStringMap(raw)
	if !ok {
		return nil, dnderr.Extractionf("proficiencies is %T, expected a mapping", raw)
	}

	byType := make(map[string]map[string]struct{}, len(byTypeRaw))
	for profType, namesRaw := range byTypeRaw {
		names, ok := asSlice(namesRaw)
		if !ok {
			continue
		}
		set := make(map[string]struct{}, len(names))
		for _, nameRaw := range names {
			if name, isString := nameRaw.(string); isString && name != "" {
				set[name] = struct{}{}
			} else if name := GetString(nameRaw, "name", ""); name != "" {
				set[name] = struct{}{}
			}
		}
		byType[profType] = set
	}
	return byType, nil
}

func sortedSetKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
