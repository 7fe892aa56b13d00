package detect

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KirkDiggler/beyond-tracker/internal/domain/character"
	"github.com/KirkDiggler/beyond-tracker/internal/domain/shared"
	dnderr "github.com/KirkDiggler/beyond-tracker/internal/errors"
)

// numericMapDetector diffs a keyed mapping of numeric values (ability scores,
// skill bonuses, currency). Keys appearing on one side only are reported as
// added or removed; shared keys produce delta changes when the values differ
// by at least the materiality threshold.
type numericMapDetector struct {
	name     string
	field    string
	category character.Category
	priority character.Priority

	// minimum delta magnitude worth reporting; zero reports everything
	threshold float64

	// sortKeys orders keys for deterministic emission; nil sorts
	// alphabetically
	sortKeys func(keys []string)

	describe func(key string, oldVal, newVal any) string
}

func (d *numericMapDetector) Name() string { return d.name }
func (d *numericMapDetector) Root() string { return d.field }

func (d *numericMapDetector) Detect(oldData, newData map[string]any) ([]*character.FieldChange, error) {
	oldValues, oldErr := extractNumericMap(oldData, d.field)
	newValues, newErr := extractNumericMap(newData, d.field)
	if oldErr != nil && newErr != nil {
		return nil, dnderr.Wrapf(oldErr, "%s: extraction failed on both sides", d.name)
	}

	keys := make(map[string]struct{}, len(oldValues)+len(newValues))
	for k := range oldValues {
		keys[k] = struct{}{}
	}
	for k := range newValues {
		keys[k] = struct{}{}
	}
	ordered := make([]string, 0, len(keys))
	for k := range keys {
		ordered = append(ordered, k)
	}
	if d.sortKeys != nil {
		d.sortKeys(ordered)
	} else {
		sort.Strings(ordered)
	}

	var changes []*character.FieldChange
	for _, key := range ordered {
		oldVal, hadOld := oldValues[key]
		newVal, hasNew := newValues[key]
		path := d.field + "." + key

		switch {
		case !hadOld:
			change := character.NewFieldChange(path, nil, newVal, character.ChangeTypeAdded)
			change.Category = d.category
			change.Priority = d.priority
			change.Description = d.describe(key, nil, newVal)
			changes = append(changes, change)
		case !hasNew:
			change := character.NewFieldChange(path, oldVal, nil, character.ChangeTypeRemoved)
			change.Category = d.category
			change.Priority = d.priority
			change.Description = d.describe(key, oldVal, nil)
			changes = append(changes, change)
		default:
			delta := newVal - oldVal
			if delta == 0 || math.Abs(delta) < d.threshold {
				continue
			}
			changeType := character.ChangeTypeIncremented
			if delta < 0 {
				changeType = character.ChangeTypeDecremented
			}
			change := character.NewFieldChange(path, oldVal, newVal, changeType)
			change.Category = d.category
			change.Priority = d.priority
			change.Description = d.describe(key, oldVal, newVal)
			changes = append(changes, change)
		}
	}

	if oldErr != nil {
		return changes, dnderr.Wrapf(oldErr, "%s: old-side extraction failed", d.name)
	}
	if newErr != nil {
		return changes, dnderr.Wrapf(newErr, "%s: new-side extraction failed", d.name)
	}
	return changes, nil
}

func extractNumericMap(data map[string]any, field string) (map[string]float64, error) {
	raw, ok := Get(data, field)
	if !ok || raw == nil {
		return nil, nil
	}
	m, ok := asStringMap(raw)
	if !ok {
		return nil, dnderr.Extractionf("field %q is %T, expected a mapping", field, raw)
	}

	values := make(map[string]float64, len(m))
	for key, valueRaw := range m {
		if f, isNum := AsFloat(valueRaw); isNum {
			values[key] = f
			continue
		}
		// structured entries keep the score under a conventional sub-key
		if v, found := Get(valueRaw, "score"); found {
			if f, isNum := AsFloat(v); isNum {
				values[key] = f
				continue
			}
		}
		if v, found := Get(valueRaw, "value"); found {
			if f, isNum := AsFloat(v); isNum {
				values[key] = f
			}
		}
	}
	return values, nil
}

// NewAbilityScoreDetector diffs the six ability scores in canonical order.
func NewAbilityScoreDetector() Detector {
	return &numericMapDetector{
		name:     "ability_scores",
		field:    "ability_scores",
		category: character.CategoryAbilities,
		priority: character.PriorityHigh,
		sortKeys: func(keys []string) {
			sort.SliceStable(keys, func(i, j int) bool {
				return shared.AttributeRank(keys[i]) < shared.AttributeRank(keys[j])
			})
		},
		describe: func(key string, oldVal, newVal any) string {
			label := titleCase(key)
			oldNum, _ := AsFloat(oldVal)
			newNum, _ := AsFloat(newVal)
			switch {
			case oldVal == nil:
				return fmt.Sprintf("%s score recorded: %v", label, newVal)
			case newVal == nil:
				return fmt.Sprintf("%s score removed (was %v)", label, oldVal)
			case newNum > oldNum:
				return fmt.Sprintf("%s increased: %v → %v", label, oldVal, newVal)
			default:
				return fmt.Sprintf("%s decreased: %v → %v", label, oldVal, newVal)
			}
		},
	}
}

// NewSkillDetector diffs skill bonuses.
func NewSkillDetector() Detector {
	return &numericMapDetector{
		name:     "skills",
		field:    "skills",
		category: character.CategorySkills,
		priority: character.PriorityMedium,
		describe: func(key string, oldVal, newVal any) string {
			label := titleCase(key)
			switch {
			case oldVal == nil:
				return fmt.Sprintf("%s bonus recorded: %s", label, signed(newVal))
			case newVal == nil:
				return fmt.Sprintf("%s bonus removed (was %s)", label, signed(oldVal))
			default:
				return fmt.Sprintf("%s bonus: %s → %s", label, signed(oldVal), signed(newVal))
			}
		},
	}
}

// currencyMateriality is the minimum coin delta worth reporting. Fractional
// drift below one unit comes from conversion rounding, not play.
const currencyMateriality = 1.0

// NewCurrencyDetector diffs coin amounts, suppressing sub-unit noise.
func NewCurrencyDetector() Detector {
	return &numericMapDetector{
		name:      "currency",
		field:     "currency",
		category:  character.CategoryInventory,
		priority:  character.PriorityLow,
		threshold: currencyMateriality,
		describe: func(key string, oldVal, newVal any) string {
			label := titleCase(key)
			switch {
			case oldVal == nil:
				return fmt.Sprintf("%s: gained %v", label, newVal)
			case newVal == nil:
				return fmt.Sprintf("%s: spent remaining %v", label, oldVal)
			default:
				return fmt.Sprintf("%s: %v → %v", label, oldVal, newVal)
			}
		},
	}
}

func titleCase(key string) string {
	key = strings.ReplaceAll(key, "_", " ")
	if key == "" {
		return key
	}
	return strings.ToUpper(key[:1]) + key[1:]
}

func signed(value any) string {
	if f, ok := AsFloat(value); ok {
		if f >= 0 {
			return fmt.Sprintf("+%v", trimFloat(f))
		}
		return fmt.Sprintf("%v", trimFloat(f))
	}
	return fmt.Sprintf("%v", value)
}

func trimFloat(f float64) any {
	if f == math.Trunc(f) {
		return int(f)
	}
	return f
}
