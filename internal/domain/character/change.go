package character

import (
	"fmt"
)

// ChangeType classifies what happened to a field between two snapshots.
type ChangeType string

const (
	ChangeTypeAdded       ChangeType = "added"
	ChangeTypeRemoved     ChangeType = "removed"
	ChangeTypeModified    ChangeType = "modified"
	ChangeTypeIncremented ChangeType = "incremented"
	ChangeTypeDecremented ChangeType = "decremented"
	ChangeTypeReordered   ChangeType = "reordered"
	ChangeTypeRenamed     ChangeType = "renamed"
	ChangeTypeMoved       ChangeType = "moved"
)

// Priority is the ordinal importance of a change. Threshold comparisons use
// the ordinal value, never the label.
type Priority int

const (
	// PriorityIgnored marks fields that must never produce a reported change.
	// It is deliberately not an ordinal level: an ignored change is dropped,
	// not demoted.
	PriorityIgnored Priority = -1

	PriorityLow      Priority = 1
	PriorityMedium   Priority = 2
	PriorityHigh     Priority = 3
	PriorityCritical Priority = 4
)

// String returns the label for logging and serialization.
func (p Priority) String() string {
	switch p {
	case PriorityIgnored:
		return "ignored"
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// ParsePriority maps a config label to a Priority. Unknown labels map to
// medium so a typo in a rules file degrades instead of silencing a field.
func ParsePriority(label string) Priority {
	switch label {
	case "ignored":
		return PriorityIgnored
	case "low":
		return PriorityLow
	case "medium":
		return PriorityMedium
	case "high":
		return PriorityHigh
	case "critical":
		return PriorityCritical
	default:
		return PriorityMedium
	}
}

// Category is the semantic bucket a change belongs to.
type Category string

const (
	CategoryBasicInfo   Category = "basic_info"
	CategoryAbilities   Category = "abilities"
	CategorySkills      Category = "skills"
	CategoryCombat      Category = "combat"
	CategorySpells      Category = "spells"
	CategoryFeatures    Category = "features"
	CategoryEquipment   Category = "equipment"
	CategoryInventory   Category = "inventory"
	CategoryProgression Category = "progression"
	CategorySocial      Category = "social"
	CategoryMetadata    Category = "metadata"
)

// FieldChange is the atomic unit of detected change between two snapshots.
type FieldChange struct {
	FieldPath   string     `json:"field_path"`
	OldValue    any        `json:"old_value"`
	NewValue    any        `json:"new_value"`
	ChangeType  ChangeType `json:"change_type"`
	Priority    Priority   `json:"priority"`
	Category    Category   `json:"category"`
	Description string     `json:"description"`
	Confidence  float64    `json:"confidence"`
}

// NewFieldChange builds a change with full confidence. The path is coerced to
// a string so detectors can pass whatever keyed their extraction. Category is
// left unset; producers that know it set it, and classification infers it
// from the path for the rest.
func NewFieldChange(fieldPath any, oldValue, newValue any, changeType ChangeType) *FieldChange {
	path, ok := fieldPath.(string)
	if !ok {
		path = fmt.Sprintf("%v", fieldPath)
	}
	return &FieldChange{
		FieldPath:  path,
		OldValue:   oldValue,
		NewValue:   newValue,
		ChangeType: changeType,
		Priority:   PriorityMedium,
		Confidence: 1.0,
	}
}

// Meaningful reports whether the change carries any information. A change
// where both sides are nil is noise and must be filtered out.
func (c *FieldChange) Meaningful() bool {
	return c != nil && c.FieldPath != "" && (c.OldValue != nil || c.NewValue != nil)
}

// Serialize renders the change as a plain mapping for downstream consumers
// (Discord formatting, change log). Collaborators depend on this shape only.
func (c *FieldChange) Serialize() map[string]any {
	return map[string]any{
		"field_path":  c.FieldPath,
		"old_value":   c.OldValue,
		"new_value":   c.NewValue,
		"change_type": string(c.ChangeType),
		"priority":    c.Priority.String(),
		"category":    string(c.Category),
		"description": c.Description,
	}
}
