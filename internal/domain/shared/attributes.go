package shared

type Attribute string

// Attributes lists the six abilities in canonical display order. Detectors and
// formatters rely on this ordering when sorting ability-score changes.
var Attributes = []Attribute{AttributeStrength, AttributeDexterity, AttributeConstitution, AttributeIntelligence, AttributeWisdom, AttributeCharisma}

const (
	AttributeNone         Attribute = ""
	AttributeStrength     Attribute = "strength"
	AttributeDexterity    Attribute = "dexterity"
	AttributeConstitution Attribute = "constitution"
	AttributeIntelligence Attribute = "intelligence"
	AttributeWisdom       Attribute = "wisdom"
	AttributeCharisma     Attribute = "charisma"
)

// AttributeRank returns the position of an ability in canonical order, or
// len(Attributes) when the name is not one of the six abilities.
func AttributeRank(name string) int {
	for i, attr := range Attributes {
		if string(attr) == name {
			return i
		}
	}
	return len(Attributes)
}

// AbilityModifier converts an ability score to its 5e modifier.
func AbilityModifier(score int) int {
	// Integer division truncates toward zero, so shift before dividing to
	// keep negative scores on the right side of the table.
	if score < 10 {
		return (score - 11) / 2
	}
	return (score - 10) / 2
}
