package game

// CharacterAttributes are the template-level base attributes a class or
// template member is defined by. Combat stats are derived from them.
type CharacterAttributes struct {
	Strength     int `json:"strength"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Speed        int `json:"speed"`
}

// ClassTemplate fixes a class's base attributes, spell-slot allotment and
// resistance profile.
type ClassTemplate struct {
	Class          CharacterClass
	BaseAttributes CharacterAttributes
	SpellSlots     map[int]int
	Resistances    Resistances
}

var classTemplates = map[CharacterClass]ClassTemplate{
	Fighter: {
		Class:          Fighter,
		BaseAttributes: CharacterAttributes{Strength: 10, Constitution: 9, Intelligence: 2, Wisdom: 3, Speed: 5},
		SpellSlots:     map[int]int{},
		Resistances:    KnownResistances(0.1, 0.05),
	},
	Mage: {
		Class:          Mage,
		BaseAttributes: CharacterAttributes{Strength: 2, Constitution: 4, Intelligence: 10, Wisdom: 7, Speed: 5},
		SpellSlots:     map[int]int{1: 2, 2: 2, 3: 1, 4: 1},
		Resistances:    KnownResistances(0, 0.15),
	},
	Priest: {
		Class:          Priest,
		BaseAttributes: CharacterAttributes{Strength: 3, Constitution: 6, Intelligence: 6, Wisdom: 9, Speed: 4},
		SpellSlots:     map[int]int{1: 2, 2: 1, 3: 1, 4: 1},
		Resistances:    KnownResistances(0.05, 0.1),
	},
	Thief: {
		Class:          Thief,
		BaseAttributes: CharacterAttributes{Strength: 6, Constitution: 5, Intelligence: 4, Wisdom: 4, Speed: 9},
		SpellSlots:     map[int]int{},
		Resistances:    KnownResistances(0.05, 0.05),
	},
	Samurai: {
		Class:          Samurai,
		BaseAttributes: CharacterAttributes{Strength: 8, Constitution: 7, Intelligence: 6, Wisdom: 5, Speed: 6},
		SpellSlots:     map[int]int{1: 1, 2: 1},
		Resistances:    KnownResistances(0.08, 0.08),
	},
	Lord: {
		Class:          Lord,
		BaseAttributes: CharacterAttributes{Strength: 7, Constitution: 8, Intelligence: 5, Wisdom: 7, Speed: 5},
		SpellSlots:     map[int]int{1: 1, 2: 1},
		Resistances:    KnownResistances(0.12, 0.08),
	},
	Bishop: {
		Class:          Bishop,
		BaseAttributes: CharacterAttributes{Strength: 3, Constitution: 5, Intelligence: 8, Wisdom: 8, Speed: 4},
		SpellSlots:     map[int]int{1: 2, 2: 2, 3: 1, 4: 1},
		Resistances:    KnownResistances(0.04, 0.12),
	},
	Ninja: {
		Class:          Ninja,
		BaseAttributes: CharacterAttributes{Strength: 8, Constitution: 6, Intelligence: 5, Wisdom: 4, Speed: 8},
		SpellSlots:     map[int]int{1: 1},
		Resistances:    KnownResistances(0.15, 0.05),
	},
}

// ClassTemplateFor returns the fixed template for a class. The second
// return value is false for unrecognized class names.
func ClassTemplateFor(class CharacterClass) (ClassTemplate, bool) {
	ct, ok := classTemplates[class]
	return ct, ok
}
