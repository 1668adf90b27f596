package game

func makeMember(id, name string, class CharacterClass, row RowPosition) TemplateCharacter {
	ct, _ := ClassTemplateFor(class)
	return TemplateCharacter{
		ID:         id,
		Name:       name,
		Class:      class,
		Row:        row,
		Attributes: ct.BaseAttributes,
	}
}

// DefaultTemplates are the party templates seeded into storage on
// startup. Members use each class's base attributes.
func DefaultTemplates() []PartyTemplateDefinition {
	return []PartyTemplateDefinition{
		{
			ID:          "balanced",
			Name:        "Balanced",
			Description: "Versatile mix of offense, defense, and support.",
			Members: []TemplateCharacter{
				makeMember("balanced-f1", "Fighter Alpha", Fighter, RowFront),
				makeMember("balanced-f2", "Fighter Beta", Fighter, RowFront),
				makeMember("balanced-m1", "Mage", Mage, RowBack),
				makeMember("balanced-p1", "Priest", Priest, RowBack),
				makeMember("balanced-t1", "Thief", Thief, RowFront),
				makeMember("balanced-l1", "Lord", Lord, RowFront),
			},
		},
		{
			ID:          "glass-cannon",
			Name:        "Glass Cannon",
			Description: "High magic damage with low survivability.",
			Members: []TemplateCharacter{
				makeMember("glass-f1", "Fighter", Fighter, RowFront),
				makeMember("glass-m1", "Mage Alpha", Mage, RowBack),
				makeMember("glass-m2", "Mage Beta", Mage, RowBack),
				makeMember("glass-b1", "Bishop", Bishop, RowBack),
				makeMember("glass-s1", "Samurai", Samurai, RowFront),
				makeMember("glass-n1", "Ninja", Ninja, RowFront),
			},
		},
		{
			ID:          "tank-wall",
			Name:        "Tank Wall",
			Description: "High defense and sustain with low offensive output.",
			Members: []TemplateCharacter{
				makeMember("tank-f1", "Fighter Alpha", Fighter, RowFront),
				makeMember("tank-f2", "Fighter Beta", Fighter, RowFront),
				makeMember("tank-f3", "Fighter Gamma", Fighter, RowFront),
				makeMember("tank-l1", "Lord", Lord, RowFront),
				makeMember("tank-p1", "Priest", Priest, RowBack),
				makeMember("tank-b1", "Bishop", Bishop, RowBack),
			},
		},
		{
			ID:          "speed-blitz",
			Name:        "Speed Blitz",
			Description: "High initiative with burst damage and tempo control.",
			Members: []TemplateCharacter{
				makeMember("speed-t1", "Thief Alpha", Thief, RowFront),
				makeMember("speed-t2", "Thief Beta", Thief, RowFront),
				makeMember("speed-n1", "Ninja Alpha", Ninja, RowFront),
				makeMember("speed-n2", "Ninja Beta", Ninja, RowFront),
				makeMember("speed-s1", "Samurai", Samurai, RowBack),
				makeMember("speed-m1", "Mage", Mage, RowBack),
			},
		},
		{
			ID:          "control",
			Name:        "Control",
			Description: "Debuffs and status effects with resilient frontline.",
			Members: []TemplateCharacter{
				makeMember("control-f1", "Fighter", Fighter, RowFront),
				makeMember("control-m1", "Mage Alpha", Mage, RowBack),
				makeMember("control-m2", "Mage Beta", Mage, RowBack),
				makeMember("control-p1", "Priest", Priest, RowBack),
				makeMember("control-b1", "Bishop", Bishop, RowBack),
				makeMember("control-l1", "Lord", Lord, RowFront),
			},
		},
	}
}
