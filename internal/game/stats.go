package game

const (
	hpBase                 = 50
	hpPerConstitution      = 5
	attackPerStrength      = 2
	defensePerConstitution = 2
	magicPerIntelligence   = 2
)

// CalculateStats derives combat stats from template attributes. A fresh
// character starts at full HP.
func CalculateStats(attrs CharacterAttributes) CharacterStats {
	maxHP := hpBase + attrs.Constitution*hpPerConstitution
	return CharacterStats{
		MaxHP:     maxHP,
		CurrentHP: maxHP,
		Attack:    attrs.Strength * attackPerStrength,
		Defense:   attrs.Constitution * defensePerConstitution,
		Magic:     attrs.Intelligence * magicPerIntelligence,
		Speed:     attrs.Speed,
	}
}
