package engine

import (
	"math"

	"github.com/memorysaver/agentpit-gg/internal/game"
	"github.com/memorysaver/agentpit-gg/internal/prand"
)

const (
	critChance      = 0.1
	critMultiplier  = 2
	defendReduction = 0.5
	itemHealRatio   = 0.2

	// Escalation kicks in past round 30, +5% per round, capped at 2x.
	escalationStartRound = 30
	escalationPerRound   = 0.05
	escalationCap        = 2.0
)

// escalationMultiplier returns the late-game damage bonus for a round.
func escalationMultiplier(round int) float64 {
	if round <= escalationStartRound {
		return 1.0
	}
	return math.Min(escalationCap, 1+float64(round-escalationStartRound)*escalationPerRound)
}

// calculateDamage applies the full damage pipeline: base max(1, off-def),
// crit roll, escalation bonus, 2x-base cap, resistance reduction when the
// profile is known, 50% defend reduction, floored at 1.
func calculateDamage(
	stream *prand.Stream,
	attackStat, defenseStat int,
	damageType game.DamageType,
	target *game.Character,
	isDefending bool,
	bonusMultiplier float64,
) int {
	base := attackStat - defenseStat
	if base < 1 {
		base = 1
	}

	damage := float64(base)
	if stream.Float64() < critChance {
		damage = float64(base * critMultiplier)
	}
	damage *= bonusMultiplier

	cap := float64(base * 2)
	damage = math.Min(damage, cap)
	dmg := int(math.Floor(damage))

	resistance := target.Resistances.Fraction(damageType)
	dmg = int(math.Floor(float64(dmg) * (1 - resistance)))

	if isDefending {
		dmg = int(math.Floor(float64(dmg) * (1 - defendReduction)))
	}

	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

// applyDamage subtracts HP, clamped at zero, and flags defeat exactly
// when HP reaches zero.
func applyDamage(target *game.Character, damage int) {
	target.Stats.CurrentHP -= damage
	if target.Stats.CurrentHP <= 0 {
		target.Stats.CurrentHP = 0
		target.Defeated = true
	}
}
