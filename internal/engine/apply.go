// Package engine implements pure combat resolution: initiative ordering,
// target selection, damage calculation and action application. It
// operates on an in-memory match state and performs no I/O; all
// randomness comes from the deterministic stream keyed by (seed, round).
package engine

import (
	"fmt"
	"math"
	"strconv"

	"github.com/memorysaver/agentpit-gg/internal/game"
	"github.com/memorysaver/agentpit-gg/internal/prand"
)

// SpellSlotLevel is the single slot tier spells draw from. Submitted
// casts are also checked against it before a turn is accepted.
const SpellSlotLevel = 1

func buildActionMap(actions []game.Action) map[string]game.Action {
	m := make(map[string]game.Action, len(actions))
	for _, a := range actions {
		m[a.CharacterID] = a
	}
	return m
}

// ApplyPartyActions resolves one party's full turn. Characters act in
// initiative order; a character with no submitted action defends. The
// defending set is purged of the acting party's own ids before any
// action is processed, since at most one enemy turn occurred since the
// mitigation was earned.
func ApplyPartyActions(st *game.MatchState, partyID string, actions []game.Action) {
	party := st.PartyByID(partyID)
	if party == nil {
		return
	}
	side := st.SideOf(partyID)
	st.Stats.TurnsTaken.Add(side, 1)

	for _, c := range party.Characters {
		delete(st.Defending, c.ID)
	}

	stream := prand.New(st.Seed + uint32(st.Round))
	actionMap := buildActionMap(actions)
	initiative := ComputeInitiativeOrder(party.Characters, st.Seed+uint32(st.Round))
	bonus := escalationMultiplier(st.Round)

	for _, entry := range initiative {
		actor := party.CharacterByID(entry.CharacterID)
		if actor == nil || actor.Defeated {
			continue
		}

		action, ok := actionMap[actor.ID]
		if !ok {
			action = game.Action{CharacterID: actor.ID, ActionType: game.ActionDefend}
		}

		switch action.ActionType {
		case game.ActionDefend:
			st.Defending[actor.ID] = true
			st.AppendLog(actor.Name + " braces for impact.")

		case game.ActionAttack:
			target := resolveTarget(st, action, partyID, stream)
			if target == nil {
				st.AppendLog(actor.Name + " finds no target.")
				break
			}
			damage := calculateDamage(stream, actor.Stats.Attack, target.Stats.Defense,
				game.DamagePhysical, target, st.Defending[target.ID], bonus)
			applyDamage(target, damage)
			st.Stats.DamageDealt.Add(side, damage)
			st.AppendLog(fmt.Sprintf("%s attacks %s for %d damage.", actor.Name, target.Name, damage))

		case game.ActionCastSpell:
			if actor.SpellSlots[SpellSlotLevel] <= 0 {
				st.AppendLog(actor.Name + " tries to cast but lacks spell slots.")
				break
			}
			actor.SpellSlots[SpellSlotLevel]--
			st.Stats.SpellsCast.Add(side, 1)

			target := resolveTarget(st, action, partyID, stream)
			if target == nil {
				st.AppendLog(actor.Name + " casts a spell, but no targets remain.")
				break
			}
			damage := calculateDamage(stream, actor.Stats.Magic, target.Stats.Defense,
				game.DamageMagic, target, st.Defending[target.ID], bonus)
			applyDamage(target, damage)
			st.Stats.DamageDealt.Add(side, damage)
			st.AppendLog(fmt.Sprintf("%s casts a spell at %s for %d damage.", actor.Name, target.Name, damage))

		case game.ActionUseItem:
			heal := int(math.Ceil(float64(actor.Stats.MaxHP) * itemHealRatio))
			actor.Stats.CurrentHP += heal
			if actor.Stats.CurrentHP > actor.Stats.MaxHP {
				actor.Stats.CurrentHP = actor.Stats.MaxHP
			}
			st.AppendLog(actor.Name + " uses an item and heals " + strconv.Itoa(heal) + " HP.")

		case game.ActionInspect:
			target := resolveTarget(st, action, partyID, stream)
			if target == nil {
				st.AppendLog(actor.Name + " finds nothing to inspect.")
				break
			}
			st.Inspected(partyID, target.ID)
			st.AppendLog(actor.Name + " inspects " + target.Name + ".")

		default:
			st.AppendLog(actor.Name + " hesitates.")
		}
	}
}

// IsPartyDefeated reports whether every character of the party is down.
func IsPartyDefeated(st *game.MatchState, partyID string) bool {
	party := st.PartyByID(partyID)
	if party == nil {
		return false
	}
	for _, c := range party.Characters {
		if !c.Defeated {
			return false
		}
	}
	return true
}

// UpdateMatchPhase flips the match to completed the instant either party
// is fully defeated, and returns the resulting phase.
func UpdateMatchPhase(st *game.MatchState) game.MatchPhase {
	if len(st.Parties) != 2 {
		return st.Phase
	}
	if IsPartyDefeated(st, st.Parties[0].ID) || IsPartyDefeated(st, st.Parties[1].ID) {
		st.Phase = game.PhaseCompleted
	}
	return st.Phase
}

// Winner returns the agent id of the sole undefeated party, or nil on a
// draw or double defeat.
func Winner(st *game.MatchState) *string {
	if len(st.Parties) != 2 {
		return nil
	}
	aDown := IsPartyDefeated(st, st.Parties[0].ID)
	bDown := IsPartyDefeated(st, st.Parties[1].ID)
	switch {
	case aDown && !bDown:
		return &st.Parties[1].AgentID
	case bDown && !aDown:
		return &st.Parties[0].AgentID
	default:
		return nil
	}
}
