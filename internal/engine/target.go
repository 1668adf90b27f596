package engine

import (
	"github.com/memorysaver/agentpit-gg/internal/game"
	"github.com/memorysaver/agentpit-gg/internal/prand"
)

func aliveInRow(characters []*game.Character, row game.RowPosition) []*game.Character {
	out := make([]*game.Character, 0, len(characters))
	for _, c := range characters {
		if c.Row == row {
			out = append(out, c)
		}
	}
	return out
}

func pickUniform(candidates []*game.Character, stream *prand.Stream) *game.Character {
	if len(candidates) == 0 {
		return nil
	}
	return candidates[int(stream.Float64()*float64(len(candidates)))]
}

// resolveTarget picks the enemy a hostile action lands on. An explicit
// alive target is preferred, except a melee attack against a back-row
// target is redirected through the front line while any front-row enemy
// still stands. Absent a usable explicit target, front-row enemies are
// preferred, chosen uniformly via the stream.
func resolveTarget(st *game.MatchState, action game.Action, partyID string, stream *prand.Stream) *game.Character {
	enemy := st.EnemyOf(partyID)
	if enemy == nil {
		return nil
	}

	var explicit *game.Character
	if action.TargetID != "" {
		explicit = st.CharacterByID(action.TargetID)
	}
	melee := action.ActionType == game.ActionAttack

	alive := make([]*game.Character, 0, len(enemy.Characters))
	for i := range enemy.Characters {
		if !enemy.Characters[i].Defeated {
			alive = append(alive, &enemy.Characters[i])
		}
	}
	if len(alive) == 0 {
		return nil
	}

	front := aliveInRow(alive, game.RowFront)
	back := aliveInRow(alive, game.RowBack)

	// A declined melee target never biases the row choice: the redirect
	// goes through the front line, not to a random back-row enemy.
	preferredRow := game.RowFront
	if explicit != nil && !melee {
		preferredRow = explicit.Row
	} else if len(front) == 0 {
		preferredRow = game.RowBack
	}

	if explicit != nil && !explicit.Defeated {
		if !melee {
			return explicit
		}
		if explicit.Row == game.RowFront || len(front) == 0 {
			return explicit
		}
	}

	preferred, fallback := front, back
	if preferredRow == game.RowBack {
		preferred, fallback = back, front
	}

	if t := pickUniform(preferred, stream); t != nil {
		return t
	}
	return pickUniform(fallback, stream)
}
