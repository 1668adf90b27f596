package engine

import (
	"sort"

	"github.com/memorysaver/agentpit-gg/internal/game"
	"github.com/memorysaver/agentpit-gg/internal/prand"
)

const initiativeRollMax = 19

// InitiativeEntry records the turn-order roll for one character of the
// acting party.
type InitiativeEntry struct {
	CharacterID string
	Initiative  int
	Speed       int
}

// ComputeInitiativeOrder rolls speed + d20 for each character and sorts
// descending by initiative, ties broken by descending speed then
// ascending character id. The order is a total order: for a fixed seed
// and character set it is identical across repeated computations.
func ComputeInitiativeOrder(characters []game.Character, seed uint32) []InitiativeEntry {
	stream := prand.New(seed)

	entries := make([]InitiativeEntry, 0, len(characters))
	for _, c := range characters {
		entries = append(entries, InitiativeEntry{
			CharacterID: c.ID,
			Initiative:  c.Stats.Speed + stream.IntN(initiativeRollMax),
			Speed:       c.Stats.Speed,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Initiative != entries[j].Initiative {
			return entries[i].Initiative > entries[j].Initiative
		}
		if entries[i].Speed != entries[j].Speed {
			return entries[i].Speed > entries[j].Speed
		}
		return entries[i].CharacterID < entries[j].CharacterID
	})
	return entries
}
