package game

import "time"

// CharacterView mirrors Character but carries the viewer-adjusted
// resistance variant.
type CharacterView struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Class       CharacterClass `json:"class"`
	Row         RowPosition    `json:"row"`
	Stats       CharacterStats `json:"stats"`
	SpellSlots  map[int]int    `json:"spellSlots"`
	Resistances Resistances    `json:"resistances"`
	Defeated    bool           `json:"defeated"`
}

type PartyView struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Characters []CharacterView `json:"characters"`
}

// StateView is the fog-of-war projection of a match for one viewer. The
// active agent, round and turn deadline are always visible.
type StateView struct {
	MatchID       string      `json:"matchId"`
	State         MatchPhase  `json:"state"`
	Round         int         `json:"round"`
	ActiveAgentID *string     `json:"activeAgentId"`
	TurnExpiresAt *string     `json:"turnExpiresAt"`
	Parties       []PartyView `json:"parties"`
}

func (m *MatchState) activeAgentID() *string {
	if p := m.PartyByID(m.ActivePartyID); p != nil {
		id := p.AgentID
		return &id
	}
	return nil
}

func (m *MatchState) turnExpiresAt() *string {
	if m.TurnDeadline.IsZero() {
		return nil
	}
	s := m.TurnDeadline.UTC().Format(time.RFC3339)
	return &s
}

func projectCharacter(c Character, visible bool) CharacterView {
	res := c.Resistances
	if !visible {
		res = HiddenResistances()
	}
	// Views outlive the lock that produced them (webhook and websocket
	// goroutines marshal them later), so they must not share maps with
	// the live state.
	slots := make(map[int]int, len(c.SpellSlots))
	for level, count := range c.SpellSlots {
		slots[level] = count
	}
	return CharacterView{
		ID:          c.ID,
		Name:        c.Name,
		Class:       c.Class,
		Row:         c.Row,
		Stats:       c.Stats,
		SpellSlots:  slots,
		Resistances: res,
		Defeated:    c.Defeated,
	}
}

func (m *MatchState) project(visibleTo func(partyID, characterID string) bool) StateView {
	parties := make([]PartyView, 0, len(m.Parties))
	for _, party := range m.Parties {
		chars := make([]CharacterView, 0, len(party.Characters))
		for _, c := range party.Characters {
			chars = append(chars, projectCharacter(c, visibleTo(party.ID, c.ID)))
		}
		parties = append(parties, PartyView{ID: party.ID, Name: party.Name, Characters: chars})
	}
	return StateView{
		MatchID:       m.MatchID,
		State:         m.Phase,
		Round:         m.Round,
		ActiveAgentID: m.activeAgentID(),
		TurnExpiresAt: m.turnExpiresAt(),
		Parties:       parties,
	}
}

// ViewFor projects the match state for one party: own characters in
// full, enemy resistances hidden unless inspected by the viewer.
func (m *MatchState) ViewFor(viewerPartyID string) StateView {
	inspected := m.InspectedByParty[viewerPartyID]
	return m.project(func(partyID, characterID string) bool {
		return partyID == viewerPartyID || inspected[characterID]
	})
}

// SpectatorView projects the match state for observers: anything either
// side has inspected is visible.
func (m *MatchState) SpectatorView() StateView {
	inspected := make(map[string]bool)
	for _, set := range m.InspectedByParty {
		for id := range set {
			inspected[id] = true
		}
	}
	return m.project(func(_, characterID string) bool {
		return inspected[characterID]
	})
}
