package game

import (
	"encoding/json"
	"time"
)

type CharacterClass string

const (
	Fighter CharacterClass = "Fighter"
	Mage    CharacterClass = "Mage"
	Priest  CharacterClass = "Priest"
	Thief   CharacterClass = "Thief"
	Samurai CharacterClass = "Samurai"
	Lord    CharacterClass = "Lord"
	Bishop  CharacterClass = "Bishop"
	Ninja   CharacterClass = "Ninja"
)

type RowPosition string

const (
	RowFront RowPosition = "front"
	RowBack  RowPosition = "back"
)

type DamageType string

const (
	DamagePhysical DamageType = "physical"
	DamageMagic    DamageType = "magic"
)

// ActionType is a string alias representing an agent's chosen action for
// one character. Using a dedicated type instead of plain string makes
// code safer and self-documenting.
type ActionType string

const (
	ActionAttack    ActionType = "attack"
	ActionCastSpell ActionType = "cast_spell"
	ActionDefend    ActionType = "defend"
	ActionUseItem   ActionType = "use_item"
	ActionInspect   ActionType = "inspect"
)

type MatchPhase string

const (
	PhaseWaiting    MatchPhase = "waiting"
	PhaseInProgress MatchPhase = "in_progress"
	PhaseCompleted  MatchPhase = "completed"
)

// Resistances is a tagged variant: either a known fraction per damage
// type, or hidden. Hidden values serialize as the string "unknown" so
// agents cannot distinguish a resistance of zero from one they have not
// earned visibility into.
type Resistances struct {
	Known  bool
	Values map[DamageType]float64
}

// KnownResistances builds a visible resistance profile.
func KnownResistances(physical, magic float64) Resistances {
	return Resistances{
		Known: true,
		Values: map[DamageType]float64{
			DamagePhysical: physical,
			DamageMagic:    magic,
		},
	}
}

// HiddenResistances is the sentinel shown to viewers without visibility.
func HiddenResistances() Resistances {
	return Resistances{Known: false}
}

// Fraction returns the resistance fraction for the damage type, or 0
// when the profile is hidden.
func (r Resistances) Fraction(dt DamageType) float64 {
	if !r.Known {
		return 0
	}
	return r.Values[dt]
}

func (r Resistances) MarshalJSON() ([]byte, error) {
	if !r.Known {
		return json.Marshal("unknown")
	}
	return json.Marshal(r.Values)
}

func (r *Resistances) UnmarshalJSON(data []byte) error {
	var sentinel string
	if err := json.Unmarshal(data, &sentinel); err == nil {
		*r = Resistances{Known: false}
		return nil
	}
	var values map[DamageType]float64
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*r = Resistances{Known: true, Values: values}
	return nil
}

type CharacterStats struct {
	MaxHP     int `json:"maxHp"`
	CurrentHP int `json:"currentHp"`
	Attack    int `json:"attack"`
	Defense   int `json:"defense"`
	Magic     int `json:"magic"`
	Speed     int `json:"speed"`
}

type Character struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Class       CharacterClass `json:"class"`
	Row         RowPosition    `json:"row"`
	Stats       CharacterStats `json:"stats"`
	SpellSlots  map[int]int    `json:"spellSlots"`
	Resistances Resistances    `json:"resistances"`
	Defeated    bool           `json:"defeated"`
}

// Party is a team of exactly six characters controlled by one agent.
// Parties are never serialized to clients directly (views go through
// StateView), so the agent id survives the persistence round trip.
type Party struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	AgentID    string      `json:"agentId"`
	Characters []Character `json:"characters"`
}

// CharacterByID returns the member with the given id, or nil.
func (p *Party) CharacterByID(id string) *Character {
	for i := range p.Characters {
		if p.Characters[i].ID == id {
			return &p.Characters[i]
		}
	}
	return nil
}

// Action is one character's submitted order for the current turn.
type Action struct {
	CharacterID string     `json:"characterId"`
	ActionType  ActionType `json:"actionType"`
	TargetID    string     `json:"targetId,omitempty"`
}

type BattleLogEntry struct {
	Round   int    `json:"round"`
	Message string `json:"message"`
}

// SideTally holds one counter split between the two parties of a match.
type SideTally struct {
	PartyA int `json:"partyA"`
	PartyB int `json:"partyB"`
}

func (t *SideTally) Add(side Side, n int) {
	if side == SideA {
		t.PartyA += n
	} else {
		t.PartyB += n
	}
}

type MatchStats struct {
	TurnsTaken  SideTally `json:"turnsTaken"`
	DamageDealt SideTally `json:"damageDealt"`
	SpellsCast  SideTally `json:"spellsCast"`
}

// Side identifies a party by its slot in the match rather than its id.
type Side int

const (
	SideA Side = iota
	SideB
)

// MatchState is the authoritative in-memory state of one match. It is
// owned by exactly one session actor and mutated only by it.
type MatchState struct {
	MatchID       string          `json:"matchId"`
	Phase         MatchPhase      `json:"phase"`
	Round         int             `json:"round"`
	ActivePartyID string          `json:"activePartyId"`
	Seed          uint32          `json:"rngSeed"`
	TurnDeadline  time.Time       `json:"turnDeadline"`
	Parties       []Party         `json:"parties"`
	Defending     map[string]bool `json:"defending"`
	// InspectedByParty maps party id -> enemy character ids whose
	// resistances that party has revealed. Grows monotonically.
	InspectedByParty     map[string]map[string]bool `json:"inspectedByParty"`
	Log                  []BattleLogEntry           `json:"log"`
	Stats                MatchStats                 `json:"stats"`
	PartyByAgent         map[string]string          `json:"partyByAgent"`
	LastReasoningByParty map[string]*string         `json:"lastReasoningByParty"`
}

// PartyByID returns the party with the given id, or nil.
func (m *MatchState) PartyByID(id string) *Party {
	for i := range m.Parties {
		if m.Parties[i].ID == id {
			return &m.Parties[i]
		}
	}
	return nil
}

// EnemyOf returns the party opposing the given party id, or nil.
func (m *MatchState) EnemyOf(partyID string) *Party {
	for i := range m.Parties {
		if m.Parties[i].ID != partyID {
			return &m.Parties[i]
		}
	}
	return nil
}

// CharacterByID searches both parties for the character id.
func (m *MatchState) CharacterByID(id string) *Character {
	for i := range m.Parties {
		if c := m.Parties[i].CharacterByID(id); c != nil {
			return c
		}
	}
	return nil
}

// SideOf maps a party id to its stats slot. The first party is side A.
func (m *MatchState) SideOf(partyID string) Side {
	if len(m.Parties) > 0 && m.Parties[0].ID == partyID {
		return SideA
	}
	return SideB
}

// AppendLog adds a battle log entry for the current round.
func (m *MatchState) AppendLog(message string) {
	m.Log = append(m.Log, BattleLogEntry{Round: m.Round, Message: message})
}

// Inspected marks an enemy character as revealed to the given party.
func (m *MatchState) Inspected(partyID, characterID string) {
	if m.InspectedByParty[partyID] == nil {
		m.InspectedByParty[partyID] = make(map[string]bool)
	}
	m.InspectedByParty[partyID][characterID] = true
}
