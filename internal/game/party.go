package game

import (
	"errors"
	"fmt"
)

// PartySize is the only legal member count for a party.
const PartySize = 6

var ErrInvalidPartySize = errors.New("party templates must include exactly 6 characters")

// TemplateCharacter is one member definition inside a party template.
type TemplateCharacter struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Class      CharacterClass      `json:"class"`
	Row        RowPosition         `json:"row"`
	Attributes CharacterAttributes `json:"attributes"`
}

// PartyTemplateDefinition is a named definition of exactly six member
// characters. The class determines spell slots and resistances via the
// fixed class table.
type PartyTemplateDefinition struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Members     []TemplateCharacter `json:"members"`
}

// PartyOptions override the ids used when instantiating a template for a
// match, so character ids become globally unique across both parties.
type PartyOptions struct {
	PartyID           string
	CharacterIDPrefix string
}

// CreateCharacterFromTemplate instantiates one member at full health with
// its class's spell slots and resistance profile.
func CreateCharacterFromTemplate(member TemplateCharacter) (Character, error) {
	ct, ok := ClassTemplateFor(member.Class)
	if !ok {
		return Character{}, fmt.Errorf("unknown character class %q", member.Class)
	}
	if member.Row != RowFront && member.Row != RowBack {
		return Character{}, fmt.Errorf("invalid row position %q for character %q", member.Row, member.ID)
	}

	slots := make(map[int]int, len(ct.SpellSlots))
	for level, count := range ct.SpellSlots {
		slots[level] = count
	}

	return Character{
		ID:          member.ID,
		Name:        member.Name,
		Class:       member.Class,
		Row:         member.Row,
		Stats:       CalculateStats(member.Attributes),
		SpellSlots:  slots,
		Resistances: ct.Resistances,
		Defeated:    false,
	}, nil
}

// CreatePartyFromTemplate validates the template and builds a fresh party
// for a match. Member ids are namespaced with the prefix so both parties
// of a match never collide.
func CreatePartyFromTemplate(template PartyTemplateDefinition, opts PartyOptions) (Party, error) {
	if len(template.Members) != PartySize {
		return Party{}, ErrInvalidPartySize
	}

	partyID := template.ID
	if opts.PartyID != "" {
		partyID = opts.PartyID
	}

	seen := make(map[string]bool, PartySize)
	characters := make([]Character, 0, PartySize)
	for _, member := range template.Members {
		member.ID = opts.CharacterIDPrefix + member.ID
		if seen[member.ID] {
			return Party{}, fmt.Errorf("duplicate character id %q in template %q", member.ID, template.ID)
		}
		seen[member.ID] = true

		c, err := CreateCharacterFromTemplate(member)
		if err != nil {
			return Party{}, err
		}
		characters = append(characters, c)
	}

	return Party{
		ID:         partyID,
		Name:       template.Name,
		Characters: characters,
	}, nil
}
