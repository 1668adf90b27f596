package engine

import (
	"strings"
	"testing"

	"github.com/memorysaver/agentpit-gg/internal/game"
	"github.com/memorysaver/agentpit-gg/internal/prand"
)

func testCharacter(id string, row game.RowPosition, attack, defense, speed int) game.Character {
	return game.Character{
		ID:   id,
		Name: id,
		Row:  row,
		Stats: game.CharacterStats{
			MaxHP: 50, CurrentHP: 50, Attack: attack, Defense: defense, Magic: 10, Speed: speed,
		},
		SpellSlots:  map[int]int{1: 2},
		Resistances: game.KnownResistances(0, 0),
	}
}

func testState(seed uint32) *game.MatchState {
	return &game.MatchState{
		MatchID:       "m1",
		Phase:         game.PhaseInProgress,
		Round:         1,
		ActivePartyID: "pa",
		Seed:          seed,
		Parties: []game.Party{
			{ID: "pa", Name: "A", AgentID: "agent-a", Characters: []game.Character{
				testCharacter("pa:1", game.RowFront, 12, 4, 5),
				testCharacter("pa:2", game.RowBack, 8, 4, 7),
			}},
			{ID: "pb", Name: "B", AgentID: "agent-b", Characters: []game.Character{
				testCharacter("pb:1", game.RowFront, 10, 4, 6),
				testCharacter("pb:2", game.RowBack, 6, 4, 3),
			}},
		},
		Defending:        map[string]bool{},
		InspectedByParty: map[string]map[string]bool{"pa": {}, "pb": {}},
		PartyByAgent:     map[string]string{"agent-a": "pa", "agent-b": "pb"},
	}
}

func TestInitiativeOrderIsDeterministic(t *testing.T) {
	chars := []game.Character{
		testCharacter("c1", game.RowFront, 10, 5, 5),
		testCharacter("c2", game.RowFront, 10, 5, 9),
		testCharacter("c3", game.RowBack, 10, 5, 2),
	}
	first := ComputeInitiativeOrder(chars, 1234)
	for i := 0; i < 10; i++ {
		again := ComputeInitiativeOrder(chars, 1234)
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("initiative order changed across computations: %v vs %v", first, again)
			}
		}
	}
	for i := 1; i < len(first); i++ {
		if first[i].Initiative > first[i-1].Initiative {
			t.Fatalf("initiative not sorted descending: %v", first)
		}
	}
}

func TestInitiativeIncludesAllCharacters(t *testing.T) {
	chars := []game.Character{
		testCharacter("c1", game.RowFront, 10, 5, 5),
		testCharacter("c2", game.RowFront, 10, 5, 5),
	}
	order := ComputeInitiativeOrder(chars, 7)
	if len(order) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(order))
	}
	seen := map[string]bool{}
	for _, e := range order {
		seen[e.CharacterID] = true
		if e.Initiative < e.Speed || e.Initiative > e.Speed+19 {
			t.Fatalf("initiative %d outside speed+[0,19] for %s", e.Initiative, e.CharacterID)
		}
	}
	if !seen["c1"] || !seen["c2"] {
		t.Fatalf("initiative order missing characters: %v", order)
	}
}

func TestDamageNeverBelowOne(t *testing.T) {
	target := testCharacter("t", game.RowFront, 0, 100, 1)
	for seed := uint32(0); seed < 50; seed++ {
		stream := prand.New(seed)
		dmg := calculateDamage(stream, 10, 100, game.DamagePhysical, &target, true, 2.0)
		if dmg < 1 {
			t.Fatalf("seed %d: damage %d below floor", seed, dmg)
		}
	}
}

func TestDamageIsBaseOrCrit(t *testing.T) {
	target := testCharacter("t", game.RowFront, 0, 0, 1)
	base := 20 - target.Stats.Defense
	for seed := uint32(0); seed < 50; seed++ {
		stream := prand.New(seed)
		dmg := calculateDamage(stream, 20, 0, game.DamagePhysical, &target, false, 1.0)
		if dmg != base && dmg != base*2 {
			t.Fatalf("seed %d: damage %d is neither base %d nor crit %d", seed, dmg, base, base*2)
		}
	}
}

func TestDamageResistanceAndDefend(t *testing.T) {
	target := testCharacter("t", game.RowFront, 0, 0, 1)
	target.Resistances = game.KnownResistances(0.5, 0)
	// Find a non-crit outcome: base 10, resistance halves it, defending
	// halves again -> 2 (or 5/10 doubled on crit paths, all >= 1).
	stream := prand.New(3)
	dmg := calculateDamage(stream, 10, 0, game.DamagePhysical, &target, true, 1.0)
	if dmg < 1 || dmg > 10 {
		t.Fatalf("unexpected damage %d", dmg)
	}
	// Magic damage ignores the physical resistance entry.
	streamA := prand.New(3)
	streamB := prand.New(3)
	phys := calculateDamage(streamA, 10, 0, game.DamagePhysical, &target, false, 1.0)
	mag := calculateDamage(streamB, 10, 0, game.DamageMagic, &target, false, 1.0)
	if phys >= mag {
		t.Fatalf("physical %d should be reduced below magic %d by resistance", phys, mag)
	}
}

func TestEscalationMultiplier(t *testing.T) {
	if m := escalationMultiplier(1); m != 1.0 {
		t.Fatalf("round 1 multiplier = %v", m)
	}
	if m := escalationMultiplier(30); m != 1.0 {
		t.Fatalf("round 30 multiplier = %v", m)
	}
	if m := escalationMultiplier(31); m != 1.05 {
		t.Fatalf("round 31 multiplier = %v", m)
	}
	if m := escalationMultiplier(200); m != 2.0 {
		t.Fatalf("late round multiplier not capped: %v", m)
	}
}

func TestCastSpellWithoutSlots(t *testing.T) {
	st := testState(1)
	actor := st.PartyByID("pa").CharacterByID("pa:1")
	actor.SpellSlots[1] = 0

	ApplyPartyActions(st, "pa", []game.Action{
		{CharacterID: "pa:1", ActionType: game.ActionCastSpell},
	})

	if actor.SpellSlots[1] != 0 {
		t.Fatalf("slot count changed to %d", actor.SpellSlots[1])
	}
	found := false
	for _, e := range st.Log {
		if strings.Contains(e.Message, "lacks spell slots") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected lacks-spell-slots log entry, got %v", st.Log)
	}
	if st.Stats.SpellsCast.PartyA != 0 {
		t.Fatalf("failed cast counted as spell: %+v", st.Stats.SpellsCast)
	}
}

func TestCastSpellConsumesSlot(t *testing.T) {
	st := testState(1)
	actor := st.PartyByID("pa").CharacterByID("pa:1")

	ApplyPartyActions(st, "pa", []game.Action{
		{CharacterID: "pa:1", ActionType: game.ActionCastSpell, TargetID: "pb:1"},
	})

	if actor.SpellSlots[1] != 1 {
		t.Fatalf("expected 1 remaining slot, got %d", actor.SpellSlots[1])
	}
	if st.Stats.SpellsCast.PartyA != 1 {
		t.Fatalf("spell not counted: %+v", st.Stats.SpellsCast)
	}
}

func TestOmittedCharacterDefends(t *testing.T) {
	st := testState(1)

	ApplyPartyActions(st, "pa", []game.Action{
		{CharacterID: "pa:1", ActionType: game.ActionAttack, TargetID: "pb:1"},
	})

	if !st.Defending["pa:2"] {
		t.Fatal("character omitted from submission should default to defend")
	}
	if st.Defending["pa:1"] {
		t.Fatal("attacking character should not be defending")
	}
}

func TestDefendingSetPurgedForActingParty(t *testing.T) {
	st := testState(1)
	st.Defending["pa:1"] = true
	st.Defending["pb:1"] = true

	ApplyPartyActions(st, "pa", []game.Action{
		{CharacterID: "pa:1", ActionType: game.ActionAttack, TargetID: "pb:1"},
		{CharacterID: "pa:2", ActionType: game.ActionAttack, TargetID: "pb:1"},
	})

	if st.Defending["pa:1"] || st.Defending["pa:2"] {
		t.Fatal("acting party's stale defend flags should be purged")
	}
	if !st.Defending["pb:1"] {
		t.Fatal("enemy defend flags must survive the acting party's turn")
	}
}

func TestMeleeRedirectsFromBackRow(t *testing.T) {
	st := testState(1)

	ApplyPartyActions(st, "pa", []game.Action{
		{CharacterID: "pa:1", ActionType: game.ActionAttack, TargetID: "pb:2"},
	})

	back := st.PartyByID("pb").CharacterByID("pb:2")
	front := st.PartyByID("pb").CharacterByID("pb:1")
	if back.Stats.CurrentHP != back.Stats.MaxHP {
		t.Fatal("back-row target should be shielded while the front row stands")
	}
	if front.Stats.CurrentHP == front.Stats.MaxHP {
		t.Fatal("attack should have redirected to the front row")
	}
}

func TestMeleeRedirectLandsOnFrontRow(t *testing.T) {
	for seed := uint32(0); seed < 10; seed++ {
		st := testState(seed)
		st.Parties[1].Characters = append(st.Parties[1].Characters,
			testCharacter("pb:3", game.RowFront, 10, 4, 4))

		ApplyPartyActions(st, "pa", []game.Action{
			{CharacterID: "pa:1", ActionType: game.ActionAttack, TargetID: "pb:2"},
		})

		back := st.PartyByID("pb").CharacterByID("pb:2")
		if back.Stats.CurrentHP != back.Stats.MaxHP {
			t.Fatalf("seed %d: redirect hit the back row", seed)
		}
		hitFront := 0
		for _, id := range []string{"pb:1", "pb:3"} {
			if c := st.PartyByID("pb").CharacterByID(id); c.Stats.CurrentHP < c.Stats.MaxHP {
				hitFront++
			}
		}
		if hitFront != 1 {
			t.Fatalf("seed %d: expected exactly one front-row enemy hit, got %d", seed, hitFront)
		}
	}
}

func TestMeleeReachesBackRowWhenFrontDown(t *testing.T) {
	st := testState(1)
	front := st.PartyByID("pb").CharacterByID("pb:1")
	front.Defeated = true
	front.Stats.CurrentHP = 0

	ApplyPartyActions(st, "pa", []game.Action{
		{CharacterID: "pa:1", ActionType: game.ActionAttack, TargetID: "pb:2"},
	})

	back := st.PartyByID("pb").CharacterByID("pb:2")
	if back.Stats.CurrentHP == back.Stats.MaxHP {
		t.Fatal("back-row target should be hit once the front row is down")
	}
}

func TestAttackWithNoEnemiesLogsNoTarget(t *testing.T) {
	st := testState(1)
	for i := range st.Parties[1].Characters {
		st.Parties[1].Characters[i].Defeated = true
		st.Parties[1].Characters[i].Stats.CurrentHP = 0
	}

	ApplyPartyActions(st, "pa", []game.Action{
		{CharacterID: "pa:1", ActionType: game.ActionAttack},
	})

	found := false
	for _, e := range st.Log {
		if strings.Contains(e.Message, "finds no target") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected no-target log entry, got %v", st.Log)
	}
}

func TestUseItemHealsAndCaps(t *testing.T) {
	st := testState(1)
	actor := st.PartyByID("pa").CharacterByID("pa:1")
	actor.Stats.CurrentHP = 45 // maxHP 50, heal is ceil(50*0.2)=10, capped at 50

	ApplyPartyActions(st, "pa", []game.Action{
		{CharacterID: "pa:1", ActionType: game.ActionUseItem},
	})

	if actor.Stats.CurrentHP != 50 {
		t.Fatalf("expected HP capped at 50, got %d", actor.Stats.CurrentHP)
	}
}

func TestInspectAddsToInspectedSet(t *testing.T) {
	st := testState(1)

	ApplyPartyActions(st, "pa", []game.Action{
		{CharacterID: "pa:1", ActionType: game.ActionInspect, TargetID: "pb:2"},
	})

	if !st.InspectedByParty["pa"]["pb:2"] {
		t.Fatalf("inspect should record the explicit target, got %v", st.InspectedByParty["pa"])
	}
}

func TestDefeatedActorSkipsTurn(t *testing.T) {
	st := testState(1)
	actor := st.PartyByID("pa").CharacterByID("pa:1")
	actor.Defeated = true
	actor.Stats.CurrentHP = 0

	ApplyPartyActions(st, "pa", []game.Action{
		{CharacterID: "pa:1", ActionType: game.ActionAttack, TargetID: "pb:1"},
	})

	target := st.PartyByID("pb").CharacterByID("pb:1")
	if target.Stats.CurrentHP != target.Stats.MaxHP {
		t.Fatal("defeated actor must not act")
	}
}

func TestUpdateMatchPhaseOnWipe(t *testing.T) {
	st := testState(1)
	if phase := UpdateMatchPhase(st); phase != game.PhaseInProgress {
		t.Fatalf("healthy match flipped to %s", phase)
	}
	for i := range st.Parties[1].Characters {
		st.Parties[1].Characters[i].Defeated = true
	}
	if phase := UpdateMatchPhase(st); phase != game.PhaseCompleted {
		t.Fatalf("wiped party should complete the match, got %s", phase)
	}
	w := Winner(st)
	if w == nil || *w != "agent-a" {
		t.Fatalf("expected agent-a as winner, got %v", w)
	}
}

func TestDoubleDefeatHasNoWinner(t *testing.T) {
	st := testState(1)
	for i := range st.Parties {
		for j := range st.Parties[i].Characters {
			st.Parties[i].Characters[j].Defeated = true
			st.Parties[i].Characters[j].Stats.CurrentHP = 0
		}
	}
	if phase := UpdateMatchPhase(st); phase != game.PhaseCompleted {
		t.Fatalf("double wipe should complete the match, got %s", phase)
	}
	if w := Winner(st); w != nil {
		t.Fatalf("double defeat must yield no winner, got %q", *w)
	}
}

func TestTurnCounterIncrements(t *testing.T) {
	st := testState(1)
	ApplyPartyActions(st, "pa", nil)
	ApplyPartyActions(st, "pa", nil)
	if st.Stats.TurnsTaken.PartyA != 2 {
		t.Fatalf("expected 2 turns for party A, got %d", st.Stats.TurnsTaken.PartyA)
	}
	if st.Stats.TurnsTaken.PartyB != 0 {
		t.Fatalf("party B took no turns, got %d", st.Stats.TurnsTaken.PartyB)
	}
}
