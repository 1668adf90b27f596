// Package session hosts the per-match state machine. Each match id maps
// to exactly one Session; all operations on it are serialized by its
// mutex, so no operation ever observes a partially applied state.
package session

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/memorysaver/agentpit-gg/internal/constants"
	"github.com/memorysaver/agentpit-gg/internal/engine"
	"github.com/memorysaver/agentpit-gg/internal/game"
	"github.com/memorysaver/agentpit-gg/internal/logging"
	"github.com/memorysaver/agentpit-gg/internal/notify"
	"github.com/memorysaver/agentpit-gg/internal/storage"
)

var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrNotParticipant     = errors.New("agent is not a participant of this match")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrMatchNotInProgress = errors.New("match is not in progress")
	ErrAlreadyInitialized = errors.New("match already initialized")
	ErrInvalidActions     = errors.New("invalid actions")
)

// Broadcaster pushes a spectator payload to everyone watching a match.
type Broadcaster interface {
	Broadcast(matchID string, payload SpectatePayload)
}

// SpectatePayload is the message pushed to spectators on every mutation.
type SpectatePayload struct {
	Type             string                `json:"type"`
	State            game.StateView        `json:"state"`
	Log              []game.BattleLogEntry `json:"log"`
	Stats            game.MatchStats       `json:"stats"`
	ReasoningByParty map[string]*string    `json:"reasoningByParty"`
}

// InitializeParams carries the two sides of a new match.
type InitializeParams struct {
	AgentA    string
	AgentB    string
	TemplateA string
	TemplateB string
}

// Session owns one match's authoritative state. A single timer drives the
// turn deadline; rescheduling always supersedes the previous timer.
type Session struct {
	matchID     string
	repo        storage.Repository
	notifier    notify.Notifier
	broadcaster Broadcaster
	turnTimeout time.Duration

	mu    sync.Mutex
	st    *game.MatchState
	timer *time.Timer
}

func New(matchID string, repo storage.Repository, notifier notify.Notifier, broadcaster Broadcaster, turnTimeout time.Duration) *Session {
	return &Session{
		matchID:     matchID,
		repo:        repo,
		notifier:    notifier,
		broadcaster: broadcaster,
		turnTimeout: turnTimeout,
	}
}

// newSeed draws 4 bytes from the crypto source. Combat itself never
// touches this generator; only the seed and the first-mover coin flip
// come from it, so a recorded seed replays the match exactly.
func newSeed() (uint32, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// Initialize builds both parties from their templates, flips the first
// mover from the seed's parity and opens the match.
func (s *Session) Initialize(params InitializeParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st != nil {
		return ErrAlreadyInitialized
	}

	templateA, err := s.repo.GetTemplate(params.TemplateA)
	if err != nil {
		return fmt.Errorf("template %s: %w", params.TemplateA, err)
	}
	templateB, err := s.repo.GetTemplate(params.TemplateB)
	if err != nil {
		return fmt.Errorf("template %s: %w", params.TemplateB, err)
	}

	partyA, err := game.CreatePartyFromTemplate(*templateA, game.PartyOptions{
		PartyID:           s.matchID + ":A",
		CharacterIDPrefix: s.matchID + ":A:",
	})
	if err != nil {
		return err
	}
	partyA.AgentID = params.AgentA

	partyB, err := game.CreatePartyFromTemplate(*templateB, game.PartyOptions{
		PartyID:           s.matchID + ":B",
		CharacterIDPrefix: s.matchID + ":B:",
	})
	if err != nil {
		return err
	}
	partyB.AgentID = params.AgentB

	seed, err := newSeed()
	if err != nil {
		return err
	}

	parties := []game.Party{partyA, partyB}
	active := parties[seed%2].ID

	st := &game.MatchState{
		MatchID:       s.matchID,
		Phase:         game.PhaseInProgress,
		Round:         1,
		ActivePartyID: active,
		Seed:          seed,
		TurnDeadline:  time.Now().Add(s.turnTimeout),
		Parties:       parties,
		Defending:     map[string]bool{},
		InspectedByParty: map[string]map[string]bool{
			partyA.ID: {},
			partyB.ID: {},
		},
		PartyByAgent: map[string]string{
			params.AgentA: partyA.ID,
			params.AgentB: partyB.ID,
		},
		LastReasoningByParty: map[string]*string{},
	}
	st.AppendLog("Match started.")
	s.st = st

	if err := s.repo.SaveMatchState(s.matchID, st); err != nil {
		s.st = nil
		return err
	}

	s.scheduleTurnTimeout()
	s.notifyActiveLocked()
	s.broadcastLocked()

	logging.Info("match initialized", logging.Fields{
		constants.LogFieldMatchID: s.matchID,
		constants.LogFieldPartyID: active,
	})
	return nil
}

// resume adopts a persisted state after a restart and re-arms the turn
// timer. A deadline already in the past fires immediately.
func (s *Session) resume(st *game.MatchState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st = st
	if st.Phase != game.PhaseInProgress {
		return
	}
	s.scheduleTurnTimeout()
}

func validateActions(st *game.MatchState, partyID string, actions []game.Action) error {
	party := st.PartyByID(partyID)
	seen := make(map[string]bool, len(actions))
	for _, a := range actions {
		if seen[a.CharacterID] {
			return fmt.Errorf("%w: duplicate action for character %s", ErrInvalidActions, a.CharacterID)
		}
		seen[a.CharacterID] = true

		actor := party.CharacterByID(a.CharacterID)
		if actor == nil {
			return fmt.Errorf("%w: character %s is not in your party", ErrInvalidActions, a.CharacterID)
		}
		if actor.Defeated {
			return fmt.Errorf("%w: character %s is defeated", ErrInvalidActions, a.CharacterID)
		}

		switch a.ActionType {
		case game.ActionAttack, game.ActionCastSpell, game.ActionDefend, game.ActionUseItem, game.ActionInspect:
		default:
			return fmt.Errorf("%w: unknown action type %q", ErrInvalidActions, a.ActionType)
		}

		if a.ActionType == game.ActionCastSpell && actor.SpellSlots[engine.SpellSlotLevel] <= 0 {
			return fmt.Errorf("%w: character %s has no spell slots available", ErrInvalidActions, a.CharacterID)
		}

		if a.TargetID == "" {
			continue
		}
		target := st.CharacterByID(a.TargetID)
		if target == nil {
			return fmt.Errorf("%w: unknown target %s", ErrInvalidActions, a.TargetID)
		}
		targetOwn := party.CharacterByID(a.TargetID) != nil
		switch a.ActionType {
		case game.ActionAttack, game.ActionCastSpell, game.ActionInspect:
			if targetOwn {
				return fmt.Errorf("%w: target %s is on your own side", ErrInvalidActions, a.TargetID)
			}
		case game.ActionUseItem:
			if !targetOwn {
				return fmt.Errorf("%w: target %s is not on your side", ErrInvalidActions, a.TargetID)
			}
		}
	}
	return nil
}

// SubmitActions applies the active party's turn. Rejections leave the
// state untouched.
func (s *Session) SubmitActions(agentID string, actions []game.Action, reasoning *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st == nil {
		return ErrMatchNotFound
	}
	partyID, ok := s.st.PartyByAgent[agentID]
	if !ok {
		return ErrNotParticipant
	}
	if s.st.Phase != game.PhaseInProgress {
		return ErrMatchNotInProgress
	}
	if partyID != s.st.ActivePartyID {
		return ErrNotYourTurn
	}
	if err := validateActions(s.st, partyID, actions); err != nil {
		return err
	}

	s.st.LastReasoningByParty[partyID] = reasoning
	engine.ApplyPartyActions(s.st, partyID, actions)
	return s.advanceOrFinalizeLocked()
}

// Forfeit downs the requesting party entirely and finalizes the match.
func (s *Session) Forfeit(agentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st == nil {
		return ErrMatchNotFound
	}
	partyID, ok := s.st.PartyByAgent[agentID]
	if !ok {
		return ErrNotParticipant
	}
	if s.st.Phase == game.PhaseCompleted {
		return ErrMatchNotInProgress
	}

	party := s.st.PartyByID(partyID)
	for i := range party.Characters {
		party.Characters[i].Defeated = true
		party.Characters[i].Stats.CurrentHP = 0
	}
	s.st.AppendLog(party.Name + " forfeits the match.")

	engine.UpdateMatchPhase(s.st)
	return s.finalizeLocked()
}

// handleTimeout fires when the turn deadline passes without a
// submission. A deadline that moved later than now means a submission
// won the race; reschedule and bail instead of forcing a second turn.
func (s *Session) handleTimeout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st == nil || s.st.Phase != game.PhaseInProgress {
		return
	}
	if s.st.TurnDeadline.After(time.Now()) {
		s.scheduleTurnTimeout()
		return
	}

	logging.Info("turn timed out", logging.Fields{
		constants.LogFieldMatchID: s.matchID,
		constants.LogFieldPartyID: s.st.ActivePartyID,
		constants.LogFieldRound:   s.st.Round,
	})
	s.st.AppendLog("Turn timed out. Default Defend actions applied.")
	engine.ApplyPartyActions(s.st, s.st.ActivePartyID, nil)

	if err := s.advanceOrFinalizeLocked(); err != nil {
		logging.Error("failed to advance match after timeout", err, logging.Fields{
			constants.LogFieldMatchID: s.matchID,
		})
	}
}

func (s *Session) advanceOrFinalizeLocked() error {
	if engine.UpdateMatchPhase(s.st) == game.PhaseCompleted {
		return s.finalizeLocked()
	}

	enemy := s.st.EnemyOf(s.st.ActivePartyID)
	s.st.ActivePartyID = enemy.ID
	s.st.Round++
	s.st.TurnDeadline = time.Now().Add(s.turnTimeout)

	if err := s.repo.SaveMatchState(s.matchID, s.st); err != nil {
		return err
	}

	s.scheduleTurnTimeout()
	s.notifyActiveLocked()
	s.broadcastLocked()
	return nil
}

func (s *Session) finalizeLocked() error {
	s.st.TurnDeadline = time.Time{}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	winner := engine.Winner(s.st)
	if err := s.repo.FinalizeMatch(s.matchID, winner, s.st); err != nil {
		return err
	}

	for agentID := range s.st.PartyByAgent {
		s.notifier.MatchEnd(agentID, s.matchID, winner, s.st.Stats)
	}
	s.broadcastLocked()

	fields := logging.Fields{constants.LogFieldMatchID: s.matchID}
	if winner != nil {
		fields["winner_agent_id"] = *winner
	}
	logging.Info("match completed", fields)
	return nil
}

func (s *Session) scheduleTurnTimeout() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(time.Until(s.st.TurnDeadline), s.handleTimeout)
}

func (s *Session) notifyActiveLocked() {
	party := s.st.PartyByID(s.st.ActivePartyID)
	if party == nil {
		return
	}
	view := s.st.ViewFor(party.ID)
	s.notifier.YourTurn(party.AgentID, s.matchID, &view)
}

func (s *Session) broadcastLocked() {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Broadcast(s.matchID, s.spectatePayloadLocked())
}

func (s *Session) spectatePayloadLocked() SpectatePayload {
	// The payload is marshaled outside the session lock, so it must not
	// share maps with the live state.
	reasoning := make(map[string]*string, len(s.st.LastReasoningByParty))
	for partyID, text := range s.st.LastReasoningByParty {
		reasoning[partyID] = text
	}
	return SpectatePayload{
		Type:             "state",
		State:            s.st.SpectatorView(),
		Log:              append([]game.BattleLogEntry(nil), s.st.Log...),
		Stats:            s.st.Stats,
		ReasoningByParty: reasoning,
	}
}

// View returns the fog-of-war projection for the calling agent.
func (s *Session) View(agentID string) (game.StateView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st == nil {
		return game.StateView{}, ErrMatchNotFound
	}
	partyID, ok := s.st.PartyByAgent[agentID]
	if !ok {
		return game.StateView{}, ErrNotParticipant
	}
	return s.st.ViewFor(partyID), nil
}

// Snapshot returns the current spectator payload, for newly subscribed
// watchers.
func (s *Session) Snapshot() (SpectatePayload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st == nil {
		return SpectatePayload{}, false
	}
	return s.spectatePayloadLocked(), true
}

// Completed reports whether the match reached its terminal phase.
func (s *Session) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st != nil && s.st.Phase == game.PhaseCompleted
}
