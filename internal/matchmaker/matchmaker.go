// Package matchmaker pairs waiting agents into matches. A single actor
// owns the queue; joins, leaves and expiry wakeups are serialized by its
// mutex. The queue is persisted after every mutation so waiting agents
// survive a restart.
package matchmaker

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/memorysaver/agentpit-gg/internal/constants"
	"github.com/memorysaver/agentpit-gg/internal/game"
	"github.com/memorysaver/agentpit-gg/internal/logging"
	"github.com/memorysaver/agentpit-gg/internal/notify"
	"github.com/memorysaver/agentpit-gg/internal/session"
	"github.com/memorysaver/agentpit-gg/internal/storage"
)

// ErrNotQueued is returned by Leave when the agent has no queue entry.
var ErrNotQueued = errors.New("agent not queued")

// recentMatchLimit bounds how many of an agent's latest matches the
// anti-repeat check inspects.
const recentMatchLimit = 3

type queueEntry struct {
	AgentID    string    `json:"agentId"`
	TemplateID string    `json:"templateId"`
	Endpoint   string    `json:"endpoint"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

// JoinResult reports whether the caller was queued or immediately
// matched.
type JoinResult struct {
	Status  string `json:"status"`
	MatchID string `json:"matchId,omitempty"`
}

type Matchmaker struct {
	repo             storage.Repository
	notifier         notify.Notifier
	registry         *session.Registry
	queueTimeout     time.Duration
	antiRepeatWindow time.Duration

	mu    sync.Mutex
	queue []queueEntry
	timer *time.Timer
}

func New(repo storage.Repository, notifier notify.Notifier, registry *session.Registry, queueTimeout, antiRepeatWindow time.Duration) *Matchmaker {
	return &Matchmaker{
		repo:             repo,
		notifier:         notifier,
		registry:         registry,
		queueTimeout:     queueTimeout,
		antiRepeatWindow: antiRepeatWindow,
	}
}

// Restore loads the persisted queue after a restart and re-arms the
// expiry wakeup.
func (m *Matchmaker) Restore() {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, err := m.repo.LoadQueueState()
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logging.Error("failed to load queue state", err, nil)
		}
		return
	}
	if err := json.Unmarshal(raw, &m.queue); err != nil {
		logging.Error("failed to decode queue state", err, nil)
		m.queue = nil
		return
	}
	m.scheduleExpiryLocked()
	logging.Info("restored matchmaking queue", logging.Fields{"entries": len(m.queue)})
}

// Join upserts the caller's queue entry and attempts a pairing when a
// second agent is waiting. A repeated join replaces the prior entry and
// resets its timestamp.
func (m *Matchmaker) Join(agentID, templateID, endpoint string) (JoinResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.repo.UpsertAgentEndpoint(agentID, endpoint); err != nil {
		return JoinResult{}, err
	}

	m.removeLocked(agentID)
	m.queue = append(m.queue, queueEntry{
		AgentID:    agentID,
		TemplateID: templateID,
		Endpoint:   endpoint,
		EnqueuedAt: time.Now(),
	})

	if len(m.queue) < 2 {
		m.persistQueueLocked()
		m.scheduleExpiryLocked()
		return JoinResult{Status: constants.StatusQueued}, nil
	}

	a := m.queue[0]
	b := m.pickOpponentLocked(a)

	matchID, err := m.startMatchLocked(a, b)
	if err != nil {
		return JoinResult{}, err
	}

	if a.AgentID == agentID || b.AgentID == agentID {
		return JoinResult{Status: constants.StatusMatched, MatchID: matchID}, nil
	}
	return JoinResult{Status: constants.StatusQueued}, nil
}

// pickOpponentLocked scans past the front entry for the first candidate
// the front agent has not faced inside the anti-repeat window, falling
// back to the very next entry so a fully queued pair never stays
// unpaired.
func (m *Matchmaker) pickOpponentLocked(a queueEntry) queueEntry {
	since := time.Now().Add(-m.antiRepeatWindow)
	for _, candidate := range m.queue[1:] {
		if !m.recentlyMatched(a.AgentID, candidate.AgentID, since) {
			return candidate
		}
	}
	return m.queue[1]
}

// recentlyMatched reports whether the pair appears in either agent's
// most recent matches inside the window.
func (m *Matchmaker) recentlyMatched(agentA, agentB string, since time.Time) bool {
	for _, pair := range [][2]string{{agentA, agentB}, {agentB, agentA}} {
		opponents, err := m.repo.RecentOpponents(pair[0], since, recentMatchLimit)
		if err != nil {
			logging.Error("anti-repeat lookup failed", err, logging.Fields{
				constants.LogFieldAgentID: pair[0],
			})
			continue
		}
		for _, opp := range opponents {
			if opp == pair[1] {
				return true
			}
		}
	}
	return false
}

// startMatchLocked removes both entries, creates the match record and
// initializes its session. A failed initialization returns both entries
// to the queue with their original timestamps and deletes the record.
func (m *Matchmaker) startMatchLocked(a, b queueEntry) (string, error) {
	m.removeLocked(a.AgentID)
	m.removeLocked(b.AgentID)

	matchID := uuid.NewString()
	rec := &storage.MatchRecord{
		ID:     matchID,
		AgentA: a.AgentID,
		AgentB: b.AgentID,
		Status: string(game.PhaseWaiting),
	}
	if err := m.repo.CreateMatch(rec); err != nil {
		m.requeueLocked(a, b)
		return "", err
	}

	sess := m.registry.Create(matchID)
	err := sess.Initialize(session.InitializeParams{
		AgentA:    a.AgentID,
		AgentB:    b.AgentID,
		TemplateA: a.TemplateID,
		TemplateB: b.TemplateID,
	})
	if err != nil {
		logging.Error("match initialization failed, re-queueing both agents", err, logging.Fields{
			constants.LogFieldMatchID: matchID,
		})
		if delErr := m.repo.DeleteMatch(matchID); delErr != nil {
			logging.Error("failed to delete aborted match record", delErr, logging.Fields{
				constants.LogFieldMatchID: matchID,
			})
		}
		m.requeueLocked(a, b)
		return "", err
	}

	// Both entries are already out of the live queue; persist that before
	// anything else can fail, so a restart never resurrects a paired
	// agent.
	m.persistQueueLocked()
	m.scheduleExpiryLocked()

	if err := m.repo.MarkMatchInProgress(matchID); err != nil {
		return "", err
	}

	m.notifier.MatchStart(a.AgentID, matchID, b.AgentID, b.TemplateID)
	m.notifier.MatchStart(b.AgentID, matchID, a.AgentID, a.TemplateID)

	logging.Info("agents paired", logging.Fields{
		constants.LogFieldMatchID: matchID,
		"agent_a":                 a.AgentID,
		"agent_b":                 b.AgentID,
	})
	return matchID, nil
}

func (m *Matchmaker) requeueLocked(entries ...queueEntry) {
	m.queue = append(m.queue, entries...)
	m.persistQueueLocked()
	m.scheduleExpiryLocked()
}

// Leave removes the caller's queue entry.
func (m *Matchmaker) Leave(agentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.removeLocked(agentID) {
		return ErrNotQueued
	}
	m.persistQueueLocked()
	m.scheduleExpiryLocked()
	return nil
}

func (m *Matchmaker) removeLocked(agentID string) bool {
	for i, e := range m.queue {
		if e.AgentID == agentID {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			return true
		}
	}
	return false
}

// handleExpiry drops entries past the queue timeout, notifies their
// agents and re-arms the wakeup for the soonest remaining expiry.
func (m *Matchmaker) handleExpiry() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-m.queueTimeout)
	kept := m.queue[:0]
	var expired []queueEntry
	for _, e := range m.queue {
		if e.EnqueuedAt.Before(cutoff) || e.EnqueuedAt.Equal(cutoff) {
			expired = append(expired, e)
		} else {
			kept = append(kept, e)
		}
	}
	m.queue = kept

	for _, e := range expired {
		logging.Info("queue entry expired", logging.Fields{
			constants.LogFieldAgentID: e.AgentID,
		})
		m.notifier.QueueTimeout(e.AgentID, e.TemplateID)
	}

	if len(expired) > 0 {
		m.persistQueueLocked()
	}
	m.scheduleExpiryLocked()
}

// scheduleExpiryLocked arms a single wakeup at the earliest entry's
// expiry; scheduling always supersedes the previous timer.
func (m *Matchmaker) scheduleExpiryLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	if len(m.queue) == 0 {
		return
	}
	earliest := m.queue[0].EnqueuedAt
	for _, e := range m.queue[1:] {
		if e.EnqueuedAt.Before(earliest) {
			earliest = e.EnqueuedAt
		}
	}
	m.timer = time.AfterFunc(time.Until(earliest.Add(m.queueTimeout)), m.handleExpiry)
}

func (m *Matchmaker) persistQueueLocked() {
	raw, err := json.Marshal(m.queue)
	if err != nil {
		logging.Error("failed to encode queue state", err, nil)
		return
	}
	if err := m.repo.SaveQueueState(raw); err != nil {
		logging.Error("failed to persist queue state", err, nil)
	}
}
