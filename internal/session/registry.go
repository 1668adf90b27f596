package session

import (
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/memorysaver/agentpit-gg/internal/constants"
	"github.com/memorysaver/agentpit-gg/internal/logging"
	"github.com/memorysaver/agentpit-gg/internal/notify"
	"github.com/memorysaver/agentpit-gg/internal/storage"
)

// Registry maps match ids to live sessions. Sessions for matches that
// were in progress when the process stopped are rehydrated from their
// persisted state on first access; singleflight collapses concurrent
// rehydrations of the same match into one load.
type Registry struct {
	repo        storage.Repository
	notifier    notify.Notifier
	broadcaster Broadcaster
	turnTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
	group    singleflight.Group
}

func NewRegistry(repo storage.Repository, notifier notify.Notifier, broadcaster Broadcaster, turnTimeout time.Duration) *Registry {
	return &Registry{
		repo:        repo,
		notifier:    notifier,
		broadcaster: broadcaster,
		turnTimeout: turnTimeout,
		sessions:    make(map[string]*Session),
	}
}

// Create registers a fresh, uninitialized session for a new match id.
func (r *Registry) Create(matchID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[matchID]; ok {
		return s
	}
	s := New(matchID, r.repo, r.notifier, r.broadcaster, r.turnTimeout)
	r.sessions[matchID] = s
	return s
}

// Get returns the live session for a match, rehydrating it from
// persisted state when the process does not hold it in memory.
func (r *Registry) Get(matchID string) (*Session, error) {
	r.mu.Lock()
	if s, ok := r.sessions[matchID]; ok {
		r.mu.Unlock()
		return s, nil
	}
	r.mu.Unlock()

	v, err, _ := r.group.Do(matchID, func() (interface{}, error) {
		st, err := r.repo.LoadMatchState(matchID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, ErrMatchNotFound
			}
			return nil, err
		}

		s := New(matchID, r.repo, r.notifier, r.broadcaster, r.turnTimeout)
		s.resume(st)

		r.mu.Lock()
		if existing, ok := r.sessions[matchID]; ok {
			r.mu.Unlock()
			return existing, nil
		}
		r.sessions[matchID] = s
		r.mu.Unlock()

		logging.Info("session rehydrated", logging.Fields{
			constants.LogFieldMatchID: matchID,
		})
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// RehydrateInProgress resumes every match that was live at the last
// shutdown, re-arming their turn timers.
func (r *Registry) RehydrateInProgress() {
	ids, err := r.repo.ListInProgressMatchIDs()
	if err != nil {
		logging.Error("failed to list in-progress matches", err, nil)
		return
	}
	for _, id := range ids {
		if _, err := r.Get(id); err != nil {
			logging.Error("failed to rehydrate match", err, logging.Fields{
				constants.LogFieldMatchID: id,
			})
		}
	}
	if len(ids) > 0 {
		logging.Info("rehydrated in-progress matches", logging.Fields{"count": len(ids)})
	}
}

// EvictCompleted drops sessions whose matches reached the terminal
// phase. Their state stays available through persistence.
func (r *Registry) EvictCompleted() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sessions {
		if s.Completed() {
			delete(r.sessions, id)
			logging.Debug("evicted completed session", logging.Fields{
				constants.LogFieldMatchID: id,
			})
		}
	}
}
