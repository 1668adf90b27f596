package storage

import (
	"time"

	"github.com/memorysaver/agentpit-gg/internal/game"
)

type Repository interface {
	// Templates
	ListTemplates() ([]game.PartyTemplateDefinition, error)
	GetTemplate(id string) (*game.PartyTemplateDefinition, error)

	// Matches
	CreateMatch(rec *MatchRecord) error
	GetMatch(matchID string) (*MatchRecord, error)
	DeleteMatch(matchID string) error
	MarkMatchInProgress(matchID string) error
	SaveMatchState(matchID string, st *game.MatchState) error
	LoadMatchState(matchID string) (*game.MatchState, error)
	// ListInProgressMatchIDs returns ids of matches that were live when
	// the process last stopped, for session rehydration at startup.
	ListInProgressMatchIDs() ([]string, error)
	FinalizeMatch(matchID string, winnerAgentID *string, st *game.MatchState) error

	// RecentOpponents returns the opponents the agent faced in its most
	// recent matches created at or after the cutoff, newest first,
	// at most limit entries.
	RecentOpponents(agentID string, since time.Time, limit int) ([]string, error)

	// Agents
	UpsertAgentEndpoint(agentID, webhookURL string) error
	GetAgentEndpoint(agentID string) (string, error)

	// Webhook delivery audit trail
	AppendWebhookLog(rec *WebhookLogRecord) error

	// Matchmaking queue snapshot
	SaveQueueState(dataJSON []byte) error
	LoadQueueState() ([]byte, error)
}
