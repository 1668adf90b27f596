// Package notify delivers outbound webhook events to agents. Delivery is
// fire-and-forget with bounded retries; a failed delivery never blocks or
// reverts match progression.
package notify

import "github.com/memorysaver/agentpit-gg/internal/game"

// Event names carried in every webhook envelope.
const (
	EventYourTurn     = "your_turn"
	EventMatchStart   = "match_start"
	EventMatchEnd     = "match_end"
	EventQueueTimeout = "queue_timeout"
)

// Notifier pushes game events to an agent's registered webhook endpoint.
type Notifier interface {
	YourTurn(agentID, matchID string, state *game.StateView)
	MatchStart(agentID, matchID, opponentAgentID, templateID string)
	MatchEnd(agentID, matchID string, winnerAgentID *string, stats game.MatchStats)
	QueueTimeout(agentID, templateID string)
}

type yourTurnPayload struct {
	Event   string          `json:"event"`
	MatchID string          `json:"matchId"`
	State   *game.StateView `json:"state"`
}

type matchStartPayload struct {
	Event           string `json:"event"`
	MatchID         string `json:"matchId"`
	OpponentAgentID string `json:"opponentAgentId"`
	TemplateID      string `json:"templateId"`
}

type matchEndPayload struct {
	Event         string          `json:"event"`
	MatchID       string          `json:"matchId"`
	WinnerAgentID *string         `json:"winnerAgentId"`
	Stats         game.MatchStats `json:"stats"`
}

type queueTimeoutPayload struct {
	Event      string `json:"event"`
	AgentID    string `json:"agentId"`
	TemplateID string `json:"templateId"`
}
