package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/memorysaver/agentpit-gg/internal/constants"
	"github.com/memorysaver/agentpit-gg/internal/game"
	"github.com/memorysaver/agentpit-gg/internal/logging"
	"github.com/memorysaver/agentpit-gg/internal/storage"
)

const maxAttempts = 3

var retryDelays = []time.Duration{250 * time.Millisecond, 500 * time.Millisecond}

// WebhookNotifier implements Notifier over plain HTTP POST. Each event is
// delivered in its own goroutine; attempts and their HTTP status are
// written to the webhook audit log.
type WebhookNotifier struct {
	repo   storage.Repository
	client *http.Client
	sleep  func(time.Duration)
}

func NewWebhookNotifier(repo storage.Repository) *WebhookNotifier {
	return &WebhookNotifier{
		repo:   repo,
		client: &http.Client{Timeout: 10 * time.Second},
		sleep:  time.Sleep,
	}
}

func (n *WebhookNotifier) YourTurn(agentID, matchID string, state *game.StateView) {
	go n.deliver(agentID, matchID, EventYourTurn, yourTurnPayload{
		Event: EventYourTurn, MatchID: matchID, State: state,
	})
}

func (n *WebhookNotifier) MatchStart(agentID, matchID, opponentAgentID, templateID string) {
	go n.deliver(agentID, matchID, EventMatchStart, matchStartPayload{
		Event: EventMatchStart, MatchID: matchID, OpponentAgentID: opponentAgentID, TemplateID: templateID,
	})
}

func (n *WebhookNotifier) MatchEnd(agentID, matchID string, winnerAgentID *string, stats game.MatchStats) {
	go n.deliver(agentID, matchID, EventMatchEnd, matchEndPayload{
		Event: EventMatchEnd, MatchID: matchID, WinnerAgentID: winnerAgentID, Stats: stats,
	})
}

func (n *WebhookNotifier) QueueTimeout(agentID, templateID string) {
	go n.deliver(agentID, "", EventQueueTimeout, queueTimeoutPayload{
		Event: EventQueueTimeout, AgentID: agentID, TemplateID: templateID,
	})
}

// deliver posts the payload with bounded retries. Final failure is logged
// and swallowed.
func (n *WebhookNotifier) deliver(agentID, matchID, event string, payload interface{}) {
	endpoint, err := n.repo.GetAgentEndpoint(agentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logging.Debug("no webhook endpoint registered for agent", logging.Fields{
				constants.LogFieldAgentID: agentID,
				constants.LogFieldEvent:   event,
			})
			return
		}
		logging.Error("failed to resolve webhook endpoint", err, logging.Fields{
			constants.LogFieldAgentID: agentID,
			constants.LogFieldEvent:   event,
		})
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		logging.Error("failed to encode webhook payload", err, logging.Fields{
			constants.LogFieldAgentID: agentID,
			constants.LogFieldEvent:   event,
		})
		return
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		status, err := n.post(endpoint, body)

		logRec := &storage.WebhookLogRecord{
			MatchID:    matchID,
			AgentID:    agentID,
			Event:      event,
			Attempt:    attempt,
			StatusCode: status,
		}
		if err != nil {
			logRec.Error = err.Error()
		}
		if dbErr := n.repo.AppendWebhookLog(logRec); dbErr != nil {
			logging.Error("failed to record webhook attempt", dbErr, logging.Fields{
				constants.LogFieldAgentID: agentID,
				constants.LogFieldEvent:   event,
			})
		}

		if err == nil && status >= 200 && status < 300 {
			logging.Info("webhook delivered", logging.Fields{
				constants.LogFieldAgentID:  agentID,
				constants.LogFieldMatchID:  matchID,
				constants.LogFieldEvent:    event,
				constants.LogFieldAttempt:  attempt,
				constants.LogFieldHTTPCode: status,
			})
			return
		}
		logging.Warn("webhook attempt failed", logging.Fields{
			constants.LogFieldAgentID:  agentID,
			constants.LogFieldMatchID:  matchID,
			constants.LogFieldEvent:    event,
			constants.LogFieldAttempt:  attempt,
			constants.LogFieldHTTPCode: status,
		})

		if attempt < maxAttempts {
			n.sleep(retryDelays[attempt-1])
		}
	}
	logging.Warn("webhook delivery abandoned", logging.Fields{
		constants.LogFieldAgentID: agentID,
		constants.LogFieldMatchID: matchID,
		constants.LogFieldEvent:   event,
	})
}

func (n *WebhookNotifier) post(endpoint string, body []byte) (int, error) {
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)

	resp, err := n.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
