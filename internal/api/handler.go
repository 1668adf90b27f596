// Package api exposes the HTTP surface: match lifecycle, matchmaking
// queue, template catalog and the spectator websocket.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/memorysaver/agentpit-gg/internal/constants"
	"github.com/memorysaver/agentpit-gg/internal/matchmaker"
	"github.com/memorysaver/agentpit-gg/internal/session"
	"github.com/memorysaver/agentpit-gg/internal/storage"
)

type Handler struct {
	repo       storage.Repository
	registry   *session.Registry
	matchmaker *matchmaker.Matchmaker
	hub        *Hub
}

func NewHandler(repo storage.Repository, registry *session.Registry, mm *matchmaker.Matchmaker, hub *Hub) *Handler {
	return &Handler{repo: repo, registry: registry, matchmaker: mm, hub: hub}
}

// RegisterRoutes wires every endpoint under the API prefix.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	apiGroup := r.Group(constants.RouteAPIPrefix)
	apiGroup.GET(constants.RouteVersion, Version)
	apiGroup.GET(constants.RouteTemplates, h.ListTemplates)
	apiGroup.POST(constants.RouteQueueJoin, h.JoinQueue)
	apiGroup.POST(constants.RouteQueueLeave, h.LeaveQueue)
	apiGroup.POST(constants.RouteMatchInitialize, h.InitializeMatch)
	apiGroup.GET(constants.RouteMatchState, h.GetState)
	apiGroup.POST(constants.RouteMatchActions, h.SubmitActions)
	apiGroup.POST(constants.RouteMatchForfeit, h.Forfeit)
	apiGroup.GET(constants.RouteMatchSpectate, h.Spectate)
}

// callerAgentID extracts the agent identity header, replying 401 when it
// is absent.
func callerAgentID(c *gin.Context) (string, bool) {
	agentID := c.GetHeader(constants.HeaderAgentID)
	if agentID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrAgentHeaderMissing})
		return "", false
	}
	return agentID, true
}
