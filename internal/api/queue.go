package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/memorysaver/agentpit-gg/internal/constants"
	"github.com/memorysaver/agentpit-gg/internal/logging"
	"github.com/memorysaver/agentpit-gg/internal/matchmaker"
)

type JoinRequest struct {
	AgentID          string `json:"agentId" binding:"required"`
	TemplateID       string `json:"templateId" binding:"required"`
	CallbackEndpoint string `json:"callbackEndpoint" binding:"required"`
}

type LeaveRequest struct {
	AgentID string `json:"agentId" binding:"required"`
}

// JoinQueue enqueues the agent, pairing it immediately when an opponent
// is already waiting.
func (h *Handler) JoinQueue(c *gin.Context) {
	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}

	if _, err := h.repo.GetTemplate(req.TemplateID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrTemplateNotFound})
		return
	}

	res, err := h.matchmaker.Join(req.AgentID, req.TemplateID, req.CallbackEndpoint)
	if err != nil {
		logging.Error("queue join failed", err, logging.Fields{constants.LogFieldAgentID: req.AgentID})
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedJoinQueue})
		return
	}
	c.JSON(http.StatusOK, res)
}

// LeaveQueue removes the agent's queue entry.
func (h *Handler) LeaveQueue(c *gin.Context) {
	var req LeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}

	if err := h.matchmaker.Leave(req.AgentID); err != nil {
		if errors.Is(err, matchmaker.ErrNotQueued) {
			c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrAgentNotQueued})
			return
		}
		logging.Error("queue leave failed", err, logging.Fields{constants.LogFieldAgentID: req.AgentID})
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyStatus: constants.StatusLeft})
}
