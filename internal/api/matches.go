package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/memorysaver/agentpit-gg/internal/constants"
	"github.com/memorysaver/agentpit-gg/internal/game"
	"github.com/memorysaver/agentpit-gg/internal/logging"
	"github.com/memorysaver/agentpit-gg/internal/session"
	"github.com/memorysaver/agentpit-gg/internal/storage"
)

const (
	maxActionsPerTurn  = 6
	maxReasoningLength = 4096
)

type InitializeRequest struct {
	AgentA    string `json:"agentA" binding:"required"`
	AgentB    string `json:"agentB" binding:"required"`
	TemplateA string `json:"templateA" binding:"required"`
	TemplateB string `json:"templateB" binding:"required"`
}

type SubmitActionsRequest struct {
	Actions   []game.Action `json:"actions"`
	Reasoning *string       `json:"reasoning"`
}

// InitializeMatch creates the match record and starts its session
// directly, without going through the queue.
func (h *Handler) InitializeMatch(c *gin.Context) {
	matchID := c.Param("matchID")

	var req InitializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}

	if _, err := h.repo.GetMatch(matchID); err == nil {
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrFailedInitMatch})
		return
	}
	rec := &storage.MatchRecord{
		ID:     matchID,
		AgentA: req.AgentA,
		AgentB: req.AgentB,
		Status: string(game.PhaseWaiting),
	}
	if err := h.repo.CreateMatch(rec); err != nil {
		logging.Error("failed to create match record", err, logging.Fields{constants.LogFieldMatchID: matchID})
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedInitMatch})
		return
	}

	sess := h.registry.Create(matchID)
	err := sess.Initialize(session.InitializeParams{
		AgentA:    req.AgentA,
		AgentB:    req.AgentB,
		TemplateA: req.TemplateA,
		TemplateB: req.TemplateB,
	})
	if err != nil {
		if delErr := h.repo.DeleteMatch(matchID); delErr != nil {
			logging.Error("failed to delete aborted match record", delErr, logging.Fields{constants.LogFieldMatchID: matchID})
		}
		switch {
		case errors.Is(err, session.ErrAlreadyInitialized):
			c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrFailedInitMatch})
		case errors.Is(err, storage.ErrNotFound):
			c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrTemplateNotFound})
		case errors.Is(err, game.ErrInvalidPartySize):
			c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: err.Error()})
		default:
			logging.Error("failed to initialize match", err, logging.Fields{constants.LogFieldMatchID: matchID})
			c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedInitMatch})
		}
		return
	}

	if err := h.repo.MarkMatchInProgress(matchID); err != nil {
		logging.Error("failed to mark match in progress", err, logging.Fields{constants.LogFieldMatchID: matchID})
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedInitMatch})
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyStatus: constants.StatusInitialized})
}

// GetState returns the caller's fog-of-war projection of the match.
func (h *Handler) GetState(c *gin.Context) {
	agentID, ok := callerAgentID(c)
	if !ok {
		return
	}

	sess, err := h.registry.Get(c.Param("matchID"))
	if err != nil {
		if errors.Is(err, session.ErrMatchNotFound) {
			c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrMatchNotFound})
			return
		}
		logging.Error("failed to load match", err, logging.Fields{constants.LogFieldMatchID: c.Param("matchID")})
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchState})
		return
	}

	view, err := sess.View(agentID)
	if err != nil {
		if errors.Is(err, session.ErrNotParticipant) {
			c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: constants.ErrNotAParticipant})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchState})
		return
	}
	c.JSON(http.StatusOK, view)
}

// SubmitActions applies the caller's turn.
func (h *Handler) SubmitActions(c *gin.Context) {
	agentID, ok := callerAgentID(c)
	if !ok {
		return
	}

	var req SubmitActionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	if len(req.Actions) > maxActionsPerTurn {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrTooManyActions})
		return
	}
	if req.Reasoning != nil && len(*req.Reasoning) > maxReasoningLength {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrReasoningTooLong})
		return
	}

	sess, err := h.registry.Get(c.Param("matchID"))
	if err != nil {
		if errors.Is(err, session.ErrMatchNotFound) {
			c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrMatchNotFound})
			return
		}
		logging.Error("failed to load match", err, logging.Fields{constants.LogFieldMatchID: c.Param("matchID")})
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}

	if err := sess.SubmitActions(agentID, req.Actions, req.Reasoning); err != nil {
		switch {
		case errors.Is(err, session.ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: constants.ErrNotAParticipant})
		case errors.Is(err, session.ErrNotYourTurn):
			c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrNotYourTurn})
		case errors.Is(err, session.ErrMatchNotInProgress):
			c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrMatchNotInProgress})
		case errors.Is(err, session.ErrInvalidActions):
			c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: err.Error()})
		case errors.Is(err, session.ErrMatchNotFound):
			c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrMatchNotFound})
		default:
			logging.Error("failed to apply actions", err, logging.Fields{constants.LogFieldMatchID: c.Param("matchID")})
			c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyStatus: constants.StatusOK})
}

// Forfeit downs the caller's party and ends the match.
func (h *Handler) Forfeit(c *gin.Context) {
	agentID, ok := callerAgentID(c)
	if !ok {
		return
	}

	sess, err := h.registry.Get(c.Param("matchID"))
	if err != nil {
		if errors.Is(err, session.ErrMatchNotFound) {
			c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrMatchNotFound})
			return
		}
		logging.Error("failed to load match", err, logging.Fields{constants.LogFieldMatchID: c.Param("matchID")})
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}

	if err := sess.Forfeit(agentID); err != nil {
		switch {
		case errors.Is(err, session.ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: constants.ErrNotAParticipant})
		case errors.Is(err, session.ErrMatchNotInProgress):
			c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrMatchNotInProgress})
		case errors.Is(err, session.ErrMatchNotFound):
			c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrMatchNotFound})
		default:
			logging.Error("failed to forfeit match", err, logging.Fields{constants.LogFieldMatchID: c.Param("matchID")})
			c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyStatus: constants.StatusForfeited})
}
