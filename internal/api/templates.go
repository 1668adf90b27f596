package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/memorysaver/agentpit-gg/internal/constants"
	"github.com/memorysaver/agentpit-gg/internal/logging"
)

// ListTemplates returns the party template catalog.
func (h *Handler) ListTemplates(c *gin.Context) {
	defs, err := h.repo.ListTemplates()
	if err != nil {
		logging.Error("failed to list templates", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": defs})
}
