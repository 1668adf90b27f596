package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/memorysaver/agentpit-gg/internal/constants"
	"github.com/memorysaver/agentpit-gg/internal/logging"
	"github.com/memorysaver/agentpit-gg/internal/session"
)

const writeWait = 10 * time.Second

// Hub fans spectator payloads out to every websocket watching a match.
// It implements session.Broadcaster.
type Hub struct {
	upgrader websocket.Upgrader

	mu       sync.Mutex
	watchers map[string]map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		watchers: make(map[string]map[*websocket.Conn]bool),
	}
}

func (h *Hub) add(matchID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.watchers[matchID] == nil {
		h.watchers[matchID] = make(map[*websocket.Conn]bool)
	}
	h.watchers[matchID][conn] = true
}

func (h *Hub) remove(matchID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.watchers[matchID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.watchers, matchID)
		}
	}
}

// Broadcast pushes the payload to every watcher of the match, dropping
// connections whose writes fail.
func (h *Hub) Broadcast(matchID string, payload session.SpectatePayload) {
	raw, err := json.Marshal(payload)
	if err != nil {
		logging.Error("failed to encode spectator payload", err, logging.Fields{
			constants.LogFieldMatchID: matchID,
		})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.watchers[matchID] {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			conn.Close()
			delete(h.watchers[matchID], conn)
		}
	}
}

// Spectate upgrades the request to a websocket, replays the current
// snapshot and streams every subsequent mutation.
func (h *Handler) Spectate(c *gin.Context) {
	matchID := c.Param("matchID")
	sess, err := h.registry.Get(matchID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrMatchNotFound})
		return
	}

	conn, err := h.hub.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Error("websocket upgrade failed", err, logging.Fields{
			constants.LogFieldMatchID: matchID,
		})
		return
	}

	if snapshot, ok := sess.Snapshot(); ok {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(snapshot); err != nil {
			conn.Close()
			return
		}
	}

	h.hub.add(matchID, conn)
	defer func() {
		h.hub.remove(matchID, conn)
		conn.Close()
	}()

	// Spectators only listen; drain control frames until the peer goes
	// away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
