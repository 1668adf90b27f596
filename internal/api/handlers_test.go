package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/memorysaver/agentpit-gg/internal/constants"
	"github.com/memorysaver/agentpit-gg/internal/game"
	"github.com/memorysaver/agentpit-gg/internal/matchmaker"
	"github.com/memorysaver/agentpit-gg/internal/session"
	"github.com/memorysaver/agentpit-gg/internal/storage"
)

type mockRepoAPI struct {
	storage.Repository
	mu      sync.Mutex
	matches map[string]*storage.MatchRecord
	states  map[string]*game.MatchState
}

func newMockRepoAPI() *mockRepoAPI {
	return &mockRepoAPI{
		matches: make(map[string]*storage.MatchRecord),
		states:  make(map[string]*game.MatchState),
	}
}

func (m *mockRepoAPI) GetTemplate(id string) (*game.PartyTemplateDefinition, error) {
	for _, def := range game.DefaultTemplates() {
		if def.ID == id {
			d := def
			return &d, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *mockRepoAPI) ListTemplates() ([]game.PartyTemplateDefinition, error) {
	return game.DefaultTemplates(), nil
}

func (m *mockRepoAPI) GetMatch(matchID string) (*storage.MatchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.matches[matchID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return rec, nil
}

func (m *mockRepoAPI) CreateMatch(rec *storage.MatchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches[rec.ID] = rec
	return nil
}

func (m *mockRepoAPI) DeleteMatch(matchID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.matches, matchID)
	return nil
}

func (m *mockRepoAPI) MarkMatchInProgress(matchID string) error { return nil }

func (m *mockRepoAPI) SaveMatchState(matchID string, st *game.MatchState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, _ := json.Marshal(st)
	var cp game.MatchState
	_ = json.Unmarshal(raw, &cp)
	m.states[matchID] = &cp
	return nil
}

func (m *mockRepoAPI) LoadMatchState(matchID string) (*game.MatchState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[matchID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	raw, _ := json.Marshal(st)
	var cp game.MatchState
	_ = json.Unmarshal(raw, &cp)
	return &cp, nil
}

func (m *mockRepoAPI) FinalizeMatch(matchID string, winner *string, st *game.MatchState) error {
	return m.SaveMatchState(matchID, st)
}

func (m *mockRepoAPI) UpsertAgentEndpoint(agentID, webhookURL string) error { return nil }

func (m *mockRepoAPI) RecentOpponents(agentID string, since time.Time, limit int) ([]string, error) {
	return nil, nil
}

func (m *mockRepoAPI) SaveQueueState(dataJSON []byte) error { return nil }

func (m *mockRepoAPI) LoadQueueState() ([]byte, error) { return nil, storage.ErrNotFound }

type noopNotifier struct{}

func (noopNotifier) YourTurn(agentID, matchID string, state *game.StateView)                 {}
func (noopNotifier) MatchStart(agentID, matchID, opponentAgentID, templateID string)         {}
func (noopNotifier) MatchEnd(agentID, matchID string, winner *string, stats game.MatchStats) {}
func (noopNotifier) QueueTimeout(agentID, templateID string)                                 {}

func newTestRouter(t *testing.T) (*gin.Engine, *mockRepoAPI) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newMockRepoAPI()
	hub := NewHub()
	registry := session.NewRegistry(repo, noopNotifier{}, hub, time.Hour)
	mm := matchmaker.New(repo, noopNotifier{}, registry, 5*time.Minute, 30*time.Minute)
	handler := NewHandler(repo, registry, mm, hub)

	r := gin.New()
	handler.RegisterRoutes(r)
	return r, repo
}

func doJSON(r *gin.Engine, method, path, agentID string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	if agentID != "" {
		req.Header.Set(constants.HeaderAgentID, agentID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func initMatch(t *testing.T, r *gin.Engine, matchID string) {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/matches/"+matchID+"/initialize", "", InitializeRequest{
		AgentA: "agent-a", AgentB: "agent-b",
		TemplateA: "balanced", TemplateB: "balanced",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("initialize returned %d: %s", w.Code, w.Body.String())
	}
}

func TestInitializeMatch(t *testing.T) {
	r, repo := newTestRouter(t)

	initMatch(t, r, "m1")

	if _, ok := repo.matches["m1"]; !ok {
		t.Fatal("match record missing after initialize")
	}
	// Repeated initialization conflicts.
	w := doJSON(r, http.MethodPost, "/api/matches/m1/initialize", "", InitializeRequest{
		AgentA: "x", AgentB: "y", TemplateA: "balanced", TemplateB: "balanced",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 on repeat initialize, got %d", w.Code)
	}
}

func TestInitializeUnknownTemplate(t *testing.T) {
	r, repo := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/matches/m1/initialize", "", InitializeRequest{
		AgentA: "agent-a", AgentB: "agent-b",
		TemplateA: "balanced", TemplateB: "no-such",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if len(repo.matches) != 0 {
		t.Fatal("aborted initialization should not leave a match record")
	}
}

func TestGetStateAuth(t *testing.T) {
	r, _ := newTestRouter(t)
	initMatch(t, r, "m1")

	if w := doJSON(r, http.MethodGet, "/api/matches/m1/state", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing header should be 401, got %d", w.Code)
	}
	if w := doJSON(r, http.MethodGet, "/api/matches/m1/state", "stranger", nil); w.Code != http.StatusForbidden {
		t.Fatalf("outsider should be 403, got %d", w.Code)
	}
	if w := doJSON(r, http.MethodGet, "/api/matches/ghost/state", "agent-a", nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown match should be 404, got %d", w.Code)
	}

	w := doJSON(r, http.MethodGet, "/api/matches/m1/state", "agent-a", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var view game.StateView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("bad state body: %v", err)
	}
	if view.MatchID != "m1" || view.Round != 1 {
		t.Fatalf("unexpected view: %+v", view)
	}
	if !strings.Contains(w.Body.String(), "unknown") {
		t.Fatal("enemy resistances should serialize as the unknown sentinel")
	}
}

func TestSubmitActionsValidation(t *testing.T) {
	r, _ := newTestRouter(t)
	initMatch(t, r, "m1")

	tooMany := make([]game.Action, 7)
	for i := range tooMany {
		tooMany[i] = game.Action{CharacterID: "x", ActionType: game.ActionDefend}
	}
	w := doJSON(r, http.MethodPost, "/api/matches/m1/actions", "agent-a", SubmitActionsRequest{Actions: tooMany})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("7 actions should be 400, got %d", w.Code)
	}

	long := strings.Repeat("r", maxReasoningLength+1)
	w = doJSON(r, http.MethodPost, "/api/matches/m1/actions", "agent-a", SubmitActionsRequest{Reasoning: &long})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("oversize reasoning should be 400, got %d", w.Code)
	}
}

func TestSubmitCastWithoutSlotsRejected(t *testing.T) {
	r, _ := newTestRouter(t)
	initMatch(t, r, "m1")

	w := doJSON(r, http.MethodGet, "/api/matches/m1/state", "agent-a", nil)
	var view game.StateView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil || view.ActiveAgentID == nil {
		t.Fatalf("could not determine active agent: %v %s", err, w.Body.String())
	}
	active := *view.ActiveAgentID
	activePartyID := "m1:A"
	if active == "agent-b" {
		activePartyID = "m1:B"
	}

	w = doJSON(r, http.MethodGet, "/api/matches/m1/state", active, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("bad state body: %v", err)
	}
	var slotless string
	for _, p := range view.Parties {
		if p.ID != activePartyID {
			continue
		}
		for _, c := range p.Characters {
			if len(c.SpellSlots) == 0 {
				slotless = c.ID
				break
			}
		}
	}
	if slotless == "" {
		t.Fatal("template has no character without spell slots")
	}

	w = doJSON(r, http.MethodPost, "/api/matches/m1/actions", active, SubmitActionsRequest{
		Actions: []game.Action{{CharacterID: slotless, ActionType: game.ActionCastSpell}},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("slotless cast should be 400, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "spell slots") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestSubmitActionsTurnOrder(t *testing.T) {
	r, _ := newTestRouter(t)
	initMatch(t, r, "m1")

	w := doJSON(r, http.MethodGet, "/api/matches/m1/state", "agent-a", nil)
	var view game.StateView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil || view.ActiveAgentID == nil {
		t.Fatalf("could not determine active agent: %v %s", err, w.Body.String())
	}
	active := *view.ActiveAgentID
	waiting := "agent-b"
	if active == "agent-b" {
		waiting = "agent-a"
	}

	if w := doJSON(r, http.MethodPost, "/api/matches/m1/actions", waiting, SubmitActionsRequest{}); w.Code != http.StatusConflict {
		t.Fatalf("out-of-turn submission should be 409, got %d", w.Code)
	}
	if w := doJSON(r, http.MethodPost, "/api/matches/m1/actions", active, SubmitActionsRequest{}); w.Code != http.StatusOK {
		t.Fatalf("active party's submission should be accepted, got %d: %s", w.Code, w.Body.String())
	}
	// The turn passed; the previous active agent now conflicts.
	if w := doJSON(r, http.MethodPost, "/api/matches/m1/actions", active, SubmitActionsRequest{}); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 after the turn passed, got %d", w.Code)
	}
}

func TestForfeitEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	initMatch(t, r, "m1")

	w := doJSON(r, http.MethodPost, "/api/matches/m1/forfeit", "agent-a", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("forfeit returned %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), constants.StatusForfeited) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	// The match is over; a second forfeit conflicts.
	if w := doJSON(r, http.MethodPost, "/api/matches/m1/forfeit", "agent-b", nil); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 after completion, got %d", w.Code)
	}
}

func TestQueueEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/queue/join", "", JoinRequest{
		AgentID: "agent-a", TemplateID: "no-such", CallbackEndpoint: "http://a.example/hook",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown template should be 400, got %d", w.Code)
	}

	w = doJSON(r, http.MethodPost, "/api/queue/join", "", JoinRequest{
		AgentID: "agent-a", TemplateID: "balanced", CallbackEndpoint: "http://a.example/hook",
	})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), constants.StatusQueued) {
		t.Fatalf("join returned %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodPost, "/api/queue/join", "", JoinRequest{
		AgentID: "agent-b", TemplateID: "balanced", CallbackEndpoint: "http://b.example/hook",
	})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), constants.StatusMatched) {
		t.Fatalf("second join should match, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodPost, "/api/queue/leave", "", LeaveRequest{AgentID: "agent-a"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("leave after matching should be 404, got %d", w.Code)
	}
}

func TestListTemplates(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodGet, "/api/templates", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("templates returned %d", w.Code)
	}
	var body struct {
		Templates []game.PartyTemplateDefinition `json:"templates"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(body.Templates) != 5 {
		t.Fatalf("expected 5 built-in templates, got %d", len(body.Templates))
	}
}
