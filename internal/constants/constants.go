package constants

// Centralized constants for headers, env keys and route paths.
const (
	// Environment variable keys
	EnvConfigPath = "ARENA_CONFIG"
	EnvDBDSN      = "ARENA_DB_DSN"
	EnvDBDriver   = "ARENA_DB_DRIVER"
	EnvAddr       = "ARENA_ADDR"

	// HTTP headers and content types
	HeaderAgentID     = "X-Agent-Id"
	HeaderContentType = "Content-Type"

	ContentTypeJSON = "application/json"
)

// Routes used by the backend router
const (
	RouteAPIPrefix       = "/api"
	RouteVersion         = "/version"
	RouteTemplates       = "/templates"
	RouteQueueJoin       = "/queue/join"
	RouteQueueLeave      = "/queue/leave"
	RouteMatchInitialize = "/matches/:matchID/initialize"
	RouteMatchState      = "/matches/:matchID/state"
	RouteMatchActions    = "/matches/:matchID/actions"
	RouteMatchForfeit    = "/matches/:matchID/forfeit"
	RouteMatchSpectate   = "/matches/:matchID/spectate"
)

// Common JSON response keys
const (
	JSONKeyError  = "error"
	JSONKeyStatus = "status"
)

// Common error messages used across API handlers
const (
	ErrInvalidRequest     = "Invalid request"
	ErrMatchNotFound      = "Match not found"
	ErrAgentHeaderMissing = "Missing X-Agent-Id header"
	ErrNotAParticipant    = "Agent is not a participant of this match"
	ErrNotYourTurn        = "Not your turn"
	ErrMatchNotInProgress = "Match is not in progress"
	ErrTooManyActions     = "At most 6 actions may be submitted"
	ErrReasoningTooLong   = "Reasoning exceeds 4096 characters"
	ErrTemplateNotFound   = "Template not found"
	ErrFailedInitMatch    = "Failed to initialize match"
	ErrFailedFetchState   = "Failed to fetch match state"
	ErrAgentNotQueued     = "Agent not queued"
	ErrFailedJoinQueue    = "Failed to join queue"
)

// Status values returned by the API
const (
	StatusInitialized = "initialized"
	StatusOK          = "ok"
	StatusForfeited   = "forfeited"
	StatusQueued      = "queued"
	StatusMatched     = "matched"
	StatusLeft        = "left"
)

// Logging field names
const (
	LogFieldMatchID  = "match_id"
	LogFieldAgentID  = "agent_id"
	LogFieldPartyID  = "party_id"
	LogFieldEvent    = "event"
	LogFieldAttempt  = "attempt"
	LogFieldHTTPCode = "http_status"
	LogFieldAddr     = "addr"
	LogFieldRound    = "round"
)
