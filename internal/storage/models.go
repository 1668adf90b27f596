package storage

import "time"

// MatchRecord is the persisted row for one match. StateJSON carries the
// full serialized match state so a session can be rehydrated after a
// restart; the scalar columns exist for querying without unmarshalling.
type MatchRecord struct {
	ID            string `gorm:"primaryKey"`
	AgentA        string `gorm:"index"`
	AgentB        string `gorm:"index"`
	Status        string `gorm:"index"`
	WinnerAgentID *string
	StateJSON     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CompletedAt   *time.Time
}

// AgentRecord stores the last webhook endpoint an agent registered when
// joining the queue.
type AgentRecord struct {
	AgentID    string `gorm:"primaryKey"`
	WebhookURL string
	UpdatedAt  time.Time
}

// TemplateRecord persists one party template as its JSON definition.
type TemplateRecord struct {
	ID             string `gorm:"primaryKey"`
	Name           string
	DefinitionJSON string
	CreatedAt      time.Time
}

// WebhookLogRecord is one delivery attempt of an outbound notification.
type WebhookLogRecord struct {
	ID         uint   `gorm:"primaryKey"`
	MatchID    string `gorm:"index"`
	AgentID    string `gorm:"index"`
	Event      string
	Attempt    int
	StatusCode int
	Error      string
	CreatedAt  time.Time
}

// QueueStateRecord is a singleton row holding the serialized matchmaking
// queue so waiting agents survive a restart.
type QueueStateRecord struct {
	ID        uint `gorm:"primaryKey"`
	DataJSON  string
	UpdatedAt time.Time
}
