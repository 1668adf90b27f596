package storage

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/memorysaver/agentpit-gg/internal/game"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

type gormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) ListTemplates() ([]game.PartyTemplateDefinition, error) {
	var records []TemplateRecord
	if err := r.db.Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	defs := make([]game.PartyTemplateDefinition, 0, len(records))
	for _, rec := range records {
		var def game.PartyTemplateDefinition
		if err := json.Unmarshal([]byte(rec.DefinitionJSON), &def); err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (r *gormRepository) GetTemplate(id string) (*game.PartyTemplateDefinition, error) {
	var rec TemplateRecord
	if err := r.db.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var def game.PartyTemplateDefinition
	if err := json.Unmarshal([]byte(rec.DefinitionJSON), &def); err != nil {
		return nil, err
	}
	return &def, nil
}

func (r *gormRepository) CreateMatch(rec *MatchRecord) error {
	return r.db.Create(rec).Error
}

func (r *gormRepository) GetMatch(matchID string) (*MatchRecord, error) {
	var rec MatchRecord
	if err := r.db.First(&rec, "id = ?", matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *gormRepository) DeleteMatch(matchID string) error {
	return r.db.Delete(&MatchRecord{}, "id = ?", matchID).Error
}

func (r *gormRepository) MarkMatchInProgress(matchID string) error {
	return r.db.Model(&MatchRecord{}).
		Where("id = ?", matchID).
		Update("status", string(game.PhaseInProgress)).Error
}

func (r *gormRepository) SaveMatchState(matchID string, st *game.MatchState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return r.db.Model(&MatchRecord{}).
		Where("id = ?", matchID).
		Update("state_json", string(raw)).Error
}

func (r *gormRepository) LoadMatchState(matchID string) (*game.MatchState, error) {
	rec, err := r.GetMatch(matchID)
	if err != nil {
		return nil, err
	}
	if rec.StateJSON == "" {
		return nil, ErrNotFound
	}
	var st game.MatchState
	if err := json.Unmarshal([]byte(rec.StateJSON), &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *gormRepository) ListInProgressMatchIDs() ([]string, error) {
	var ids []string
	err := r.db.Model(&MatchRecord{}).
		Where("status = ?", string(game.PhaseInProgress)).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *gormRepository) FinalizeMatch(matchID string, winnerAgentID *string, st *game.MatchState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	now := time.Now()
	return r.db.Model(&MatchRecord{}).
		Where("id = ?", matchID).
		Updates(map[string]interface{}{
			"status":          string(game.PhaseCompleted),
			"winner_agent_id": winnerAgentID,
			"state_json":      string(raw),
			"completed_at":    &now,
		}).Error
}

func (r *gormRepository) RecentOpponents(agentID string, since time.Time, limit int) ([]string, error) {
	var records []MatchRecord
	err := r.db.
		Where("(agent_a = ? OR agent_b = ?) AND created_at >= ?", agentID, agentID, since).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	opponents := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.AgentA == agentID {
			opponents = append(opponents, rec.AgentB)
		} else {
			opponents = append(opponents, rec.AgentA)
		}
	}
	return opponents, nil
}

func (r *gormRepository) UpsertAgentEndpoint(agentID, webhookURL string) error {
	rec := AgentRecord{AgentID: agentID, WebhookURL: webhookURL, UpdatedAt: time.Now()}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "agent_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"webhook_url", "updated_at"}),
	}).Create(&rec).Error
}

func (r *gormRepository) GetAgentEndpoint(agentID string) (string, error) {
	var rec AgentRecord
	if err := r.db.First(&rec, "agent_id = ?", agentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return rec.WebhookURL, nil
}

func (r *gormRepository) AppendWebhookLog(rec *WebhookLogRecord) error {
	return r.db.Create(rec).Error
}

func (r *gormRepository) SaveQueueState(dataJSON []byte) error {
	rec := QueueStateRecord{ID: 1, DataJSON: string(dataJSON), UpdatedAt: time.Now()}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data_json", "updated_at"}),
	}).Create(&rec).Error
}

func (r *gormRepository) LoadQueueState() ([]byte, error) {
	var rec QueueStateRecord
	if err := r.db.First(&rec, "id = ?", 1).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(rec.DataJSON), nil
}
