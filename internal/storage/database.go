package storage

import (
	"encoding/json"
	"fmt"

	"github.com/memorysaver/agentpit-gg/internal/game"
	"github.com/memorysaver/agentpit-gg/internal/logging"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// OpenAndMigrate opens the configured database, migrates the schema and
// seeds the template catalog when it is empty. Templates from the config
// file are seeded alongside the built-in defaults.
func OpenAndMigrate(driver, dsn string, templatesFromConfig []game.PartyTemplateDefinition) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSQLite, "":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&MatchRecord{},
		&AgentRecord{},
		&TemplateRecord{},
		&WebhookLogRecord{},
		&QueueStateRecord{},
	)
	if err != nil {
		return nil, err
	}

	seedDefaultTemplates(db, templatesFromConfig)
	return db, nil
}

func seedDefaultTemplates(db *gorm.DB, templatesFromConfig []game.PartyTemplateDefinition) {
	var count int64
	db.Model(&TemplateRecord{}).Count(&count)
	if count > 0 {
		return
	}

	defs := append(game.DefaultTemplates(), templatesFromConfig...)
	records := make([]TemplateRecord, 0, len(defs))
	for _, def := range defs {
		raw, err := json.Marshal(def)
		if err != nil {
			logging.Error("failed to encode template for seeding", err, logging.Fields{"template_id": def.ID})
			continue
		}
		records = append(records, TemplateRecord{
			ID:             def.ID,
			Name:           def.Name,
			DefinitionJSON: string(raw),
		})
	}
	if err := db.Create(&records).Error; err != nil {
		logging.Error("failed to seed party templates", err, nil)
		return
	}
	logging.Info("seeded party templates", logging.Fields{"count": len(records)})
}
