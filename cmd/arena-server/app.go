package main

import (
	"github.com/memorysaver/agentpit-gg/internal/config"
	"github.com/memorysaver/agentpit-gg/internal/logging"
	"github.com/memorysaver/agentpit-gg/internal/storage"
)

func createRepositoryOrExit(cfg *config.Config) storage.Repository {
	db, err := storage.OpenAndMigrate(cfg.DBDriver, cfg.DBDSN, cfg.Templates)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, logging.Fields{
			"driver": cfg.DBDriver,
		})
	}
	return storage.NewGormRepository(db)
}
