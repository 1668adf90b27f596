package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/memorysaver/agentpit-gg/internal/api"
	"github.com/memorysaver/agentpit-gg/internal/config"
	"github.com/memorysaver/agentpit-gg/internal/constants"
	"github.com/memorysaver/agentpit-gg/internal/logging"
	"github.com/memorysaver/agentpit-gg/internal/matchmaker"
	"github.com/memorysaver/agentpit-gg/internal/notify"
	"github.com/memorysaver/agentpit-gg/internal/session"
)

func main() {
	// A local .env is optional; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	configPath := os.Getenv(constants.EnvConfigPath)
	if configPath == "" {
		configPath = config.DefaultConfigPath
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logging.Fatal("Invalid arena configuration", err, logging.Fields{"config_path": configPath})
	}

	repo := createRepositoryOrExit(cfg)
	notifier := notify.NewWebhookNotifier(repo)
	hub := api.NewHub()
	registry := session.NewRegistry(repo, notifier, hub, cfg.TurnTimeout)
	mm := matchmaker.New(repo, notifier, registry, cfg.QueueTimeout, cfg.AntiRepeatWindow)

	// Resume whatever the previous process left running.
	registry.RehydrateInProgress()
	mm.Restore()

	scheduler := startBackgroundJobs(registry)
	defer func() { _ = scheduler.Shutdown() }()

	handler := api.NewHandler(repo, registry, mm, hub)
	router := gin.Default()
	handler.RegisterRoutes(router)

	addr := cfg.ServerAddress
	logging.Info("Server started", logging.Fields{constants.LogFieldAddr: addr})
	if err := router.Run(addr); err != nil {
		logging.Fatal("Failed to start server", err, nil)
	}
}
