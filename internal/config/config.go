// Package config loads the arena configuration from an optional JSON
// file, then applies environment overrides on top.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/memorysaver/agentpit-gg/internal/game"
)

const DefaultConfigPath = "./arena_config.json"

type rawConfig struct {
	Server *struct {
		Address string `json:"address"`
	} `json:"server"`
	Database *struct {
		Driver string `json:"driver"`
		DSN    string `json:"dsn"`
	} `json:"database"`
	TurnTimeoutSeconds      int `json:"turn_timeout_seconds"`
	QueueTimeoutSeconds     int `json:"queue_timeout_seconds"`
	AntiRepeatWindowMinutes int `json:"anti_repeat_window_minutes"`
	// Optional extra party templates seeded alongside the built-ins.
	Templates []game.PartyTemplateDefinition `json:"templates"`
}

type envOverrides struct {
	Address  string `env:"ARENA_ADDR"`
	DBDriver string `env:"ARENA_DB_DRIVER"`
	DBDSN    string `env:"ARENA_DB_DSN"`
}

// Config is the fully resolved runtime configuration.
type Config struct {
	ServerAddress    string
	DBDriver         string
	DBDSN            string
	TurnTimeout      time.Duration
	QueueTimeout     time.Duration
	AntiRepeatWindow time.Duration
	Templates        []game.PartyTemplateDefinition
}

// Load reads the config file at path (missing file is fine, defaults
// apply) and layers environment overrides on top.
func Load(path string) (*Config, error) {
	cfg := &Config{
		ServerAddress:    ":8080",
		DBDriver:         "sqlite",
		DBDSN:            "arena.db",
		TurnTimeout:      120 * time.Second,
		QueueTimeout:     5 * time.Minute,
		AntiRepeatWindow: 30 * time.Minute,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var rc rawConfig
		if err := json.Unmarshal(raw, &rc); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		if rc.Server != nil && rc.Server.Address != "" {
			cfg.ServerAddress = rc.Server.Address
		}
		if rc.Database != nil {
			if rc.Database.Driver != "" {
				cfg.DBDriver = rc.Database.Driver
			}
			if rc.Database.DSN != "" {
				cfg.DBDSN = rc.Database.DSN
			}
		}
		if rc.TurnTimeoutSeconds > 0 {
			cfg.TurnTimeout = time.Duration(rc.TurnTimeoutSeconds) * time.Second
		}
		if rc.QueueTimeoutSeconds > 0 {
			cfg.QueueTimeout = time.Duration(rc.QueueTimeoutSeconds) * time.Second
		}
		if rc.AntiRepeatWindowMinutes > 0 {
			cfg.AntiRepeatWindow = time.Duration(rc.AntiRepeatWindowMinutes) * time.Minute
		}
		for _, tpl := range rc.Templates {
			if tpl.ID == "" {
				return nil, fmt.Errorf("config file %s: template missing 'id'", path)
			}
			if len(tpl.Members) != game.PartySize {
				return nil, fmt.Errorf("config file %s: template '%s' must have exactly %d members", path, tpl.ID, game.PartySize)
			}
		}
		cfg.Templates = rc.Templates
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return nil, fmt.Errorf("failed to parse environment overrides: %w", err)
	}
	if overrides.Address != "" {
		cfg.ServerAddress = overrides.Address
	}
	if overrides.DBDriver != "" {
		cfg.DBDriver = overrides.DBDriver
	}
	if overrides.DBDSN != "" {
		cfg.DBDSN = overrides.DBDSN
	}
	return cfg, nil
}
