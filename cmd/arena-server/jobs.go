package main

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/memorysaver/agentpit-gg/internal/logging"
	"github.com/memorysaver/agentpit-gg/internal/session"
)

// startBackgroundJobs runs the periodic housekeeping: completed sessions
// are dropped from memory once their matches are finalized, and any
// in-progress match without a live session is picked back up so its
// turn timer keeps running.
func startBackgroundJobs(registry *session.Registry) gocron.Scheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		logging.Fatal("Failed to create scheduler", err, nil)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(time.Minute),
		gocron.NewTask(registry.EvictCompleted),
	)
	if err != nil {
		logging.Fatal("Failed to schedule session eviction", err, nil)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(time.Minute),
		gocron.NewTask(registry.RehydrateInProgress),
	)
	if err != nil {
		logging.Fatal("Failed to schedule session sweep", err, nil)
	}

	scheduler.Start()
	return scheduler
}
