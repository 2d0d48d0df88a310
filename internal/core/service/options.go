package service

import (
	"time"

	"github.com/johnnychen-a11y/energy-flow-insights/internal/config"
	"go.uber.org/zap"
)

func TimingsFromConfig(cfg config.CommandConfig) CommandTimings {
	return CommandTimings{
		Sending: time.Duration(cfg.SendingMillis) * time.Millisecond,
		Commit:  time.Duration(cfg.CommitMillis) * time.Millisecond,
		Reset:   time.Duration(cfg.ResetMillis) * time.Millisecond,
	}
}

// OptionsFromConfig builds store options running on the system clock.
func OptionsFromConfig(cfg *config.Config, logger *zap.Logger) FleetStoreOptions {
	return FleetStoreOptions{
		Clock:         SystemClock{},
		Rand:          NewRandomSource(cfg.Simulation.Seed),
		Timings:       TimingsFromConfig(cfg.Command),
		AlertCooldown: cfg.Alerts.Cooldown(),
		MaxAlerts:     cfg.Alerts.MaxLog,
		Logger:        logger,
	}
}
