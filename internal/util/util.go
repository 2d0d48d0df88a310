package util

import (
	"github.com/johnnychen-a11y/energy-flow-insights/internal/config"

	"go.uber.org/zap"
)

// LoadTestConfig returns a valid configuration with fast timers and MQTT
// disabled.
func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		MQTT: config.MQTTConfig{
			Enable:           false,
			Host:             "localhost",
			Port:             1883,
			BaseTopic:        "fleetwatch_test",
			HADiscoveryTopic: "homeassistant",
		},
		Simulation: config.SimulationConfig{
			TickIntervalMillis: 100,
			Seed:               42,
		},
		Monitor: config.MonitorConfig{
			PollIntervalMillis: 1000,
		},
		Command: config.CommandConfig{
			SendingMillis: 50,
			CommitMillis:  150,
			ResetMillis:   300,
		},
		Alerts: config.AlertsConfig{
			CooldownMillis: 30000,
			MaxLog:         50,
		},
		Metrics: config.MetricsConfig{
			Enable: true,
		},
		Port: 8080,
	}
}
