package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/domain"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel   zapcore.Level
	MQTT       MQTTConfig       `mapstructure:"mqtt"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Monitor    MonitorConfig    `mapstructure:"monitor"`
	Command    CommandConfig    `mapstructure:"command"`
	Alerts     AlertsConfig     `mapstructure:"alerts"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Port       uint             `mapstructure:"port"`
	HttpLog    bool             `mapstructure:"http_log"`
}

type SimulationConfig struct {
	TickIntervalMillis uint32 `mapstructure:"tick_interval_millis"`
	Seed               uint64 `mapstructure:"seed"`
}

type MonitorConfig struct {
	PollIntervalMillis uint32 `mapstructure:"poll_interval_millis"`
}

type CommandConfig struct {
	SendingMillis uint32 `mapstructure:"sending_millis"`
	CommitMillis  uint32 `mapstructure:"commit_millis"`
	ResetMillis   uint32 `mapstructure:"reset_millis"`
}

type AlertsConfig struct {
	CooldownMillis uint32 `mapstructure:"cooldown_millis"`
	MaxLog         int    `mapstructure:"max_log"`
}

type MetricsConfig struct {
	Enable bool
}

type MQTTConfig struct {
	Enable            bool
	Host              string
	Port              int
	Username          string
	Password          string
	BaseTopic         string `mapstructure:"base_topic"`
	HADiscoveryEnable bool   `mapstructure:"ha_discovery_enable"`
	HADiscoveryTopic  string `mapstructure:"ha_discovery_topic"`
}

func (c SimulationConfig) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMillis) * time.Millisecond
}

func (c MonitorConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMillis) * time.Millisecond
}

func (c AlertsConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownMillis) * time.Millisecond
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "warn")
	v.SetDefault("port", 8080)
	v.SetDefault("http_log", false)
	v.SetDefault("simulation.tick_interval_millis", 1000)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("monitor.poll_interval_millis", 5000)
	v.SetDefault("command.sending_millis", 500)
	v.SetDefault("command.commit_millis", 1500)
	v.SetDefault("command.reset_millis", 3000)
	v.SetDefault("alerts.cooldown_millis", 30000)
	v.SetDefault("alerts.max_log", 50)
	v.SetDefault("metrics.enable", true)
	v.SetDefault("mqtt.enable", false)
	v.SetDefault("mqtt.host", "localhost")
	v.SetDefault("mqtt.port", 1883)
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.base_topic", "fleetwatch")
	v.SetDefault("mqtt.ha_discovery_enable", false)
	v.SetDefault("mqtt.ha_discovery_topic", "homeassistant")
}

// Load unmarshals v, normalises the MQTT topics and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.LogLevel = ParseLogLevel(v.GetString("log_level"))

	// check and fix base topic
	baseTopic, err := CheckMQTTTopic(cfg.MQTT.BaseTopic)
	if err != nil {
		return nil, errors.New("invalid base topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.BaseTopic = baseTopic

	// check and fix homeassistant discovery topic
	hadBaseTopic, err := CheckMQTTTopic(cfg.MQTT.HADiscoveryTopic)
	if err != nil {
		return nil, errors.New("invalid homeassistant discovery topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.HADiscoveryTopic = hadBaseTopic

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg Config) Validate() error {
	if cfg.Simulation.TickIntervalMillis < 100 {
		return errors.New("config param simulation.tick_interval_millis should be >= 100")
	}
	if cfg.Monitor.PollIntervalMillis < 1000 {
		return errors.New("config param monitor.poll_interval_millis should be >= 1000")
	}
	if cfg.Command.SendingMillis == 0 {
		return errors.New("config param command.sending_millis should be > 0")
	}
	if cfg.Command.SendingMillis >= cfg.Command.CommitMillis {
		return errors.New("config param command.sending_millis must be < command.commit_millis")
	}
	if cfg.Command.CommitMillis >= cfg.Command.ResetMillis {
		return errors.New("config param command.commit_millis must be < command.reset_millis")
	}
	if cfg.Alerts.MaxLog <= 0 || cfg.Alerts.MaxLog > domain.MAX_ALERT_LOG_SIZE {
		return fmt.Errorf("config param alerts.max_log should be between 1 and %d", domain.MAX_ALERT_LOG_SIZE)
	}
	if cfg.Alerts.Cooldown() < domain.ALERT_COOLDOWN_TIME {
		return fmt.Errorf("config param alerts.cooldown_millis should be >= %d", domain.ALERT_COOLDOWN_TIME.Milliseconds())
	}
	if cfg.MQTT.Enable && cfg.MQTT.Host == "" {
		return errors.New("config param mqtt.host is required when mqtt.enable is set")
	}
	if cfg.MQTT.HADiscoveryEnable && !cfg.MQTT.Enable {
		return errors.New("config param mqtt.ha_discovery_enable requires mqtt.enable")
	}
	if cfg.Port == 0 || cfg.Port > 65535 {
		return fmt.Errorf("config param port out of range: %d", cfg.Port)
	}
	return nil
}

func ParseLogLevel(level string) zapcore.Level {
	switch level {
	case "trace":
		return zap.DebugLevel
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "error":
		return zap.ErrorLevel
	case "warn":
		return zap.WarnLevel
	case "fatal":
		return zap.FatalLevel
	default:
		return zap.InfoLevel
	}
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	// check and fix base topic
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_]+$")
	matches := baseTopicRegexp.FindAllStringSubmatch(lowerBaseTopic, 1)
	if len(matches) <= 0 {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}
