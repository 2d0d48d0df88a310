package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/domain"
	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/port"
	"go.uber.org/zap"
)

const (
	GREEN_SHORTAGE_MIN_SAMPLES = 3
	GREEN_SHORTAGE_SOLAR_BELOW = 75.0
	GREEN_SHORTAGE_LOAD_ABOVE  = 25.0
	GREEN_SHORTAGE_TREND_BELOW = -2.0
)

type AlertEngine struct {
	Clock    port.Clock
	Cooldown time.Duration
	MaxLog   int
	NewId    func() string
	Logger   *zap.Logger
}

// NewAlertEngine never goes below the default cooldown or above the default
// log size.
func NewAlertEngine(clock port.Clock, cooldown time.Duration, maxLog int, logger *zap.Logger) *AlertEngine {
	cooldown = max(cooldown, domain.ALERT_COOLDOWN_TIME)
	if maxLog <= 0 || maxLog > domain.MAX_ALERT_LOG_SIZE {
		maxLog = domain.MAX_ALERT_LOG_SIZE
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertEngine{
		Clock:    clock,
		Cooldown: cooldown,
		MaxLog:   maxLog,
		NewId:    uuid.NewString,
		Logger:   logger,
	}
}

// Evaluate runs the threshold and trend checks against the state a tick
// produced and prepends the raised alerts to the site log. protected reports
// whether protection fired during this tick.
func (e *AlertEngine) Evaluate(id domain.SiteId, site *domain.SiteState, protected bool) []domain.Alert {
	now := e.Clock.Now()
	level := site.BatteryLevel
	var raised []domain.Alert

	if protected {
		raised = append(raised, e.newAlert(now, id, domain.AlertSocLowProtect, domain.SeverityCritical,
			fmt.Sprintf("battery critically low (%.1f%%), machines moved to grid", level), e.details(site)))
		site.LastSocWarningTime = &now
	} else if level >= domain.CRITICAL_SOC_LEVEL && level < domain.WARNING_SOC_LEVEL && e.cooledDown(site.LastSocWarningTime, now) {
		raised = append(raised, e.newAlert(now, id, domain.AlertSocLow, domain.SeverityWarning,
			fmt.Sprintf("battery low (%.1f%%), reduce green load", level), e.details(site)))
		site.LastSocWarningTime = &now
	}

	if history := site.SocHistory; len(history) >= GREEN_SHORTAGE_MIN_SAMPLES {
		trend := history[len(history)-1] - history[0]
		totalLoad := site.TotalLoad()
		if site.SolarOutput < GREEN_SHORTAGE_SOLAR_BELOW && totalLoad > GREEN_SHORTAGE_LOAD_ABOVE && trend < GREEN_SHORTAGE_TREND_BELOW &&
			e.cooledDown(site.LastGreenShortageTime, now) {
			raised = append(raised, e.newAlert(now, id, domain.AlertGreenShortage, domain.SeverityWarning,
				fmt.Sprintf("green supply short: solar %.1fkW, load %.1fkW", site.SolarOutput, totalLoad), e.details(site)))
			site.LastGreenShortageTime = &now
		}
	}

	e.prepend(site, raised...)
	return raised
}

// SourceSwitch records a single machine changing source.
func (e *AlertEngine) SourceSwitch(id domain.SiteId, site *domain.SiteState, machineId int, from, to domain.PowerSource) domain.Alert {
	alert := e.newAlert(e.Clock.Now(), id, domain.AlertSourceSwitch, domain.SeverityInfo,
		fmt.Sprintf("CNC #%d: %s → %s", machineId, from.Label(), to.Label()), nil)
	e.prepend(site, alert)
	return alert
}

// FleetSwitch records a committed fleet-wide switch.
func (e *AlertEngine) FleetSwitch(id domain.SiteId, site *domain.SiteState, source domain.PowerSource) domain.Alert {
	alert := e.newAlert(e.Clock.Now(), id, domain.AlertFleetSwitch, domain.SeverityInfo,
		fmt.Sprintf("fleet switched to %s", source.Label()), nil)
	e.prepend(site, alert)
	return alert
}

func (e *AlertEngine) cooledDown(last *time.Time, now time.Time) bool {
	return last == nil || now.Sub(*last) > e.Cooldown
}

func (e *AlertEngine) details(site *domain.SiteState) *domain.AlertDetails {
	return &domain.AlertDetails{
		Soc:         site.BatteryLevel,
		SolarOutput: site.SolarOutput,
		TotalLoad:   site.TotalLoad(),
		GreenLoad:   site.GreenLoad(),
	}
}

func (e *AlertEngine) newAlert(now time.Time, id domain.SiteId, alertType domain.AlertType, severity domain.AlertSeverity, message string, details *domain.AlertDetails) domain.Alert {
	alert := domain.Alert{
		Id:        e.NewId(),
		Timestamp: now,
		SiteId:    id,
		Type:      alertType,
		Message:   message,
		Severity:  severity,
		Details:   details,
	}
	fields := []zap.Field{zap.String("site", string(id)), zap.String("type", string(alertType))}
	switch severity {
	case domain.SeverityCritical:
		e.Logger.Error("alert: "+message, fields...)
	case domain.SeverityWarning:
		e.Logger.Warn("alert: "+message, fields...)
	default:
		e.Logger.Info("alert: "+message, fields...)
	}
	return alert
}

// prepend puts alerts ahead of the existing log, keeping their relative
// order, and drops the oldest entries beyond MaxLog.
func (e *AlertEngine) prepend(site *domain.SiteState, alerts ...domain.Alert) {
	if len(alerts) == 0 {
		return
	}
	log := make([]domain.Alert, 0, len(alerts)+len(site.Alerts))
	log = append(log, alerts...)
	log = append(log, site.Alerts...)
	if len(log) > e.MaxLog {
		log = log[:e.MaxLog]
	}
	site.Alerts = log
}
