package domain

import "time"

type AlertType string

const (
	MAX_ALERT_LOG_SIZE  = 50
	ALERT_COOLDOWN_TIME = 30 * time.Second
)

const (
	AlertSocLow        AlertType = "SOC_LOW"
	AlertSocLowProtect AlertType = "SOC_LOW_PROTECT"
	AlertGreenShortage AlertType = "GREEN_SHORTAGE"
	AlertSourceSwitch  AlertType = "SOURCE_SWITCH"
	AlertFleetSwitch   AlertType = "FLEET_SWITCH"
)

var AllAlertTypes = []AlertType{AlertSocLow, AlertSocLowProtect, AlertGreenShortage, AlertSourceSwitch, AlertFleetSwitch}

func ParseAlertType(value string) (AlertType, bool) {
	for _, t := range AllAlertTypes {
		if string(t) == value {
			return t, true
		}
	}
	return "", false
}

type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// AlertDetails is the energy snapshot attached to threshold alerts.
type AlertDetails struct {
	Soc         float64 `json:"soc"`
	SolarOutput float64 `json:"solarOutput"`
	TotalLoad   float64 `json:"totalLoad"`
	GreenLoad   float64 `json:"greenLoad"`
}

type Alert struct {
	Id        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	SiteId    SiteId        `json:"siteId"`
	Type      AlertType     `json:"type"`
	Message   string        `json:"message"`
	Severity  AlertSeverity `json:"severity"`
	Details   *AlertDetails `json:"details,omitempty"`
}

type AlertFilter struct {
	// AllSites merges the logs of every site, newest first.
	AllSites bool
	// Site selects a site when AllSites is false. Empty means the active site.
	Site SiteId
	// Type keeps a single alert type. Filtering by SOC_LOW keeps SOC_LOW_PROTECT too.
	Type AlertType
}

type AlertCenterView struct {
	Site          SiteId  `json:"site,omitempty"`
	AllSites      bool    `json:"allSites"`
	Alerts        []Alert `json:"alerts"`
	CriticalCount int     `json:"criticalCount"`
	WarningCount  int     `json:"warningCount"`
}
