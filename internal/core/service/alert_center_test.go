package service

import (
	"testing"
	"time"

	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alertAt(site domain.SiteId, alertType domain.AlertType, severity domain.AlertSeverity, offset time.Duration) domain.Alert {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return domain.Alert{
		Id:        string(site) + string(alertType) + offset.String(),
		Timestamp: base.Add(offset),
		SiteId:    site,
		Type:      alertType,
		Severity:  severity,
	}
}

func alertCenterState() domain.FleetState {
	return domain.FleetState{
		ActiveSite: domain.SiteB,
		Sites: map[domain.SiteId]domain.SiteState{
			domain.SiteA: {Alerts: []domain.Alert{
				alertAt(domain.SiteA, domain.AlertSocLowProtect, domain.SeverityCritical, 5*time.Second),
				alertAt(domain.SiteA, domain.AlertSocLow, domain.SeverityWarning, 1*time.Second),
			}},
			domain.SiteB: {Alerts: []domain.Alert{
				alertAt(domain.SiteB, domain.AlertSourceSwitch, domain.SeverityInfo, 6*time.Second),
				alertAt(domain.SiteB, domain.AlertGreenShortage, domain.SeverityWarning, 3*time.Second),
			}},
			domain.SiteC: {},
		},
	}
}

func TestAlertCenterActiveSite(t *testing.T) {
	view := AlertCenter(alertCenterState(), domain.AlertFilter{})

	assert.Equal(t, domain.SiteB, view.Site)
	assert.False(t, view.AllSites)
	assert.Equal(t, []domain.AlertType{domain.AlertSourceSwitch, domain.AlertGreenShortage}, types(view.Alerts))
	assert.Equal(t, 0, view.CriticalCount)
	assert.Equal(t, 1, view.WarningCount)
}

func TestAlertCenterAllSitesNewestFirst(t *testing.T) {
	view := AlertCenter(alertCenterState(), domain.AlertFilter{AllSites: true})

	assert.Empty(t, view.Site)
	require.Len(t, view.Alerts, 4)
	assert.Equal(t, []domain.AlertType{
		domain.AlertSourceSwitch,
		domain.AlertSocLowProtect,
		domain.AlertGreenShortage,
		domain.AlertSocLow,
	}, types(view.Alerts))
	assert.Equal(t, 1, view.CriticalCount)
	assert.Equal(t, 2, view.WarningCount)
}

func TestAlertCenterTypeFilter(t *testing.T) {
	state := alertCenterState()

	view := AlertCenter(state, domain.AlertFilter{AllSites: true, Type: domain.AlertSocLow})
	assert.Equal(t, []domain.AlertType{domain.AlertSocLowProtect, domain.AlertSocLow}, types(view.Alerts))
	assert.Equal(t, 1, view.CriticalCount, "counts ignore the type filter")
	assert.Equal(t, 2, view.WarningCount)

	view = AlertCenter(state, domain.AlertFilter{Site: domain.SiteA, Type: domain.AlertSocLowProtect})
	assert.Equal(t, []domain.AlertType{domain.AlertSocLowProtect}, types(view.Alerts))

	view = AlertCenter(state, domain.AlertFilter{Site: domain.SiteC, Type: domain.AlertFleetSwitch})
	assert.NotNil(t, view.Alerts)
	assert.Empty(t, view.Alerts)
}

func TestAlertCenterUnknownSitePanics(t *testing.T) {
	assert.Panics(t, func() { AlertCenter(alertCenterState(), domain.AlertFilter{Site: "Q"}) })
}
