package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(clock *fakeClock) *AlertEngine {
	engine := NewAlertEngine(clock, 0, 0, zap.NewNop())
	n := 0
	engine.NewId = func() string {
		n++
		return fmt.Sprintf("alert-%d", n)
	}
	return engine
}

func testSite(level float64) domain.SiteState {
	site := (&SiteModel{Rand: constRand(0.5)}).NewSite()
	site.BatteryLevel = level
	return site
}

func types(alerts []domain.Alert) []domain.AlertType {
	out := make([]domain.AlertType, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.Type)
	}
	return out
}

func TestSocLowCooldown(t *testing.T) {
	clock := newFakeClock()
	engine := newTestEngine(clock)
	site := testSite(15)

	raised := engine.Evaluate(domain.SiteA, &site, false)
	require.Len(t, raised, 1)
	assert.Equal(t, domain.AlertSocLow, raised[0].Type)
	assert.Equal(t, domain.SeverityWarning, raised[0].Severity)
	assert.Equal(t, domain.SiteA, raised[0].SiteId)
	require.NotNil(t, raised[0].Details)
	assert.Equal(t, 15.0, raised[0].Details.Soc)
	require.NotNil(t, site.LastSocWarningTime)

	clock.Advance(domain.ALERT_COOLDOWN_TIME)
	assert.Empty(t, engine.Evaluate(domain.SiteA, &site, false), "cooldown is exclusive")

	clock.Advance(time.Millisecond)
	assert.Equal(t, []domain.AlertType{domain.AlertSocLow}, types(engine.Evaluate(domain.SiteA, &site, false)))
	assert.Len(t, site.Alerts, 2)
}

func TestSocLowRange(t *testing.T) {
	clock := newFakeClock()
	engine := newTestEngine(clock)

	for _, level := range []float64{4.99, 20, 55} {
		site := testSite(level)
		assert.Empty(t, engine.Evaluate(domain.SiteA, &site, false), "level %v", level)
	}
	site := testSite(5)
	assert.Len(t, engine.Evaluate(domain.SiteA, &site, false), 1)
}

func TestProtectAlertTakesPriority(t *testing.T) {
	clock := newFakeClock()
	engine := newTestEngine(clock)
	site := testSite(5)
	ApplyProtection(&site)

	raised := engine.Evaluate(domain.SiteA, &site, true)
	require.Equal(t, []domain.AlertType{domain.AlertSocLowProtect}, types(raised))
	assert.Equal(t, domain.SeverityCritical, raised[0].Severity)
	assert.Equal(t, 0.0, raised[0].Details.GreenLoad, "details reflect the post-protection split")
	assert.InDelta(t, 7*6.5, raised[0].Details.TotalLoad, 1e-9)

	// SOC_LOW shares the cooldown slot with the protection alert
	clock.Advance(10 * time.Second)
	site.BatteryLevel = 12
	assert.Empty(t, engine.Evaluate(domain.SiteA, &site, false))
}

func TestGreenShortage(t *testing.T) {
	clock := newFakeClock()
	engine := newTestEngine(clock)
	site := testSite(27)
	site.SolarOutput = 60
	site.SocHistory = []float64{30, 29, 27}

	raised := engine.Evaluate(domain.SiteB, &site, false)
	require.Equal(t, []domain.AlertType{domain.AlertGreenShortage}, types(raised))
	require.NotNil(t, site.LastGreenShortageTime)

	clock.Advance(5 * time.Second)
	assert.Empty(t, engine.Evaluate(domain.SiteB, &site, false))

	clock.Advance(domain.ALERT_COOLDOWN_TIME)
	assert.Len(t, engine.Evaluate(domain.SiteB, &site, false), 1)
}

func TestGreenShortageConditions(t *testing.T) {
	clock := newFakeClock()
	engine := newTestEngine(clock)

	cases := map[string]func(site *domain.SiteState){
		"short history": func(site *domain.SiteState) { site.SocHistory = []float64{30, 27} },
		"solar ok":      func(site *domain.SiteState) { site.SolarOutput = 75 },
		"flat trend":    func(site *domain.SiteState) { site.SocHistory = []float64{30, 29, 28} },
		"light load": func(site *domain.SiteState) {
			for i := range site.Machines {
				site.Machines[i].Load = 3
			}
		},
	}
	for name, mutate := range cases {
		site := testSite(27)
		site.SolarOutput = 60
		site.SocHistory = []float64{30, 29, 27}
		mutate(&site)
		assert.Empty(t, engine.Evaluate(domain.SiteA, &site, false), name)
	}
}

func TestSocAndGreenShortageTogether(t *testing.T) {
	clock := newFakeClock()
	engine := newTestEngine(clock)
	site := testSite(12)
	site.SolarOutput = 60
	site.SocHistory = []float64{18, 15, 12}

	raised := engine.Evaluate(domain.SiteC, &site, false)
	assert.Equal(t, []domain.AlertType{domain.AlertSocLow, domain.AlertGreenShortage}, types(raised))
	assert.Equal(t, types(raised), types(site.Alerts))
}

func TestSwitchAlerts(t *testing.T) {
	clock := newFakeClock()
	engine := newTestEngine(clock)
	site := testSite(50)

	alert := engine.SourceSwitch(domain.SiteA, &site, 3, domain.SourceBattery, domain.SourceGrid)
	assert.Equal(t, "CNC #3: green → grid", alert.Message)
	assert.Equal(t, domain.SeverityInfo, alert.Severity)
	assert.Nil(t, alert.Details)

	clock.Advance(time.Second)
	fleet := engine.FleetSwitch(domain.SiteA, &site, domain.SourceBattery)
	assert.Equal(t, "fleet switched to green", fleet.Message)
	assert.Nil(t, fleet.Details)

	assert.Equal(t, []domain.AlertType{domain.AlertFleetSwitch, domain.AlertSourceSwitch}, types(site.Alerts))
}

func TestAlertLogCap(t *testing.T) {
	clock := newFakeClock()
	engine := newTestEngine(clock)
	site := testSite(50)

	for i := range 60 {
		clock.Advance(time.Second)
		engine.SourceSwitch(domain.SiteA, &site, i%7+1, domain.SourceGrid, domain.SourceBattery)
	}

	require.Len(t, site.Alerts, domain.MAX_ALERT_LOG_SIZE)
	assert.Equal(t, "alert-60", site.Alerts[0].Id)
	assert.Equal(t, "alert-11", site.Alerts[len(site.Alerts)-1].Id)
	for i := 1; i < len(site.Alerts); i++ {
		assert.True(t, site.Alerts[i-1].Timestamp.After(site.Alerts[i].Timestamp))
	}
}

func TestAlertIdsAreUnique(t *testing.T) {
	engine := NewAlertEngine(newFakeClock(), 0, 0, nil)
	site := testSite(50)
	seen := map[string]bool{}
	for range 20 {
		alert := engine.SourceSwitch(domain.SiteA, &site, 1, domain.SourceGrid, domain.SourceBattery)
		assert.False(t, seen[alert.Id])
		seen[alert.Id] = true
	}
}

func TestAlertEngineClampsLimits(t *testing.T) {
	engine := NewAlertEngine(newFakeClock(), time.Millisecond, 500, nil)
	assert.Equal(t, domain.ALERT_COOLDOWN_TIME, engine.Cooldown)
	assert.Equal(t, domain.MAX_ALERT_LOG_SIZE, engine.MaxLog)

	engine = NewAlertEngine(newFakeClock(), time.Minute, 10, nil)
	assert.Equal(t, time.Minute, engine.Cooldown)
	assert.Equal(t, 10, engine.MaxLog)
}
