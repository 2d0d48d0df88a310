package service

import (
	"testing"

	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSiteFromDraws(t *testing.T) {
	model := &SiteModel{Rand: constRand(0.5)}
	site := model.NewSite()

	require.Len(t, site.Machines, domain.MACHINES_PER_SITE)
	for i, m := range site.Machines {
		assert.Equal(t, i+1, m.Id)
		assert.Equal(t, domain.MachineRunning, m.Status)
		assert.Equal(t, domain.SourceBattery, m.Source)
		assert.InDelta(t, 6.5, m.Load, 1e-9)
		assert.Equal(t, domain.MACHINE_PROTOCOL, m.Protocol)
	}
	assert.InDelta(t, 82.5, site.SolarOutput, 1e-9)
	assert.InDelta(t, 60.0, site.BatteryLevel, 1e-9)
	assert.InDelta(t, 33.0, site.BatteryTemp, 1e-9)
	assert.Empty(t, site.Alerts)
	assert.Empty(t, site.SocHistory)
}

func TestNewSiteIdleGridMachines(t *testing.T) {
	// status draw 0.2 -> idle, load draw 0, source draw 0.3 -> grid
	model := &SiteModel{Rand: &scriptedRand{values: []float64{0.2, 0, 0.3}, fallback: 0.5}}
	site := model.NewSite()

	assert.Equal(t, domain.MachineIdle, site.Machines[0].Status)
	assert.InDelta(t, IDLE_LOAD_MIN_KW, site.Machines[0].Load, 1e-9)
	assert.Equal(t, domain.SourceGrid, site.Machines[0].Source)
	assert.Equal(t, domain.MachineRunning, site.Machines[1].Status)
}

func TestStepEnergyBalance(t *testing.T) {
	model := &SiteModel{Rand: constRand(0.5)}
	site := model.NewSite()
	site.SolarOutput = 60
	site.BatteryLevel = 50
	site.Machines[0].Source = domain.SourceGrid
	site.Machines[1].Status = domain.MachineIdle

	next, balance := model.Step(site)

	assert.InDelta(t, 60.0, next.SolarOutput, 1e-9)
	assert.InDelta(t, 33.0, next.BatteryTemp, 1e-9)
	assert.InDelta(t, 0.75, next.Machines[1].Load, 1e-9)

	// 6 running machines at 6.5kW and one idle at 0.75kW, machine 1 on grid
	assert.InDelta(t, 6*6.5+0.75, balance.TotalLoad, 1e-9)
	assert.InDelta(t, 5*6.5+0.75, balance.GreenLoad, 1e-9)
	assert.InDelta(t, 3.0, balance.Charge, 1e-9)
	assert.InDelta(t, 3.325, balance.Discharge, 1e-9)
	assert.InDelta(t, 50+3.0-3.325, next.BatteryLevel, 1e-9)
	assert.Equal(t, []float64{next.BatteryLevel}, next.SocHistory)

	// input untouched
	assert.Equal(t, 50.0, site.BatteryLevel)
	assert.Empty(t, site.SocHistory)
}

func TestStepStatusFlip(t *testing.T) {
	// solar, temp, 7 loads, flip draw, replacement load
	draws := []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.01, 0}
	model := &SiteModel{Rand: constRand(0.5)}
	site := model.NewSite()

	model.Rand = &scriptedRand{values: draws, fallback: 0.5, intN: 2}
	next, _ := model.Step(site)

	assert.Equal(t, domain.MachineIdle, next.Machines[2].Status)
	assert.InDelta(t, IDLE_LOAD_MIN_KW, next.Machines[2].Load, 1e-9)
	for i, m := range next.Machines {
		if i != 2 {
			assert.Equal(t, domain.MachineRunning, m.Status)
		}
	}
}

func TestStepClampsAndHistory(t *testing.T) {
	model := &SiteModel{Rand: constRand(1)}
	site := (&SiteModel{Rand: constRand(0.5)}).NewSite()
	site.SolarOutput = 99
	site.BatteryTemp = 39.9
	site.BatteryLevel = 99
	allOn(domain.SourceGrid)(&site)

	for range 10 {
		site, _ = model.Step(site)
	}
	assert.Equal(t, SOLAR_MAX_KW, site.SolarOutput)
	assert.Equal(t, BATTERY_TEMP_MAX, site.BatteryTemp)
	assert.Equal(t, 100.0, site.BatteryLevel)
	assert.Len(t, site.SocHistory, domain.SOC_HISTORY_CAPACITY)

	model.Rand = constRand(0)
	site.BatteryLevel = 1
	for range 60 {
		site, _ = model.Step(site)
	}
	assert.Equal(t, SOLAR_MIN_KW, site.SolarOutput)
	assert.Equal(t, BATTERY_TEMP_MIN, site.BatteryTemp)
	assert.GreaterOrEqual(t, site.BatteryLevel, 0.0)
	assert.Len(t, site.SocHistory, domain.SOC_HISTORY_CAPACITY)
}

func TestStepBoundsWithSeededSource(t *testing.T) {
	model := &SiteModel{Rand: NewRandomSource(42)}
	site := model.NewSite()

	for range 5000 {
		site, _ = model.Step(site)
		require.GreaterOrEqual(t, site.BatteryLevel, 0.0)
		require.LessOrEqual(t, site.BatteryLevel, 100.0)
		require.GreaterOrEqual(t, site.SolarOutput, SOLAR_MIN_KW)
		require.LessOrEqual(t, site.SolarOutput, SOLAR_MAX_KW)
		require.GreaterOrEqual(t, site.BatteryTemp, BATTERY_TEMP_MIN)
		require.LessOrEqual(t, site.BatteryTemp, BATTERY_TEMP_MAX)
		require.LessOrEqual(t, len(site.SocHistory), domain.SOC_HISTORY_CAPACITY)
		for _, m := range site.Machines {
			if m.Status == domain.MachineRunning {
				require.GreaterOrEqual(t, m.Load, RUNNING_LOAD_MIN_KW)
			} else {
				require.LessOrEqual(t, m.Load, IDLE_LOAD_MAX_KW)
			}
		}
	}
}

func TestProtectionTriggered(t *testing.T) {
	assert.True(t, ProtectionTriggered(5.1, 5))
	assert.True(t, ProtectionTriggered(30, 0))
	assert.False(t, ProtectionTriggered(5, 4), "already critical")
	assert.False(t, ProtectionTriggered(4, 5.5))
	assert.False(t, ProtectionTriggered(10, 5.01))
}

func TestApplyProtection(t *testing.T) {
	site := (&SiteModel{Rand: constRand(0.5)}).NewSite()
	site.Machines[3].Source = domain.SourceGrid

	switched := ApplyProtection(&site)

	assert.Equal(t, []int{1, 2, 3, 5, 6, 7}, switched)
	assert.Equal(t, 0, site.MachinesOn(domain.SourceBattery))
	assert.Empty(t, ApplyProtection(&site))
}
