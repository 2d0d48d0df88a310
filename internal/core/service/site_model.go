package service

import (
	"slices"

	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/domain"
	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/port"
)

const (
	SOLAR_MIN_KW        = 50.0
	SOLAR_MAX_KW        = 100.0
	SOLAR_DRIFT_KW      = 2.5
	BATTERY_TEMP_MIN    = 28.0
	BATTERY_TEMP_MAX    = 40.0
	BATTERY_TEMP_DRIFT  = 0.25
	STATUS_FLIP_CHANCE  = 0.02
	SOLAR_CHARGE_FACTOR = 0.05
	GREEN_DRAIN_FACTOR  = 0.1
	RUNNING_LOAD_MIN_KW = 5.0
	RUNNING_LOAD_MAX_KW = 8.0
	IDLE_LOAD_MIN_KW    = 0.5
	IDLE_LOAD_MAX_KW    = 1.0
	INITIAL_IDLE_RATE   = 0.3
	INITIAL_GRID_RATE   = 0.4
)

// EnergyBalance is the load split and battery flow of one tick, measured
// before protection runs.
type EnergyBalance struct {
	TotalLoad float64
	GreenLoad float64
	Charge    float64
	Discharge float64
}

// SiteModel advances the solar, battery and machine values of a site. All
// randomness comes from Rand, so a scripted source makes it deterministic.
type SiteModel struct {
	Rand port.RandomSource
}

func (m *SiteModel) NewSite() domain.SiteState {
	machines := make([]domain.Machine, domain.MACHINES_PER_SITE)
	for i := range machines {
		status := domain.MachineIdle
		if m.Rand.Float64() > INITIAL_IDLE_RATE {
			status = domain.MachineRunning
		}
		load := m.drawLoad(status)
		source := domain.SourceGrid
		if m.Rand.Float64() > INITIAL_GRID_RATE {
			source = domain.SourceBattery
		}
		machines[i] = domain.Machine{
			Id:       i + 1,
			Status:   status,
			Load:     load,
			Source:   source,
			Protocol: domain.MACHINE_PROTOCOL,
		}
	}
	return domain.SiteState{
		SolarOutput:  uniform(m.Rand, 70, 95),
		BatteryLevel: uniform(m.Rand, 40, 80),
		BatteryTemp:  uniform(m.Rand, 30, 36),
		Machines:     machines,
	}
}

// Step returns the next state of site. The input is not modified.
func (m *SiteModel) Step(site domain.SiteState) (domain.SiteState, EnergyBalance) {
	next := site.Clone()

	next.SolarOutput = clamp(next.SolarOutput+uniform(m.Rand, -SOLAR_DRIFT_KW, SOLAR_DRIFT_KW), SOLAR_MIN_KW, SOLAR_MAX_KW)
	next.BatteryTemp = clamp(next.BatteryTemp+uniform(m.Rand, -BATTERY_TEMP_DRIFT, BATTERY_TEMP_DRIFT), BATTERY_TEMP_MIN, BATTERY_TEMP_MAX)

	for i := range next.Machines {
		next.Machines[i].Load = m.drawLoad(next.Machines[i].Status)
	}

	if len(next.Machines) > 0 && m.Rand.Float64() < STATUS_FLIP_CHANCE {
		machine := &next.Machines[m.Rand.IntN(len(next.Machines))]
		machine.Status = machine.Status.Flip()
		machine.Load = m.drawLoad(machine.Status)
	}

	balance := EnergyBalance{
		TotalLoad: next.TotalLoad(),
		GreenLoad: next.GreenLoad(),
	}
	balance.Charge = next.SolarOutput * SOLAR_CHARGE_FACTOR
	balance.Discharge = balance.GreenLoad * GREEN_DRAIN_FACTOR

	next.BatteryLevel = clamp(site.BatteryLevel+balance.Charge-balance.Discharge, 0, 100)
	next.SocHistory = pushHistory(next.SocHistory, next.BatteryLevel)

	return next, balance
}

func (m *SiteModel) drawLoad(status domain.MachineStatus) float64 {
	if status == domain.MachineRunning {
		return uniform(m.Rand, RUNNING_LOAD_MIN_KW, RUNNING_LOAD_MAX_KW)
	}
	return uniform(m.Rand, IDLE_LOAD_MIN_KW, IDLE_LOAD_MAX_KW)
}

func pushHistory(history []float64, value float64) []float64 {
	history = append(history, value)
	if len(history) > domain.SOC_HISTORY_CAPACITY {
		history = slices.Clone(history[len(history)-domain.SOC_HISTORY_CAPACITY:])
	}
	return history
}
