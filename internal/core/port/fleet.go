package port

import (
	"time"

	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/domain"
)

type Clock interface {
	Now() time.Time
}

// RandomSource is satisfied by *rand.Rand from math/rand/v2.
type RandomSource interface {
	Float64() float64
	IntN(n int) int
}

type FleetController interface {
	Snapshot() domain.FleetState
	Tick()
	SelectSite(id domain.SiteId) bool
	ToggleMachine(machineId int) bool
	SwitchAll(source domain.PowerSource) (seq uint64, accepted bool)
	AdvanceCommand(seq uint64) domain.CommandStatus
	PendingCommand() (seq uint64, elapsed time.Duration, ok bool)
	ClearAlerts() int
	DrainAlerts() []domain.Alert
}

// FleetMetrics records fleet snapshots and raised alerts.
type FleetMetrics interface {
	ObserveFleet(state domain.FleetState)
	ObserveAlert(alert domain.Alert)
}
