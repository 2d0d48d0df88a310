package domain

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/samber/lo"
)

const (
	MACHINES_PER_SITE    = 7
	CRITICAL_SOC_LEVEL   = 5.0
	WARNING_SOC_LEVEL    = 20.0
	MACHINE_PROTOCOL     = "Modbus TCP"
	SOC_HISTORY_CAPACITY = 6
)

type SiteId string

const (
	SiteA SiteId = "A"
	SiteB SiteId = "B"
	SiteC SiteId = "C"
)

var AllSites = []SiteId{SiteA, SiteB, SiteC}

func ParseSiteId(value string) (SiteId, bool) {
	for _, id := range AllSites {
		if string(id) == value {
			return id, true
		}
	}
	return "", false
}

type MachineStatus string

const (
	MachineRunning MachineStatus = "running"
	MachineIdle    MachineStatus = "idle"
)

func (s MachineStatus) Flip() MachineStatus {
	if s == MachineRunning {
		return MachineIdle
	}
	return MachineRunning
}

type PowerSource string

const (
	SourceBattery PowerSource = "battery"
	SourceGrid    PowerSource = "grid"
)

func ParsePowerSource(value string) (PowerSource, bool) {
	switch PowerSource(value) {
	case SourceBattery, SourceGrid:
		return PowerSource(value), true
	}
	return "", false
}

func (s PowerSource) Other() PowerSource {
	if s == SourceBattery {
		return SourceGrid
	}
	return SourceBattery
}

func (s PowerSource) Label() string {
	if s == SourceBattery {
		return "green"
	}
	return "grid"
}

type Machine struct {
	Id       int           `json:"id"`
	Status   MachineStatus `json:"status"`
	Load     float64       `json:"load"`
	Source   PowerSource   `json:"source"`
	Protocol string        `json:"protocol"`
}

type SiteStatus string

const (
	SiteNormal   SiteStatus = "normal"
	SiteWarning  SiteStatus = "warning"
	SiteCritical SiteStatus = "critical"
)

var AllSiteStatuses = []SiteStatus{SiteNormal, SiteWarning, SiteCritical}

type SiteState struct {
	SolarOutput           float64    `json:"solarOutput"`
	BatteryLevel          float64    `json:"batteryLevel"`
	BatteryTemp           float64    `json:"batteryTemp"`
	Machines              []Machine  `json:"machines"`
	Alerts                []Alert    `json:"alerts"`
	LastSocWarningTime    *time.Time `json:"lastSocWarningTime,omitempty"`
	LastGreenShortageTime *time.Time `json:"lastGreenShortageTime,omitempty"`
	SocHistory            []float64  `json:"socHistory"`
}

// Clone returns a copy that shares no slices with s.
func (s SiteState) Clone() SiteState {
	c := s
	c.Machines = slices.Clone(s.Machines)
	c.Alerts = slices.Clone(s.Alerts)
	c.SocHistory = slices.Clone(s.SocHistory)
	return c
}

func (s SiteState) TotalLoad() float64 {
	return lo.SumBy(s.Machines, func(m Machine) float64 { return m.Load })
}

func (s SiteState) GreenLoad() float64 {
	return lo.SumBy(s.Machines, func(m Machine) float64 {
		if m.Source == SourceBattery {
			return m.Load
		}
		return 0
	})
}

// GreenShare is the battery-fed share of the load in whole percent, 0 for an
// idle site.
func (s SiteState) GreenShare() float64 {
	total := s.TotalLoad()
	if total <= 0 {
		return 0
	}
	return math.Round(s.GreenLoad() / total * 100)
}

func (s SiteState) MachinesOn(source PowerSource) int {
	return lo.CountBy(s.Machines, func(m Machine) bool { return m.Source == source })
}

func (s SiteState) IsCritical() bool {
	return s.BatteryLevel <= CRITICAL_SOC_LEVEL
}

func (s SiteState) Status() SiteStatus {
	switch {
	case s.BatteryLevel <= CRITICAL_SOC_LEVEL:
		return SiteCritical
	case s.BatteryLevel < WARNING_SOC_LEVEL:
		return SiteWarning
	default:
		return SiteNormal
	}
}

// MachineIndex panics for ids that are not part of the site, callers only
// reference ids taken from a snapshot.
func (s SiteState) MachineIndex(id int) int {
	idx := slices.IndexFunc(s.Machines, func(m Machine) bool { return m.Id == id })
	if idx < 0 {
		panic(fmt.Sprintf("unknown machine id %d", id))
	}
	return idx
}

type CommandStatus string

const (
	CommandIdle       CommandStatus = "idle"
	CommandSending    CommandStatus = "sending"
	CommandProcessing CommandStatus = "processing"
	CommandSuccess    CommandStatus = "success"
)

var AllCommandStatuses = []CommandStatus{CommandIdle, CommandSending, CommandProcessing, CommandSuccess}

type FleetState struct {
	Sites         map[SiteId]SiteState `json:"sites"`
	ActiveSite    SiteId               `json:"activeSite"`
	CommandStatus CommandStatus        `json:"commandStatus"`
}

func (f FleetState) Clone() FleetState {
	c := f
	c.Sites = make(map[SiteId]SiteState, len(f.Sites))
	for id, site := range f.Sites {
		c.Sites[id] = site.Clone()
	}
	return c
}

// Site panics for unknown site ids.
func (f FleetState) Site(id SiteId) SiteState {
	site, ok := f.Sites[id]
	if !ok {
		panic(fmt.Sprintf("unknown site id %q", id))
	}
	return site
}

func (f FleetState) Active() SiteState {
	return f.Site(f.ActiveSite)
}
