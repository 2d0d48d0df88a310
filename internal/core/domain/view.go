package domain

import (
	"github.com/samber/lo"
)

// SiteView is the read model handed to presentation collaborators. Load
// aggregates are derived from the machines and never stored.
type SiteView struct {
	Id            SiteId     `json:"id"`
	Status        SiteStatus `json:"status"`
	SolarOutput   float64    `json:"solarOutput"`
	BatteryLevel  float64    `json:"batteryLevel"`
	BatteryTemp   float64    `json:"batteryTemp"`
	TotalLoad     float64    `json:"totalLoad"`
	GreenLoad     float64    `json:"greenLoad"`
	GreenShare    float64    `json:"greenShare"`
	GreenMachines int        `json:"greenMachines"`
	GridMachines  int        `json:"gridMachines"`
	Machines      []Machine  `json:"machines"`
	Alerts        []Alert    `json:"alerts"`
	SocHistory    []float64  `json:"socHistory"`
}

type FleetView struct {
	ActiveSite    SiteId        `json:"activeSite"`
	CommandStatus CommandStatus `json:"commandStatus"`
	Sites         []SiteView    `json:"sites"`
}

func NewSiteView(id SiteId, site SiteState) SiteView {
	site = site.Clone()
	return SiteView{
		Id:            id,
		Status:        site.Status(),
		SolarOutput:   site.SolarOutput,
		BatteryLevel:  site.BatteryLevel,
		BatteryTemp:   site.BatteryTemp,
		TotalLoad:     site.TotalLoad(),
		GreenLoad:     site.GreenLoad(),
		GreenShare:    site.GreenShare(),
		GreenMachines: site.MachinesOn(SourceBattery),
		GridMachines:  site.MachinesOn(SourceGrid),
		Machines:      site.Machines,
		Alerts:        lo.Ternary(site.Alerts == nil, []Alert{}, site.Alerts),
		SocHistory:    lo.Ternary(site.SocHistory == nil, []float64{}, site.SocHistory),
	}
}

func NewFleetView(state FleetState) FleetView {
	view := FleetView{
		ActiveSite:    state.ActiveSite,
		CommandStatus: state.CommandStatus,
	}
	for _, id := range AllSites {
		if site, ok := state.Sites[id]; ok {
			view.Sites = append(view.Sites, NewSiteView(id, site))
		}
	}
	return view
}
