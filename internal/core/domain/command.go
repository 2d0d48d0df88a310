package domain

import "fmt"

// FleetCommandRequest

type FleetCommandRequest interface {
	ActorRequest
	FleetCommand() string
}

type FleetCommandRequestMixIn struct {
	ActorRequestMixIn
}

func (r FleetCommandRequestMixIn) FleetCommand() string {
	return fmt.Sprintf("%T", r)
}

// Fleet commands

type SelectSiteRequest struct {
	FleetCommandRequestMixIn
	Site SiteId
}

type SelectSiteResponse struct {
	CommandResponseMixIn
}

type ToggleMachineRequest struct {
	FleetCommandRequestMixIn
	MachineId int
}

type ToggleMachineResponse struct {
	CommandResponseMixIn
}

// SetMachineSourceRequest toggles the machine only when its current source
// differs from Source.
type SetMachineSourceRequest struct {
	FleetCommandRequestMixIn
	MachineId int
	Source    PowerSource
}

type SetMachineSourceResponse struct {
	CommandResponseMixIn
}

type SwitchAllRequest struct {
	FleetCommandRequestMixIn
	Source PowerSource
}

type SwitchAllResponse struct {
	CommandResponseMixIn
}

type ClearAlertsRequest struct {
	FleetCommandRequestMixIn
}

type ClearAlertsResponse struct {
	CommandResponseMixIn
	Cleared int
}

// ensure interface compliance
var (
	_ FleetCommandRequest = (*SelectSiteRequest)(nil)
	_ FleetCommandRequest = (*ToggleMachineRequest)(nil)
	_ FleetCommandRequest = (*SetMachineSourceRequest)(nil)
	_ FleetCommandRequest = (*SwitchAllRequest)(nil)
	_ FleetCommandRequest = (*ClearAlertsRequest)(nil)
)
