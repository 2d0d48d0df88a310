package events

import (
	"testing"

	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFleetToUpdateEvents(t *testing.T) {
	state := domain.FleetState{
		ActiveSite:    domain.SiteB,
		CommandStatus: domain.CommandSending,
		Sites: map[domain.SiteId]domain.SiteState{
			domain.SiteA: {BatteryLevel: 50},
			domain.SiteB: {
				BatteryLevel: 4,
				Machines: []domain.Machine{
					{Id: 1, Load: 6, Source: domain.SourceBattery},
					{Id: 2, Load: 1, Source: domain.SourceGrid},
				},
			},
		},
	}

	byId := map[string]domain.SensorUpdateEvent{}
	for _, e := range FleetToUpdateEvents(state) {
		byId[e.SensorId()] = e
	}

	require.Contains(t, byId, "site_b_total_load")
	assert.Equal(t, 7.0, byId["site_b_total_load"].(domain.FloatSensorUpdateEvent).Value)
	assert.Equal(t, 6.0, byId["site_b_green_load"].(domain.FloatSensorUpdateEvent).Value)
	assert.Equal(t, "critical", byId["site_b_status"].(domain.TextSensorUpdateEvent).Value)
	assert.Equal(t, "normal", byId["site_a_status"].(domain.TextSensorUpdateEvent).Value)
	assert.NotContains(t, byId, "site_c_soc")

	assert.Equal(t, "sending", byId[SENSOR_ID_COMMAND_STATUS].(domain.TextSensorUpdateEvent).Value)
	assert.Equal(t, "B", byId[SELECT_ID_ACTIVE_SITE].(domain.SelectSensorUpdateEvent).Value)
	assert.True(t, byId["machine_1"].(domain.SwitchSensorUpdateEvent).Value)
	assert.False(t, byId["machine_2"].(domain.SwitchSensorUpdateEvent).Value)
}

func TestFleetDiscovery(t *testing.T) {
	req := FleetDiscovery("fleetwatch")

	assert.Len(t, req.Sensors, 2+len(domain.AllSites)*8)
	assert.Len(t, req.Switches, domain.MACHINES_PER_SITE)
	assert.Len(t, req.Buttons, 3)
	require.Len(t, req.Selects, 1)
	assert.Equal(t, []string{"A", "B", "C"}, req.Selects[0].Options)

	unique := map[string]bool{}
	for _, s := range req.Sensors {
		assert.False(t, unique[s.UniqueId], s.UniqueId)
		unique[s.UniqueId] = true
	}
	assert.Equal(t, BridgeDevice("fleetwatch").Id, BridgeDevice("fleetwatch").Id)
	assert.NotEqual(t, BridgeDevice("fleetwatch").Id, BridgeDevice("other").Id)
}
