package events

import (
	"strconv"

	. "github.com/johnnychen-a11y/energy-flow-insights/internal/core/domain"
)

// FleetToUpdateEvents maps a snapshot to the sensor, switch and select
// updates the MQTT bridge publishes. Machine switches follow the active site.
func FleetToUpdateEvents(state FleetState) []SensorUpdateEvent {
	var events []SensorUpdateEvent

	for _, id := range AllSites {
		site, ok := state.Sites[id]
		if !ok {
			continue
		}
		events = append(events, SiteToUpdateEvents(id, site)...)
	}

	events = append(events, TextSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: SENSOR_ID_COMMAND_STATUS},
		Value:                  string(state.CommandStatus),
	})
	events = append(events, SelectSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: SELECT_ID_ACTIVE_SITE},
		Value:                  string(state.ActiveSite),
	})

	if active, ok := state.Sites[state.ActiveSite]; ok {
		for _, m := range active.Machines {
			events = append(events, SwitchSensorUpdateEvent{
				SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: MachineSwitchId(m.Id)},
				Value:                  m.Source == SourceBattery,
			})
		}
	}

	return events
}

func SiteToUpdateEvents(id SiteId, site SiteState) []SensorUpdateEvent {
	float := func(metric string, value float64, decimals uint) SensorUpdateEvent {
		return FloatSensorUpdateEvent{
			SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: SiteSensorId(id, metric)},
			Value:                  value,
			Decimals:               decimals,
		}
	}

	return []SensorUpdateEvent{
		float(SITE_METRIC_SOC, site.BatteryLevel, 1),
		float(SITE_METRIC_SOLAR, site.SolarOutput, 1),
		float(SITE_METRIC_BATTERY_TEMP, site.BatteryTemp, 1),
		float(SITE_METRIC_TOTAL_LOAD, site.TotalLoad(), 2),
		float(SITE_METRIC_GREEN_LOAD, site.GreenLoad(), 2),
		float(SITE_METRIC_GREEN_MACHINES, float64(site.MachinesOn(SourceBattery)), 0),
		TextSensorUpdateEvent{
			SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: SiteSensorId(id, SITE_METRIC_STATUS)},
			Value:                  string(site.Status()),
		},
		TextSensorUpdateEvent{
			SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: SiteSensorId(id, SITE_METRIC_ALERTS)},
			Value:                  strconv.Itoa(len(site.Alerts)),
		},
	}
}
