package events

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/carlmjohnson/versioninfo"
	. "github.com/johnnychen-a11y/energy-flow-insights/internal/core/domain"
)

const (
	SENSOR_ID_BRIDGE_STATE     = "bridge"
	SENSOR_ID_COMMAND_STATUS   = "command_status"
	SELECT_ID_ACTIVE_SITE      = "active_site"
	BUTTON_ID_SWITCH_ALL_GREEN = "switch_all_battery"
	BUTTON_ID_SWITCH_ALL_GRID  = "switch_all_grid"
	BUTTON_ID_CLEAR_ALERTS     = "clear_alerts"

	SITE_METRIC_SOC            = "soc"
	SITE_METRIC_SOLAR          = "solar"
	SITE_METRIC_BATTERY_TEMP   = "battery_temp"
	SITE_METRIC_TOTAL_LOAD     = "total_load"
	SITE_METRIC_GREEN_LOAD     = "green_load"
	SITE_METRIC_GREEN_MACHINES = "green_machines"
	SITE_METRIC_STATUS         = "status"
	SITE_METRIC_ALERTS         = "alerts"

	STATE_CLASS_MEASUREMENT   = "measurement"
	DEVICE_CLASS_BATTERY      = "battery"
	DEVICE_CLASS_POWER        = "power"
	DEVICE_CLASS_TEMPERATURE  = "temperature"
	DEVICE_CLASS_ENUM         = "enum"
	DEVICE_CLASS_CONNECTIVITY = "connectivity"
	ENTITY_CLASS_DIAGNOSTIC   = "diagnostic"
	ENTITY_CLASS_CONFIG       = "config"
	SENSOR_TYPE_SENSOR        = "sensor"
	SENSOR_TYPE_BINARY        = "binary_sensor"
)

func SiteSensorId(site SiteId, metric string) string {
	return fmt.Sprintf("site_%s_%s", strings.ToLower(string(site)), metric)
}

func MachineSwitchId(machineId int) string {
	return fmt.Sprintf("machine_%d", machineId)
}

func BridgeDevice(baseTopic string) Device {
	return Device{
		Id:           fmt.Sprintf("fleetwatch_bridge_%s", md5HashShort(baseTopic)),
		Manufacturer: "Energy Flow Insights",
		Model:        "Fleetwatch",
		Version:      versioninfo.Short(),
		Name:         fmt.Sprintf("Fleetwatch %s", md5HashShort(baseTopic)),
	}
}

func SiteDevice(bridge Device, site SiteId) Device {
	return Device{
		Id:           fmt.Sprintf("%s_site_%s", bridge.Id, strings.ToLower(string(site))),
		Manufacturer: bridge.Manufacturer,
		Model:        "Site",
		Name:         fmt.Sprintf("Site %s", site),
		ViaDevice:    bridge.Id,
	}
}

// FleetDiscovery lists every entity the MQTT bridge publishes.
func FleetDiscovery(baseTopic string) PublishDiscoveryRequest {
	bridge := BridgeDevice(baseTopic)
	req := PublishDiscoveryRequest{}

	req.Sensors = append(req.Sensors, GenericSensor{
		Device:         bridge,
		Id:             SENSOR_ID_BRIDGE_STATE,
		SensorType:     SENSOR_TYPE_BINARY,
		Name:           "Connection state",
		DeviceClass:    DEVICE_CLASS_CONNECTIVITY,
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(bridge.Id, SENSOR_ID_BRIDGE_STATE),
	}, GenericSensor{
		Device:     idDevice(bridge),
		Id:         SENSOR_ID_COMMAND_STATUS,
		SensorType: SENSOR_TYPE_SENSOR,
		Name:       "Fleet command status",
		Icon:       "mdi:swap-horizontal",
		UniqueId:   uniqueId(bridge.Id, SENSOR_ID_COMMAND_STATUS),
	})

	for _, site := range AllSites {
		req.Sensors = append(req.Sensors, SiteSensors(SiteDevice(bridge, site), site)...)
	}

	req.Selects = append(req.Selects, GenericSelect{
		Device:   idDevice(bridge),
		Id:       SELECT_ID_ACTIVE_SITE,
		Name:     "Active site",
		Icon:     "mdi:factory",
		UniqueId: uniqueId(bridge.Id, SELECT_ID_ACTIVE_SITE),
		Options:  siteOptions(),
	})

	for i := 1; i <= MACHINES_PER_SITE; i++ {
		id := MachineSwitchId(i)
		req.Switches = append(req.Switches, GenericSwitch{
			Device:   idDevice(bridge),
			Id:       id,
			Name:     fmt.Sprintf("CNC #%d on green supply", i),
			Icon:     "mdi:leaf",
			UniqueId: uniqueId(bridge.Id, id),
		})
	}

	for _, b := range []struct{ id, name, icon string }{
		{BUTTON_ID_SWITCH_ALL_GREEN, "Switch all to green", "mdi:solar-power"},
		{BUTTON_ID_SWITCH_ALL_GRID, "Switch all to grid", "mdi:transmission-tower"},
		{BUTTON_ID_CLEAR_ALERTS, "Clear alerts", "mdi:bell-off"},
	} {
		req.Buttons = append(req.Buttons, GenericButton{
			Device:   idDevice(bridge),
			Id:       b.id,
			Name:     b.name,
			Icon:     b.icon,
			UniqueId: uniqueId(bridge.Id, b.id),
		})
	}

	return req
}

func SiteSensors(device Device, site SiteId) []GenericSensor {
	sensor := func(metric, name, deviceClass, unit string) GenericSensor {
		id := SiteSensorId(site, metric)
		s := GenericSensor{
			Device:            idDevice(device),
			Id:                id,
			SensorType:        SENSOR_TYPE_SENSOR,
			Name:              name,
			DeviceClass:       deviceClass,
			UnitOfMeasurement: unit,
			UniqueId:          uniqueId(device.Id, id),
		}
		if unit != "" {
			s.StateClass = STATE_CLASS_MEASUREMENT
		}
		return s
	}

	sensors := []GenericSensor{
		sensor(SITE_METRIC_SOC, "Battery SoC", DEVICE_CLASS_BATTERY, "%"),
		sensor(SITE_METRIC_SOLAR, "Solar output", DEVICE_CLASS_POWER, "kW"),
		sensor(SITE_METRIC_BATTERY_TEMP, "Battery temperature", DEVICE_CLASS_TEMPERATURE, "°C"),
		sensor(SITE_METRIC_TOTAL_LOAD, "Total load", DEVICE_CLASS_POWER, "kW"),
		sensor(SITE_METRIC_GREEN_LOAD, "Green load", DEVICE_CLASS_POWER, "kW"),
		sensor(SITE_METRIC_GREEN_MACHINES, "Machines on green supply", "", ""),
		sensor(SITE_METRIC_STATUS, "Status", DEVICE_CLASS_ENUM, ""),
		sensor(SITE_METRIC_ALERTS, "Alerts", "", ""),
	}
	// first sensor carries the full device description
	sensors[0].Device = device
	sensors[len(sensors)-1].EntityCategory = ENTITY_CLASS_DIAGNOSTIC
	return sensors
}

func idDevice(device Device) Device {
	return Device{
		Id:   device.Id,
		Name: device.Name,
	}
}

func siteOptions() []string {
	options := make([]string, 0, len(AllSites))
	for _, site := range AllSites {
		options = append(options, string(site))
	}
	return options
}

func uniqueId(baseId, id string) string {
	return fmt.Sprintf("uid_%s_%s", baseId, id)
}

func md5HashShort(text string) string {
	hash := md5.Sum([]byte(text))
	return hex.EncodeToString(hash[:])[0:8]
}
