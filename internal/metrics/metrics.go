package metrics

import (
	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fleetwatch"

// Metrics exposes the fleet state as Prometheus gauges. Status gauges are
// one-hot: the current value is 1, every other value 0.
type Metrics struct {
	batteryLevel  *prometheus.GaugeVec
	solarOutput   *prometheus.GaugeVec
	batteryTemp   *prometheus.GaugeVec
	totalLoad     *prometheus.GaugeVec
	greenLoad     *prometheus.GaugeVec
	greenMachines *prometheus.GaugeVec
	siteStatus    *prometheus.GaugeVec
	activeSite    *prometheus.GaugeVec
	commandStatus *prometheus.GaugeVec
	alerts        *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	siteGauge := func(name, help string) *prometheus.GaugeVec {
		return factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, []string{"site"})
	}

	return &Metrics{
		batteryLevel:  siteGauge("battery_level_percent", "Battery state of charge per site"),
		solarOutput:   siteGauge("solar_output_kw", "Solar output per site"),
		batteryTemp:   siteGauge("battery_temperature_celsius", "Battery temperature per site"),
		totalLoad:     siteGauge("total_load_kw", "Load of all machines per site"),
		greenLoad:     siteGauge("green_load_kw", "Load of machines on the battery per site"),
		greenMachines: siteGauge("green_machines", "Machines on the battery per site"),
		siteStatus: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "site_status",
			Help:      "Site status, 1 for the current status",
		}, []string{"site", "status"}),
		activeSite: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_site",
			Help:      "1 for the site currently selected",
		}, []string{"site"}),
		commandStatus: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "command_status",
			Help:      "Fleet command stage, 1 for the current stage",
		}, []string{"status"}),
		alerts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Alerts raised",
		}, []string{"site", "type", "severity"}),
	}
}

func (m *Metrics) ObserveFleet(state domain.FleetState) {
	for id, site := range state.Sites {
		label := string(id)
		m.batteryLevel.WithLabelValues(label).Set(site.BatteryLevel)
		m.solarOutput.WithLabelValues(label).Set(site.SolarOutput)
		m.batteryTemp.WithLabelValues(label).Set(site.BatteryTemp)
		m.totalLoad.WithLabelValues(label).Set(site.TotalLoad())
		m.greenLoad.WithLabelValues(label).Set(site.GreenLoad())
		m.greenMachines.WithLabelValues(label).Set(float64(site.MachinesOn(domain.SourceBattery)))

		current := site.Status()
		for _, status := range domain.AllSiteStatuses {
			m.siteStatus.WithLabelValues(label, string(status)).Set(oneHot(status == current))
		}
		m.activeSite.WithLabelValues(label).Set(oneHot(id == state.ActiveSite))
	}
	for _, status := range domain.AllCommandStatuses {
		m.commandStatus.WithLabelValues(string(status)).Set(oneHot(status == state.CommandStatus))
	}
}

func (m *Metrics) ObserveAlert(alert domain.Alert) {
	m.alerts.WithLabelValues(string(alert.SiteId), string(alert.Type), string(alert.Severity)).Inc()
}

func oneHot(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
