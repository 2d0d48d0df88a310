package service

import (
	"fmt"
	"math"

	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/domain"
)

const MAX_SUGGESTIONS = 3

// Advise derives operator suggestions from a site's current energy state.
func Advise(site domain.SiteState) []string {
	soc := site.BatteryLevel
	solar := site.SolarOutput
	totalLoad := site.TotalLoad()
	greenMachines := site.MachinesOn(domain.SourceBattery)
	gridMachines := site.MachinesOn(domain.SourceGrid)

	var suggestions []string
	switch {
	case soc < 10:
		suggestions = append(suggestions,
			fmt.Sprintf("battery very low (%.0f%%), switch all machines to grid to avoid a production stop", soc),
			fmt.Sprintf("move machines back to green once solar output stabilises (now %.0fkW)", solar))
	case soc < 30:
		suggestions = append(suggestions,
			fmt.Sprintf("battery low (%.0f%%), move %d machines off green supply", soc, int(math.Ceil(float64(greenMachines)/2))))
		if solar > 80 {
			suggestions = append(suggestions,
				fmt.Sprintf("solar output is good (%.0fkW), battery should recover within 30 minutes", solar))
		}
	case soc > 70 && solar > 85:
		suggestions = append(suggestions,
			fmt.Sprintf("system healthy, battery at %.0f%% and solar at %.0fkW", soc, solar))
		if gridMachines > 0 {
			suggestions = append(suggestions,
				fmt.Sprintf("%d grid machines can move to green supply", gridMachines))
		}
	default:
		suggestions = append(suggestions,
			fmt.Sprintf("%d machines on green, %d on grid, load split is reasonable", greenMachines, gridMachines),
			"keep SOC above 20% for a stable supply")
	}

	if totalLoad > 40 {
		suggestions = append(suggestions, fmt.Sprintf("total load is high (%.1fkW), avoid load spikes", totalLoad))
	}

	if len(suggestions) > MAX_SUGGESTIONS {
		suggestions = suggestions[:MAX_SUGGESTIONS]
	}
	return suggestions
}
