package service

import (
	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/domain"
)

// ProtectionTriggered reports a falling-edge crossing into the critical SOC
// range. A level that stays critical does not trigger again.
func ProtectionTriggered(prevLevel, newLevel float64) bool {
	return newLevel <= domain.CRITICAL_SOC_LEVEL && prevLevel > domain.CRITICAL_SOC_LEVEL
}

// ApplyProtection moves every battery fed machine of site to the grid and
// returns the ids it switched.
func ApplyProtection(site *domain.SiteState) []int {
	var switched []int
	for i := range site.Machines {
		if site.Machines[i].Source == domain.SourceBattery {
			site.Machines[i].Source = domain.SourceGrid
			switched = append(switched, site.Machines[i].Id)
		}
	}
	return switched
}
