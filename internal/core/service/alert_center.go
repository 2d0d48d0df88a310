package service

import (
	"slices"

	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/domain"
	"github.com/samber/lo"
)

// AlertCenter builds the alert list shown to operators. Counts cover the
// selected sites before the type filter applies.
func AlertCenter(state domain.FleetState, filter domain.AlertFilter) domain.AlertCenterView {
	view := domain.AlertCenterView{AllSites: filter.AllSites}

	var alerts []domain.Alert
	if filter.AllSites {
		for _, id := range domain.AllSites {
			if site, ok := state.Sites[id]; ok {
				alerts = append(alerts, site.Alerts...)
			}
		}
		slices.SortStableFunc(alerts, func(a, b domain.Alert) int {
			return b.Timestamp.Compare(a.Timestamp)
		})
	} else {
		view.Site = lo.Ternary(filter.Site == "", state.ActiveSite, filter.Site)
		alerts = slices.Clone(state.Site(view.Site).Alerts)
	}

	view.CriticalCount = lo.CountBy(alerts, func(a domain.Alert) bool { return a.Severity == domain.SeverityCritical })
	view.WarningCount = lo.CountBy(alerts, func(a domain.Alert) bool { return a.Severity == domain.SeverityWarning })

	if filter.Type != "" {
		alerts = lo.Filter(alerts, func(a domain.Alert, _ int) bool { return matchesType(a.Type, filter.Type) })
	}
	view.Alerts = lo.Ternary(alerts == nil, []domain.Alert{}, alerts)
	return view
}

func matchesType(actual, wanted domain.AlertType) bool {
	if wanted == domain.AlertSocLow {
		return actual == domain.AlertSocLow || actual == domain.AlertSocLowProtect
	}
	return actual == wanted
}
