package service

import (
	"testing"

	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestAdvise(t *testing.T) {
	t.Run("critical battery", func(t *testing.T) {
		site := testSite(8)
		got := Advise(site)
		// 7 x 6.5kW is above the overload threshold
		assert.Len(t, got, 3)
		assert.Contains(t, got[0], "switch all machines to grid")
		assert.Contains(t, got[2], "total load is high")
	})

	t.Run("low battery", func(t *testing.T) {
		site := testSite(25)
		site.SolarOutput = 85
		for i := range site.Machines {
			site.Machines[i].Load = 1
		}
		got := Advise(site)
		assert.Len(t, got, 2)
		assert.Contains(t, got[0], "move 4 machines off green")
		assert.Contains(t, got[1], "recover")
	})

	t.Run("healthy", func(t *testing.T) {
		site := testSite(80)
		site.SolarOutput = 90
		site.Machines[0].Source = domain.SourceGrid
		site.Machines[0].Load = 1
		for i := 1; i < len(site.Machines); i++ {
			site.Machines[i].Load = 1
		}
		got := Advise(site)
		assert.Len(t, got, 2)
		assert.Contains(t, got[0], "system healthy")
		assert.Contains(t, got[1], "1 grid machines")
	})

	t.Run("normal", func(t *testing.T) {
		site := testSite(50)
		for i := range site.Machines {
			site.Machines[i].Load = 2
		}
		got := Advise(site)
		assert.Equal(t, []string{
			"7 machines on green, 0 on grid, load split is reasonable",
			"keep SOC above 20% for a stable supply",
		}, got)
	})
}
