package service

import (
	"time"

	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/domain"
)

// scriptedRand replays values and then keeps returning fallback.
type scriptedRand struct {
	values   []float64
	fallback float64
	intN     int
}

func (r *scriptedRand) Float64() float64 {
	if len(r.values) == 0 {
		return r.fallback
	}
	v := r.values[0]
	r.values = r.values[1:]
	return v
}

func (r *scriptedRand) IntN(n int) int {
	return r.intN % n
}

func constRand(value float64) *scriptedRand {
	return &scriptedRand{fallback: value}
}

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// newTestStore builds a store whose draws are all 0.5: every machine starts
// running on the battery with a 6.5kW load, solar and temperature never drift.
func newTestStore(clock *fakeClock) *FleetStore {
	return NewFleetStore(FleetStoreOptions{
		Clock: clock,
		Rand:  constRand(0.5),
	})
}

func setSite(s *FleetStore, id domain.SiteId, mutate func(site *domain.SiteState)) {
	site := s.state.Sites[id].Clone()
	mutate(&site)
	s.state.Sites[id] = site
}

func allOn(source domain.PowerSource) func(site *domain.SiteState) {
	return func(site *domain.SiteState) {
		for i := range site.Machines {
			site.Machines[i].Source = source
		}
	}
}
