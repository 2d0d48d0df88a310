package service

import (
	"time"

	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/domain"
)

// CommandTimings are the stage deadlines of a fleet command, all measured
// from acceptance.
type CommandTimings struct {
	Sending time.Duration
	Commit  time.Duration
	Reset   time.Duration
}

var DefaultCommandTimings = CommandTimings{
	Sending: 500 * time.Millisecond,
	Commit:  1500 * time.Millisecond,
	Reset:   3000 * time.Millisecond,
}

// FleetCommand is an accepted switch-all request. Its stage is derived from
// the time elapsed since AcceptedAt, so replaying Advance with the same
// instants always gives the same result.
type FleetCommand struct {
	Seq        uint64
	AcceptedAt time.Time
	Site       domain.SiteId
	Source     domain.PowerSource
	Stage      domain.CommandStatus
}

// Advance moves the command through every stage whose deadline has passed at
// now. commit runs once, when the processing stage ends, and decides between
// success and an aborted return to idle.
func (c *FleetCommand) Advance(now time.Time, timings CommandTimings, commit func(*FleetCommand) bool) domain.CommandStatus {
	elapsed := now.Sub(c.AcceptedAt)

	if c.Stage == domain.CommandSending && elapsed >= timings.Sending {
		c.Stage = domain.CommandProcessing
	}
	if c.Stage == domain.CommandProcessing && elapsed >= timings.Commit {
		if commit(c) {
			c.Stage = domain.CommandSuccess
		} else {
			c.Stage = domain.CommandIdle
		}
	}
	if c.Stage != domain.CommandIdle && elapsed >= timings.Reset {
		c.Stage = domain.CommandIdle
	}
	return c.Stage
}

func (c *FleetCommand) Done() bool {
	return c.Stage == domain.CommandIdle
}
