package service

import (
	"testing"
	"time"

	"github.com/johnnychen-a11y/energy-flow-insights/internal/util"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestOptionsFromConfig(t *testing.T) {
	cfg := util.LoadTestConfig()
	opts := OptionsFromConfig(&cfg, zap.NewNop())

	assert.Equal(t, CommandTimings{Sending: 50 * time.Millisecond, Commit: 150 * time.Millisecond, Reset: 300 * time.Millisecond}, opts.Timings)
	assert.Equal(t, 30*time.Second, opts.AlertCooldown)
	assert.Equal(t, 50, opts.MaxAlerts)

	// same seed, same fleet
	a := NewFleetStore(opts).Snapshot()
	b := NewFleetStore(OptionsFromConfig(&cfg, zap.NewNop())).Snapshot()
	assert.Equal(t, a, b)
}
