package service

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/port"
)

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// NewRandomSource returns a PCG generator. A zero seed picks one from the
// wall clock.
func NewRandomSource(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed>>1|1))
}

func uniform(r port.RandomSource, min, max float64) float64 {
	return min + r.Float64()*(max-min)
}

func clamp(value, min, max float64) float64 {
	return math.Max(min, math.Min(max, value))
}

// ensure interface compliance
var (
	_ port.Clock        = SystemClock{}
	_ port.RandomSource = (*rand.Rand)(nil)
)
