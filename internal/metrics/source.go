package metrics

import (
	"math"
	"math/rand"
	"time"
)

const (
	trendChance      = 0.95
	trendGain        = 2.0
	cpuNoise         = 2.0
	memoryLag        = 0.05
	memoryNoise      = 1.0
	networkNoise     = 10.0
	spikeChance      = 0.98
	errorChance      = 0.8
	errorDecayChance = 0.99
)

// Source produces a lightly autocorrelated random walk of health samples.
// A hidden trend in [-1, 1] is resampled roughly every twenty ticks so the
// cpu drifts in runs instead of white noise.
//
// Source is not safe for concurrent use.
type Source struct {
	rng   *rand.Rand
	cur   Sample
	trend float64
	ticks uint64
}

type SourceOption func(*Source)

// WithRand makes the source draw from r instead of a time-seeded generator.
func WithRand(r *rand.Rand) SourceOption {
	return func(s *Source) { s.rng = r }
}

// WithInitial overrides the starting sample.
func WithInitial(init Sample) SourceOption {
	return func(s *Source) { s.cur = init }
}

// WithTrend sets the starting trend, clamped to [-1, 1].
func WithTrend(trend float64) SourceOption {
	return func(s *Source) { s.trend = clamp(trend, -1, 1) }
}

func NewSource(opts ...SourceOption) *Source {
	s := &Source{cur: DefaultSample}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s.cur.CPU = clamp(s.cur.CPU, MinCPU, MaxCPU)
	s.cur.Memory = clamp(s.cur.Memory, MinMemory, MaxMemory)
	s.cur.Network = math.Max(0, s.cur.Network)
	if s.cur.Errors < 0 {
		s.cur.Errors = 0
	}
	return s
}

// Tick advances the process by one step and returns the new sample.
func (s *Source) Tick() Sample {
	if s.rng.Float64() > trendChance {
		s.trend = s.uniform(1)
	}

	s.cur.CPU += s.trend*trendGain + s.uniform(cpuNoise)
	s.cur.CPU = clamp(s.cur.CPU, MinCPU, MaxCPU)

	s.cur.Memory += (s.cur.CPU-s.cur.Memory)*memoryLag + s.uniform(memoryNoise)
	s.cur.Memory = clamp(s.cur.Memory, MinMemory, MaxMemory)

	s.cur.Network = math.Max(0, s.cur.Network+s.uniform(networkNoise))
	if s.rng.Float64() > spikeChance {
		s.cur.Network = NetworkSpike
	}

	// Errors only fall through the slow decay path, never because cpu recovered.
	if s.cur.CPU > StressCPU && s.rng.Float64() > errorChance {
		s.cur.Errors++
	} else if s.rng.Float64() > errorDecayChance && s.cur.Errors > 0 {
		s.cur.Errors--
	}

	s.ticks++
	return s.cur
}

// Current returns the last produced sample without advancing.
func (s *Source) Current() Sample { return s.cur }

func (s *Source) Trend() float64 { return s.trend }

func (s *Source) Ticks() uint64 { return s.ticks }

// uniform returns a value in [-span, span).
func (s *Source) uniform(span float64) float64 {
	return (s.rng.Float64()*2 - 1) * span
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
