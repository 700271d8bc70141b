// Package mapper turns health samples into the parameters that drive the organism.
package mapper

import (
	"fmt"
	"math"

	"github.com/san-kum/sentinel/internal/metrics"
)

type Status int

const (
	Calm Status = iota
	Stress
	Critical
)

func (s Status) String() string {
	switch s {
	case Calm:
		return "CALM"
	case Stress:
		return "STRESS"
	case Critical:
		return "CRITICAL"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

type RGB struct {
	R, G, B uint8
}

func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

var (
	Green  = RGB{0, 255, 136}
	Orange = RGB{255, 170, 0}
	Red    = RGB{255, 51, 51}
)

const (
	StressCPU      = 50.0
	StressMemory   = 70.0
	CriticalCPU    = 80.0
	CriticalErrors = 5

	MinPulseSpeed  = 0.01
	PulseSpeedSpan = 0.08
	MinBreath      = 10.0
	BreathSpan     = 20.0
	TensionPerErr  = 2.0
	MaxTension     = 20.0
	MinParticle    = 0.5
	NetworkDivisor = 50.0
)

// Params is the visual parameter vector derived from one sample.
type Params struct {
	Status          Status
	Color           RGB
	PulseSpeed      float64
	BreathAmplitude float64
	Tension         float64
	ParticleSpeed   float64
}

func (p Params) String() string {
	return fmt.Sprintf("%s pulse=%.4f breath=%.2f tension=%.1f particles=%.2f",
		p.Status, p.PulseSpeed, p.BreathAmplitude, p.Tension, p.ParticleSpeed)
}

// Map is total over the documented sample ranges and keeps no state.
func Map(s metrics.Sample) Params {
	status, color := Classify(s)
	return Params{
		Status:          status,
		Color:           color,
		PulseSpeed:      MinPulseSpeed + (s.CPU/100)*PulseSpeedSpan,
		BreathAmplitude: MinBreath + (s.Memory/100)*BreathSpan,
		Tension:         math.Min(float64(s.Errors)*TensionPerErr, MaxTension),
		ParticleSpeed:   MinParticle + s.Network/NetworkDivisor,
	}
}

// Classify evaluates the status rules in order; later rules win.
func Classify(s metrics.Sample) (Status, RGB) {
	status, color := Calm, Green
	if s.CPU > StressCPU || s.Memory > StressMemory {
		status, color = Stress, Orange
	}
	if s.CPU > CriticalCPU || s.Errors > CriticalErrors {
		status, color = Critical, Red
	}
	return status, color
}
