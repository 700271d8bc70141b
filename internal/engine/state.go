package engine

import "github.com/san-kum/sentinel/internal/mapper"

// ColorSmoothing is the fraction of the remaining color distance covered by
// one PushExternalState call.
const ColorSmoothing = 0.1

// LiveState is the working parameter vector every frame reads from.
type LiveState struct {
	Status          mapper.Status
	Color           Color
	PulseSpeed      float64
	BreathAmplitude float64
	Tension         float64
	ParticleSpeed   float64
}

// DefaultLiveState is what an engine shows before its first update.
func DefaultLiveState() LiveState {
	return LiveState{
		Status:          mapper.Calm,
		Color:           ColorOf(mapper.Green),
		PulseSpeed:      0.02,
		BreathAmplitude: 10,
		Tension:         0,
		ParticleSpeed:   1,
	}
}

// Partial carries any subset of the visual parameters. Nil fields are left
// untouched when merged.
type Partial struct {
	Status          *mapper.Status
	Color           *mapper.RGB
	PulseSpeed      *float64
	BreathAmplitude *float64
	Tension         *float64
	ParticleSpeed   *float64
}

// FromParams returns a Partial with every field set.
func FromParams(p mapper.Params) Partial {
	return Partial{
		Status:          &p.Status,
		Color:           &p.Color,
		PulseSpeed:      &p.PulseSpeed,
		BreathAmplitude: &p.BreathAmplitude,
		Tension:         &p.Tension,
		ParticleSpeed:   &p.ParticleSpeed,
	}
}

// Merge applies p to s. Color eases toward the target; the rest snap.
func (s *LiveState) Merge(p Partial) {
	if p.Color != nil {
		s.Color = s.Color.Lerp(ColorOf(*p.Color), ColorSmoothing)
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.PulseSpeed != nil {
		s.PulseSpeed = *p.PulseSpeed
	}
	if p.BreathAmplitude != nil {
		s.BreathAmplitude = *p.BreathAmplitude
	}
	if p.Tension != nil {
		s.Tension = *p.Tension
	}
	if p.ParticleSpeed != nil {
		s.ParticleSpeed = *p.ParticleSpeed
	}
}
