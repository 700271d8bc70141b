package engine

import (
	"math"
	"math/rand"
)

const (
	DefaultParticles = 80
	DefaultWaves     = 5
	DefaultHelix     = 40

	TrailCapacity = 3

	waveStagger   = 20
	waveMaxRadius = 400.0
	waveAlpha     = 0.8
	waveGrowth    = 2 * 50.0

	helixRadius = 180.0
	helixSpan   = 400.0
	helixSpin   = 0.02
)

type Point struct {
	X, Y float64
}

// Trail keeps the most recent positions of a particle, oldest first.
type Trail struct {
	buf  [TrailCapacity]Point
	head int
	n    int
}

// Push appends p, evicting the oldest entry when full.
func (t *Trail) Push(p Point) {
	if t.n < TrailCapacity {
		t.buf[(t.head+t.n)%TrailCapacity] = p
		t.n++
		return
	}
	t.buf[t.head] = p
	t.head = (t.head + 1) % TrailCapacity
}

func (t *Trail) Len() int { return t.n }

// At returns the i-th entry, 0 being the oldest.
func (t *Trail) At(i int) Point {
	return t.buf[(t.head+i)%TrailCapacity]
}

func (t *Trail) Reset() { t.head, t.n = 0, 0 }

// Particle orbits the core on a fixed radius.
type Particle struct {
	Angle      float64
	Radius     float64
	Size       float64
	Speed      float64
	Alpha      float64
	PulsePhase float64
	Trail      Trail
}

// Reset rerolls the orbit in place.
func (p *Particle) Reset(rng *rand.Rand) {
	p.Angle = rng.Float64() * 2 * math.Pi
	p.Radius = 100 + rng.Float64()*250
	p.Size = rng.Float64()*4 + 1.5
	p.Speed = rng.Float64()*0.015 + 0.008
	if rng.Float64() < 0.5 {
		p.Speed = -p.Speed
	}
	p.Alpha = rng.Float64()*0.6 + 0.3
	p.PulsePhase = rng.Float64() * 2 * math.Pi
	p.Trail.Reset()
}

// Advance moves the particle along its orbit around (cx, cy) and records the
// new position in its trail.
func (p *Particle) Advance(cx, cy, speedScale float64) Point {
	p.Angle += p.Speed * speedScale
	pos := Point{
		X: cx + math.Cos(p.Angle)*p.Radius,
		Y: cy + math.Sin(p.Angle)*p.Radius,
	}
	p.Trail.Push(pos)
	return pos
}

type WavePhase int

const (
	WaveDelayed WavePhase = iota
	WaveActive
)

func (p WavePhase) String() string {
	if p == WaveDelayed {
		return "delayed"
	}
	return "active"
}

// EnergyWave is an expanding ring that restarts at the core once it fades out.
type EnergyWave struct {
	Delay     int
	Radius    float64
	MaxRadius float64
	Alpha     float64
}

func NewEnergyWave(delay int) EnergyWave {
	return EnergyWave{Delay: delay, MaxRadius: waveMaxRadius, Alpha: waveAlpha}
}

func (w *EnergyWave) Phase() WavePhase {
	if w.Delay > 0 {
		return WaveDelayed
	}
	return WaveActive
}

// Advance counts down the delay or grows the ring. It reports whether the
// wave should be drawn this frame.
func (w *EnergyWave) Advance(pulseSpeed float64) bool {
	if w.Delay > 0 {
		w.Delay--
		return false
	}
	w.Radius += waveGrowth * pulseSpeed
	w.Alpha = 1 - w.Radius/w.MaxRadius
	if w.Radius >= w.MaxRadius {
		w.Radius = 0
		w.Alpha = waveAlpha
	}
	return true
}

// HelixPoint is one rung of the double helix behind the core.
type HelixPoint struct {
	Index  int
	Angle  float64
	Offset float64
}

func NewHelixPoint(i, n int) HelixPoint {
	f := float64(i) / float64(n)
	return HelixPoint{
		Index:  i,
		Angle:  f * 2 * math.Pi,
		Offset: f*helixSpan - helixSpan/2,
	}
}

// Advance spins the rung and returns both strand positions.
func (h *HelixPoint) Advance(cx, cy, clock, speedScale float64) (a, b Point) {
	h.Angle += helixSpin * speedScale
	y := cy + h.Offset + math.Sin(clock*2)*20
	a = Point{X: cx + math.Cos(h.Angle)*helixRadius, Y: y}
	b = Point{X: cx + math.Cos(h.Angle+math.Pi)*helixRadius, Y: y}
	return a, b
}
