package engine

import (
	"math"
	"math/rand"
	"time"
)

const (
	coreRadius     = 70.0
	corePulse      = 8.0
	ringCount      = 4
	ringBaseRadius = 150.0
	ringSpacing    = 40.0
	ringWobble     = 10.0
)

// Overlay is painted over the whole surface each frame so older frames fade
// into trails instead of being cleared.
var Overlay = RGBA{R: 5, G: 5, B: 5, A: 0.15}

type Option func(*Engine)

func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithCounts overrides the pool sizes. Non-positive values keep the default.
func WithCounts(particles, waves, helix int) Option {
	return func(e *Engine) {
		if particles > 0 {
			e.counts[0] = particles
		}
		if waves > 0 {
			e.counts[1] = waves
		}
		if helix > 0 {
			e.counts[2] = helix
		}
	}
}

// WithFrameHook registers fn to run after every frame is drawn.
func WithFrameHook(fn func(ts time.Duration)) Option {
	return func(e *Engine) { e.hook = fn }
}

type Engine struct {
	rng    *rand.Rand
	counts [3]int
	hook   func(ts time.Duration)

	surface Surface
	sched   FrameScheduler

	width, height float64
	ratio         float64

	state LiveState
	clock float64
	frame uint64
	rate  frameCounter

	particles []Particle
	waves     []EnergyWave
	helix     []HelixPoint
}

func New(opts ...Option) *Engine {
	e := &Engine{
		counts: [3]int{DefaultParticles, DefaultWaves, DefaultHelix},
		state:  DefaultLiveState(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return e
}

// Initialize attaches the engine to s, allocates the entity pools and asks
// sched for the first frame. Pools are allocated once; later frames only
// reset entities in place.
func (e *Engine) Initialize(s Surface, sched FrameScheduler) {
	e.surface = s
	e.sched = sched
	e.Resize()
	if n, ok := s.(ResizeNotifier); ok {
		n.OnResize(e.Resize)
	}

	e.particles = make([]Particle, e.counts[0])
	for i := range e.particles {
		e.particles[i].Reset(e.rng)
	}
	e.waves = make([]EnergyWave, e.counts[1])
	for i := range e.waves {
		e.waves[i] = NewEnergyWave(i * waveStagger)
	}
	e.helix = make([]HelixPoint, e.counts[2])
	for i := range e.helix {
		e.helix[i] = NewHelixPoint(i, len(e.helix))
	}

	sched.RequestFrame(e.RenderFrame)
}

// Resize re-derives the logical size from the surface's device size and
// pixel ratio and rescales the surface to match.
func (e *Engine) Resize() {
	if e.surface == nil {
		return
	}
	ratio := e.surface.PixelRatio()
	if ratio <= 0 {
		ratio = 1
	}
	w, h := e.surface.DeviceSize()
	e.ratio = ratio
	e.width = float64(w) / ratio
	e.height = float64(h) / ratio
	e.surface.SetScale(ratio)
}

// PushExternalState merges p into the live state. It never blocks; the
// caller must not run it concurrently with RenderFrame.
func (e *Engine) PushExternalState(p Partial) {
	e.state.Merge(p)
}

// RenderFrame advances the simulation by one frame, draws it, and schedules
// the next one. Layers are drawn back to front.
func (e *Engine) RenderFrame(ts time.Duration) {
	s := e.surface
	if s == nil {
		return
	}
	s.FillRect(0, 0, e.width, e.height, Overlay)

	e.clock += e.state.PulseSpeed
	e.frame++

	cx, cy := e.width/2, e.height/2
	e.drawHelix(cx, cy)
	e.drawWaves(cx, cy)
	e.drawRings(cx, cy)
	e.drawParticles(cx, cy)
	e.drawCore(cx, cy)

	e.rate.observe(ts)
	if e.hook != nil {
		e.hook(ts)
	}
	e.sched.RequestFrame(e.RenderFrame)
}

func (e *Engine) drawHelix(cx, cy float64) {
	const alpha = 0.15
	dot := e.state.Color.Alpha(alpha)
	strand := e.state.Color.Alpha(alpha * 0.5)
	for i := range e.helix {
		a, b := e.helix[i].Advance(cx, cy, e.clock, e.state.ParticleSpeed)
		e.surface.FillCircle(a.X, a.Y, 2, dot)
		e.surface.FillCircle(b.X, b.Y, 2, dot)
		e.surface.Line(a.X, a.Y, b.X, b.Y, 1, strand)
	}
}

func (e *Engine) drawWaves(cx, cy float64) {
	for i := range e.waves {
		w := &e.waves[i]
		if !w.Advance(e.state.PulseSpeed) {
			continue
		}
		e.surface.StrokeCircle(cx, cy, w.Radius, 2, e.state.Color.Alpha(w.Alpha*0.4))
	}
}

func (e *Engine) drawRings(cx, cy float64) {
	for i := 0; i < ringCount; i++ {
		fi := float64(i)
		r := ringBaseRadius + fi*ringSpacing + math.Sin(e.clock+fi)*ringWobble
		e.surface.StrokeCircle(cx, cy, r, 1.5, e.state.Color.Alpha(0.08-fi*0.015))
	}
}

func (e *Engine) drawParticles(cx, cy float64) {
	c := e.state.Color
	for i := range e.particles {
		p := &e.particles[i]
		pos := p.Advance(cx, cy, e.state.ParticleSpeed)

		n := p.Trail.Len()
		for j := 0; j < n; j++ {
			t := p.Trail.At(j)
			a := float64(j) / float64(n) * p.Alpha * 0.3
			e.surface.FillCircle(t.X, t.Y, p.Size*0.5, c.Alpha(a))
		}

		pulse := 1 + math.Sin(e.clock*3+p.PulsePhase)*0.3
		e.surface.FillCircle(pos.X, pos.Y, p.Size*pulse, c.Alpha(p.Alpha))
	}
}

// CoreRadius is the organism's radius at the current clock.
func (e *Engine) CoreRadius() float64 {
	breath := math.Sin(e.clock*2) * e.state.BreathAmplitude
	pulse := math.Abs(math.Sin(e.clock*4)) * corePulse
	return coreRadius + breath + pulse
}

// jitter displaces the core center proportionally to tension.
func (e *Engine) jitter() (dx, dy float64) {
	if e.state.Tension <= 0 {
		return 0, 0
	}
	dx = (e.rng.Float64() - 0.5) * e.state.Tension
	dy = (e.rng.Float64() - 0.5) * e.state.Tension
	return dx, dy
}

func (e *Engine) drawCore(cx, cy float64) {
	r := e.CoreRadius()
	dx, dy := e.jitter()
	x, y := cx+dx, cy+dy
	c := e.state.Color

	for i := 0; i < 3; i++ {
		fi := float64(i)
		bloom := r * (3 - fi*0.5)
		alpha := 0.15 / (fi + 1)
		e.surface.FillCircleGradient(x, y, bloom, RadialGradient{
			X0: x, Y0: y, R0: r * 0.1,
			X1: x, Y1: y, R1: bloom,
			Stops: []ColorStop{
				{Offset: 0, Color: c.Alpha(alpha * 2)},
				{Offset: 1, Color: c.Alpha(0)},
			},
		})
	}

	e.surface.FillCircleGradient(x, y, r, RadialGradient{
		X0: x, Y0: y, R0: 0,
		X1: x, Y1: y, R1: r,
		Stops: []ColorStop{
			{Offset: 0, Color: c.Alpha(1)},
			{Offset: 0.7, Color: c.Alpha(0.8)},
			{Offset: 1, Color: c.Alpha(0.4)},
		},
	})

	white := Color{R: 255, G: 255, B: 255}
	e.surface.FillCircleGradient(x, y, r, RadialGradient{
		X0: x - r*0.3, Y0: y - r*0.3, R0: 0,
		X1: x, Y1: y, R1: r * 0.6,
		Stops: []ColorStop{
			{Offset: 0, Color: white.Alpha(0.3)},
			{Offset: 1, Color: white.Alpha(0)},
		},
	})
}

// FrameRate is the frames per second measured over the last full second,
// or 0 before the first second has elapsed.
func (e *Engine) FrameRate() int { return e.rate.fps }

func (e *Engine) State() LiveState { return e.state }

func (e *Engine) Clock() float64 { return e.clock }

func (e *Engine) Frames() uint64 { return e.frame }

// LogicalSize is the drawing area in logical units.
func (e *Engine) LogicalSize() (w, h float64) { return e.width, e.height }

func (e *Engine) PixelRatio() float64 { return e.ratio }

func (e *Engine) Particles() []Particle { return e.particles }

func (e *Engine) Waves() []EnergyWave { return e.waves }

func (e *Engine) Helix() []HelixPoint { return e.helix }
