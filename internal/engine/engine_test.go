package engine_test

import (
	"math"
	"math/rand"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/sentinel/internal/engine"
	"github.com/san-kum/sentinel/internal/mapper"
)

func ptr[T any](v T) *T { return &v }

const frame = 16 * time.Millisecond

var _ = Describe("Engine", func() {
	var (
		surface *recordingSurface
		sched   *engine.Stepper
		eng     *engine.Engine
		ts      time.Duration
	)

	step := func(n int) {
		for i := 0; i < n; i++ {
			Expect(sched.Fire(ts)).To(BeTrue())
			ts += frame
		}
	}

	BeforeEach(func() {
		surface = newRecordingSurface(200, 100, 0.25)
		sched = engine.NewStepper()
		eng = engine.New(engine.WithRand(rand.New(rand.NewSource(1))))
		ts = 0
		eng.Initialize(surface, sched)
	})

	Describe("Initialize", func() {
		It("allocates the fixed pools", func() {
			Expect(eng.Particles()).To(HaveLen(engine.DefaultParticles))
			Expect(eng.Waves()).To(HaveLen(engine.DefaultWaves))
			Expect(eng.Helix()).To(HaveLen(engine.DefaultHelix))
		})

		It("staggers the energy waves", func() {
			for i, w := range eng.Waves() {
				Expect(w.Delay).To(Equal(i * 20))
				Expect(w.Radius).To(BeZero())
			}
		})

		It("derives logical size from the device size and pixel ratio", func() {
			w, h := eng.LogicalSize()
			Expect(w).To(BeNumerically("==", 800))
			Expect(h).To(BeNumerically("==", 400))
			Expect(surface.scale).To(BeNumerically("==", 0.25))
		})

		It("requests the first frame", func() {
			Expect(sched.Pending()).To(BeTrue())
		})

		It("follows surface resizes", func() {
			surface.resize(400, 300, 0.5)
			w, h := eng.LogicalSize()
			Expect(w).To(BeNumerically("==", 800))
			Expect(h).To(BeNumerically("==", 600))
			Expect(surface.scale).To(BeNumerically("==", 0.5))
			Expect(eng.PixelRatio()).To(BeNumerically("==", 0.5))
		})

		It("starts from the default live state", func() {
			Expect(eng.State()).To(Equal(engine.DefaultLiveState()))
		})
	})

	Describe("PushExternalState", func() {
		It("eases the color 10% of the remaining distance per call", func() {
			target := engine.ColorOf(mapper.RGB{R: 255, G: 0, B: 0})
			dist := func(c engine.Color) float64 {
				return math.Sqrt(math.Pow(target.R-c.R, 2) + math.Pow(target.G-c.G, 2) + math.Pow(target.B-c.B, 2))
			}
			prev := eng.State().Color
			Expect(prev).To(Equal(engine.ColorOf(mapper.Green)))
			for i := 0; i < 200; i++ {
				eng.PushExternalState(engine.Partial{Color: ptr(mapper.RGB{R: 255})})
				cur := eng.State().Color
				Expect(dist(cur)).To(BeNumerically("~", dist(prev)*0.9, 1e-9))
				Expect(cur.R).To(BeNumerically(">=", prev.R))
				Expect(cur.R).To(BeNumerically("<=", 255))
				Expect(cur.G).To(BeNumerically("<=", prev.G))
				Expect(cur.G).To(BeNumerically(">=", 0))
				Expect(cur.B).To(BeNumerically(">=", 0))
				prev = cur
			}
			Expect(dist(prev)).To(BeNumerically("<", 1e-6))
		})

		It("does not need a frame for the color to converge", func() {
			for i := 0; i < 100; i++ {
				eng.PushExternalState(engine.Partial{Color: ptr(mapper.Red)})
			}
			Expect(eng.Frames()).To(BeZero())
			Expect(eng.State().Color.RGB()).To(Equal(mapper.Red))
		})

		It("snaps every other field", func() {
			eng.PushExternalState(engine.FromParams(mapper.Params{
				Status:          mapper.Critical,
				Color:           mapper.Red,
				PulseSpeed:      0.09,
				BreathAmplitude: 30,
				Tension:         20,
				ParticleSpeed:   4.5,
			}))
			st := eng.State()
			Expect(st.Status).To(Equal(mapper.Critical))
			Expect(st.PulseSpeed).To(Equal(0.09))
			Expect(st.BreathAmplitude).To(Equal(30.0))
			Expect(st.Tension).To(Equal(20.0))
			Expect(st.ParticleSpeed).To(Equal(4.5))
			Expect(st.Color.RGB()).NotTo(Equal(mapper.Red))
		})

		It("leaves absent fields untouched", func() {
			before := eng.State()
			eng.PushExternalState(engine.Partial{Tension: ptr(6.0)})
			after := eng.State()
			Expect(after.Tension).To(Equal(6.0))
			after.Tension = before.Tension
			Expect(after).To(Equal(before))

			eng.PushExternalState(engine.Partial{})
			Expect(eng.State().Tension).To(Equal(6.0))
		})
	})

	Describe("RenderFrame", func() {
		It("draws the layers back to front and reschedules", func() {
			step(1)
			kinds := surface.kinds()
			Expect(kinds[0]).To(Equal("rect"))
			Expect(surface.calls[0].color).To(Equal(engine.Overlay))
			Expect(surface.calls[0].x).To(BeNumerically("==", 800))
			Expect(surface.calls[0].y).To(BeNumerically("==", 400))

			helix := kinds[1 : 1+3*engine.DefaultHelix]
			for i := 0; i < len(helix); i += 3 {
				Expect(helix[i : i+3]).To(Equal([]string{"circle", "circle", "line"}))
			}
			rest := kinds[1+3*engine.DefaultHelix:]
			// one active wave plus four guide rings
			Expect(rest[:5]).To(Equal([]string{"stroke", "stroke", "stroke", "stroke", "stroke"}))
			Expect(rest[5 : 5+2*engine.DefaultParticles]).To(HaveEach("circle"))
			Expect(rest[5+2*engine.DefaultParticles:]).To(Equal([]string{"gradient", "gradient", "gradient", "gradient", "gradient"}))

			Expect(sched.Pending()).To(BeTrue())
		})

		It("advances the clock by the pulse speed", func() {
			eng.PushExternalState(engine.Partial{PulseSpeed: ptr(0.05)})
			step(10)
			Expect(eng.Clock()).To(BeNumerically("~", 0.5, 1e-9))
			Expect(eng.Frames()).To(BeEquivalentTo(10))
		})

		It("keeps the core centered without tension", func() {
			step(5)
			grads := surface.calls[len(surface.calls)-5:]
			for _, g := range grads {
				Expect(g.x).To(Equal(400.0))
				Expect(g.y).To(Equal(200.0))
			}
		})

		It("jitters the core proportionally to tension", func() {
			eng.PushExternalState(engine.Partial{Tension: ptr(10.0)})
			moved := false
			for i := 0; i < 20; i++ {
				surface.reset()
				step(1)
				g := surface.calls[len(surface.calls)-1]
				Expect(math.Abs(g.x - 400)).To(BeNumerically("<=", 5))
				Expect(math.Abs(g.y - 200)).To(BeNumerically("<=", 5))
				if g.x != 400 || g.y != 200 {
					moved = true
				}
			}
			Expect(moved).To(BeTrue())
		})

		It("tints every layer with the live color", func() {
			step(1)
			for _, c := range surface.calls[1 : len(surface.calls)-1] {
				if c.kind == "gradient" {
					Expect(c.gradient.Stops[0].Color.G).To(Equal(255.0))
					continue
				}
				Expect(c.color.R).To(Equal(0.0))
				Expect(c.color.G).To(Equal(255.0))
				Expect(c.color.B).To(Equal(136.0))
			}
		})

		It("breathes with the configured amplitude", func() {
			eng.PushExternalState(engine.Partial{BreathAmplitude: ptr(30.0), PulseSpeed: ptr(0.09)})
			lo, hi := math.Inf(1), math.Inf(-1)
			for i := 0; i < 200; i++ {
				step(1)
				r := eng.CoreRadius()
				lo, hi = math.Min(lo, r), math.Max(hi, r)
			}
			Expect(lo).To(BeNumerically(">=", 70-30))
			Expect(hi).To(BeNumerically("<=", 70+30+8))
			Expect(hi - lo).To(BeNumerically(">", 40))
		})
	})

	Describe("energy waves", func() {
		It("cycle between the core and the max radius", func() {
			eng.PushExternalState(engine.Partial{PulseSpeed: ptr(0.09)})
			prev := make([]engine.EnergyWave, engine.DefaultWaves)
			copy(prev, eng.Waves())
			resets := 0
			for f := 0; f < 1000; f++ {
				step(1)
				for i, w := range eng.Waves() {
					if w.Radius < prev[i].Radius {
						resets++
						Expect(w.Radius).To(BeZero())
						Expect(w.Alpha).To(Equal(0.8))
						Expect(prev[i].Radius + 9).To(BeNumerically(">=", w.MaxRadius-1e-9))
					}
					Expect(w.Radius).To(BeNumerically("<", w.MaxRadius))
					prev[i] = w
				}
			}
			Expect(resets).To(BeNumerically(">", 50))
		})

		It("wait out their delay before activating", func() {
			step(1)
			waves := eng.Waves()
			Expect(waves[0].Phase()).To(Equal(engine.WaveActive))
			Expect(waves[1].Phase()).To(Equal(engine.WaveDelayed))
			Expect(waves[1].Delay).To(Equal(19))
			step(19)
			Expect(eng.Waves()[1].Phase()).To(Equal(engine.WaveActive))
			Expect(eng.Waves()[1].Radius).To(BeZero())
			step(1)
			Expect(eng.Waves()[1].Radius).To(BeNumerically(">", 0))
		})
	})

	Describe("particles", func() {
		It("bound their trail to three entries", func() {
			for f := 0; f < 50; f++ {
				step(1)
				for _, p := range eng.Particles() {
					Expect(p.Trail.Len()).To(BeNumerically("<=", engine.TrailCapacity))
				}
			}
			for _, p := range eng.Particles() {
				Expect(p.Trail.Len()).To(Equal(engine.TrailCapacity))
			}
		})

		It("orbit at a fixed radius", func() {
			step(30)
			for _, p := range eng.Particles() {
				last := p.Trail.At(p.Trail.Len() - 1)
				Expect(math.Hypot(last.X-400, last.Y-200)).To(BeNumerically("~", p.Radius, 1e-9))
			}
		})
	})

	Describe("FrameRate", func() {
		It("reports nothing before a full second", func() {
			step(60)
			Expect(eng.FrameRate()).To(BeZero())
		})

		It("reports the rolling rate once a second has elapsed", func() {
			step(64)
			Expect(eng.FrameRate()).To(BeNumerically("~", 62, 2))
			step(64)
			Expect(eng.FrameRate()).To(BeNumerically("~", 62, 2))
		})
	})

	Describe("frame hook", func() {
		It("runs after each frame is drawn with the frame timestamp", func() {
			var seen []time.Duration
			var drawn []int
			hooked := engine.New(
				engine.WithRand(rand.New(rand.NewSource(1))),
				engine.WithFrameHook(func(ts time.Duration) {
					seen = append(seen, ts)
					drawn = append(drawn, surface.count("gradient"))
				}),
			)
			hookSched := engine.NewStepper()
			surface.reset()
			hooked.Initialize(surface, hookSched)

			Expect(hookSched.Fire(10 * time.Millisecond)).To(BeTrue())
			Expect(hookSched.Fire(26 * time.Millisecond)).To(BeTrue())

			Expect(seen).To(Equal([]time.Duration{10 * time.Millisecond, 26 * time.Millisecond}))
			Expect(drawn).To(Equal([]int{5, 10}))
			Expect(hookSched.Pending()).To(BeTrue())
		})
	})
})
