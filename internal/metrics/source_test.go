package metrics

import (
	"math/rand"
	"testing"
)

func TestSourceStaysWithinClamps(t *testing.T) {
	for _, name := range PresetNames() {
		p, _ := GetPreset(name)
		t.Run(name, func(t *testing.T) {
			opts := append(p.Options(), WithRand(rand.New(rand.NewSource(7))))
			src := NewSource(opts...)
			for i := 0; i < 20000; i++ {
				s := src.Tick()
				if s.CPU < MinCPU || s.CPU > MaxCPU {
					t.Fatalf("tick %d: cpu %.2f out of [%v,%v]", i, s.CPU, MinCPU, MaxCPU)
				}
				if s.Memory < MinMemory || s.Memory > MaxMemory {
					t.Fatalf("tick %d: memory %.2f out of [%v,%v]", i, s.Memory, MinMemory, MaxMemory)
				}
				if s.Network < 0 {
					t.Fatalf("tick %d: negative network %.2f", i, s.Network)
				}
				if s.Errors < 0 {
					t.Fatalf("tick %d: negative errors %d", i, s.Errors)
				}
			}
			if src.Ticks() != 20000 {
				t.Errorf("expected 20000 ticks, got %d", src.Ticks())
			}
		})
	}
}

func TestSourceInitialIsClamped(t *testing.T) {
	src := NewSource(WithInitial(Sample{CPU: 150, Memory: -3, Errors: -2, Network: -9}))
	cur := src.Current()
	if cur.CPU != MaxCPU || cur.Memory != MinMemory || cur.Errors != 0 || cur.Network != 0 {
		t.Errorf("initial sample not clamped: %+v", cur)
	}
}

func TestSourceErrorsOnlyGrowUnderStress(t *testing.T) {
	src := NewSource(
		WithRand(rand.New(rand.NewSource(3))),
		WithInitial(Sample{CPU: 20, Memory: 30, Network: 10}),
		WithTrend(-1),
	)
	prev := 0
	for i := 0; i < 2000; i++ {
		s := src.Tick()
		if s.Errors > prev && s.CPU <= StressCPU {
			t.Fatalf("tick %d: errors grew to %d with cpu %.1f", i, s.Errors, s.CPU)
		}
		prev = s.Errors
	}
}

func TestSourceErrorsAreSticky(t *testing.T) {
	src := NewSource(
		WithRand(rand.New(rand.NewSource(11))),
		WithInitial(Sample{CPU: 10, Memory: 20, Errors: 10, Network: 10}),
	)
	drops := 0
	prev := 10
	for i := 0; i < 100; i++ {
		s := src.Tick()
		if s.Errors < prev-1 {
			t.Fatalf("tick %d: errors fell by more than one (%d -> %d)", i, prev, s.Errors)
		}
		if s.Errors < prev {
			drops++
		}
		prev = s.Errors
	}
	if drops > 10 {
		t.Errorf("errors decayed %d times in 100 ticks, expected a rare decay", drops)
	}
}

func TestSourceTrendBounded(t *testing.T) {
	src := NewSource(WithRand(rand.New(rand.NewSource(5))), WithTrend(4))
	if src.Trend() != 1 {
		t.Errorf("expected trend clamped to 1, got %f", src.Trend())
	}
	for i := 0; i < 5000; i++ {
		src.Tick()
		if tr := src.Trend(); tr < -1 || tr > 1 {
			t.Fatalf("trend %f out of range", tr)
		}
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if _, ok := GetPreset("nonexistent"); ok {
		t.Error("expected missing preset")
	}
	if len(PresetNames()) != len(Presets) {
		t.Error("preset names out of sync")
	}
}
