package engine

import (
	"math"
	"time"
)

// frameCounter reports frames per second over one-second windows.
type frameCounter struct {
	started     bool
	windowStart time.Duration
	frames      int
	fps         int
}

// observe records a frame at ts and returns true when a new rate was published.
func (f *frameCounter) observe(ts time.Duration) bool {
	if !f.started {
		f.started = true
		f.windowStart = ts
	}
	f.frames++
	elapsed := ts - f.windowStart
	if elapsed < time.Second {
		return false
	}
	ms := float64(elapsed) / float64(time.Millisecond)
	f.fps = int(math.Round(float64(f.frames) * 1000 / ms))
	f.frames = 0
	f.windowStart = ts
	return true
}
