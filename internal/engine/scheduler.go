package engine

import "time"

// FrameCallback receives the host's monotonic frame timestamp.
type FrameCallback func(ts time.Duration)

// FrameScheduler runs a callback on the next display refresh.
type FrameScheduler interface {
	RequestFrame(cb FrameCallback)
}

// Stepper is a single-slot scheduler driven by the host. A request made
// before the pending one fires replaces it.
type Stepper struct {
	pending FrameCallback
	fired   uint64
}

func NewStepper() *Stepper { return &Stepper{} }

func (s *Stepper) RequestFrame(cb FrameCallback) { s.pending = cb }

func (s *Stepper) Pending() bool { return s.pending != nil }

// Fire runs the pending callback with ts and reports whether one was pending.
// The slot is cleared before the call so the callback may reschedule itself.
func (s *Stepper) Fire(ts time.Duration) bool {
	cb := s.pending
	if cb == nil {
		return false
	}
	s.pending = nil
	s.fired++
	cb(ts)
	return true
}

// Fired counts callbacks run so far.
func (s *Stepper) Fired() uint64 { return s.fired }
