package engine_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/sentinel/internal/engine"
)

func TestEngine(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Engine Suite")
}

type drawCall struct {
	kind     string
	x, y, r  float64
	color    engine.RGBA
	gradient engine.RadialGradient
}

// recordingSurface captures draw calls instead of rasterizing them.
type recordingSurface struct {
	w, h     int
	ratio    float64
	scale    float64
	calls    []drawCall
	onResize []func()
}

func newRecordingSurface(w, h int, ratio float64) *recordingSurface {
	return &recordingSurface{w: w, h: h, ratio: ratio}
}

func (s *recordingSurface) DeviceSize() (int, int) { return s.w, s.h }
func (s *recordingSurface) PixelRatio() float64     { return s.ratio }
func (s *recordingSurface) SetScale(v float64)      { s.scale = v }

func (s *recordingSurface) FillRect(x, y, w, h float64, c engine.RGBA) {
	s.calls = append(s.calls, drawCall{kind: "rect", x: w, y: h, color: c})
}

func (s *recordingSurface) FillCircle(cx, cy, r float64, c engine.RGBA) {
	s.calls = append(s.calls, drawCall{kind: "circle", x: cx, y: cy, r: r, color: c})
}

func (s *recordingSurface) StrokeCircle(cx, cy, r, width float64, c engine.RGBA) {
	s.calls = append(s.calls, drawCall{kind: "stroke", x: cx, y: cy, r: r, color: c})
}

func (s *recordingSurface) Line(x0, y0, x1, y1, width float64, c engine.RGBA) {
	s.calls = append(s.calls, drawCall{kind: "line", x: x0, y: y0, color: c})
}

func (s *recordingSurface) FillCircleGradient(cx, cy, r float64, g engine.RadialGradient) {
	s.calls = append(s.calls, drawCall{kind: "gradient", x: cx, y: cy, r: r, gradient: g})
}

func (s *recordingSurface) OnResize(fn func()) { s.onResize = append(s.onResize, fn) }

func (s *recordingSurface) resize(w, h int, ratio float64) {
	s.w, s.h, s.ratio = w, h, ratio
	for _, fn := range s.onResize {
		fn()
	}
}

func (s *recordingSurface) reset() { s.calls = s.calls[:0] }

func (s *recordingSurface) kinds() []string {
	out := make([]string, len(s.calls))
	for i, c := range s.calls {
		out[i] = c.kind
	}
	return out
}

func (s *recordingSurface) count(kind string) int {
	n := 0
	for _, c := range s.calls {
		if c.kind == kind {
			n++
		}
	}
	return n
}
