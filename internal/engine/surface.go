package engine

import (
	"math"

	"github.com/san-kum/sentinel/internal/mapper"
)

// Color is a continuous rgb triple with channels in [0, 255].
type Color struct {
	R, G, B float64
}

func ColorOf(c mapper.RGB) Color {
	return Color{R: float64(c.R), G: float64(c.G), B: float64(c.B)}
}

func (c Color) Alpha(a float64) RGBA {
	return RGBA{R: c.R, G: c.G, B: c.B, A: a}
}

// Lerp moves c toward target by factor f of the remaining distance.
func (c Color) Lerp(target Color, f float64) Color {
	return Color{
		R: c.R + (target.R-c.R)*f,
		G: c.G + (target.G-c.G)*f,
		B: c.B + (target.B-c.B)*f,
	}
}

// RGB rounds the color to 8-bit channels.
func (c Color) RGB() mapper.RGB {
	return mapper.RGB{R: channel(c.R), G: channel(c.G), B: channel(c.B)}
}

func channel(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// RGBA is a non-premultiplied color; A is in [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// ColorStop places a color at Offset in [0, 1] along a gradient.
type ColorStop struct {
	Offset float64
	Color  RGBA
}

// RadialGradient interpolates between two circles the way a 2D canvas does:
// offset 0 is the start circle, offset 1 the end circle, and points outside
// that range take the nearest stop.
type RadialGradient struct {
	X0, Y0, R0 float64
	X1, Y1, R1 float64
	Stops      []ColorStop
}

// At returns the stop color for gradient parameter t.
func (g RadialGradient) At(t float64) RGBA {
	if len(g.Stops) == 0 {
		return RGBA{}
	}
	if t <= g.Stops[0].Offset {
		return g.Stops[0].Color
	}
	for i := 1; i < len(g.Stops); i++ {
		a, b := g.Stops[i-1], g.Stops[i]
		if t <= b.Offset {
			span := b.Offset - a.Offset
			if span <= 0 {
				return b.Color
			}
			f := (t - a.Offset) / span
			return RGBA{
				R: a.Color.R + (b.Color.R-a.Color.R)*f,
				G: a.Color.G + (b.Color.G-a.Color.G)*f,
				B: a.Color.B + (b.Color.B-a.Color.B)*f,
				A: a.Color.A + (b.Color.A-a.Color.A)*f,
			}
		}
	}
	return g.Stops[len(g.Stops)-1].Color
}

// Param solves for the gradient parameter at (x, y): the largest t whose
// interpolated circle passes through the point with a non-negative radius.
// ok is false where no such circle exists and the point stays unpainted.
func (g RadialGradient) Param(x, y float64) (t float64, ok bool) {
	dcx, dcy, dr := g.X1-g.X0, g.Y1-g.Y0, g.R1-g.R0
	px, py := x-g.X0, y-g.Y0

	a := dcx*dcx + dcy*dcy - dr*dr
	b := px*dcx + py*dcy + g.R0*dr
	c := px*px + py*py - g.R0*g.R0

	if math.Abs(a) < 1e-12 {
		if b == 0 {
			return 0, false
		}
		t = c / (2 * b)
		return t, g.R0+t*dr >= 0
	}
	disc := b*b - a*c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t1, t2 := (b+sq)/a, (b-sq)/a
	if t2 > t1 {
		t1, t2 = t2, t1
	}
	if g.R0+t1*dr >= 0 {
		return t1, true
	}
	if g.R0+t2*dr >= 0 {
		return t2, true
	}
	return 0, false
}

// Surface is a 2D drawing target. Coordinates and widths are logical units;
// the surface multiplies them by the scale set through SetScale.
type Surface interface {
	// DeviceSize reports the backing store in device pixels.
	DeviceSize() (w, h int)
	// PixelRatio is the number of device pixels per logical unit.
	PixelRatio() float64
	SetScale(s float64)

	FillRect(x, y, w, h float64, c RGBA)
	FillCircle(cx, cy, r float64, c RGBA)
	StrokeCircle(cx, cy, r, width float64, c RGBA)
	Line(x0, y0, x1, y1, width float64, c RGBA)
	// FillCircleGradient fills the circle (cx, cy, r) with g.
	FillCircleGradient(cx, cy, r float64, g RadialGradient)
}

// ResizeNotifier is implemented by surfaces that can report host resizes.
type ResizeNotifier interface {
	OnResize(fn func())
}
