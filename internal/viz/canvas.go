package viz

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/sentinel/internal/engine"
)

// Half blocks: each terminal cell carries two vertically stacked pixels,
// the upper one in the foreground color and the lower one in the background.
const halfBlock = "▀"

// DefaultViewport is the logical height the organism is laid out in.
const DefaultViewport = 900.0

// Canvas is an RGB pixel buffer implementing engine.Surface. Drawing calls
// take logical coordinates which are multiplied by the current scale.
type Canvas struct {
	Width, Height int
	Pix           []engine.Color

	viewport  float64
	scale     float64
	listeners []func()
}

// NewCanvas allocates a canvas of w x h device pixels whose logical height is
// viewport units.
func NewCanvas(w, h int, viewport float64) *Canvas {
	if viewport <= 0 {
		viewport = DefaultViewport
	}
	c := &Canvas{viewport: viewport, scale: 1}
	c.alloc(w, h)
	return c
}

// NewTerminalCanvas sizes a canvas for cols x rows terminal cells.
func NewTerminalCanvas(cols, rows int, viewport float64) *Canvas {
	return NewCanvas(cols, rows*2, viewport)
}

func (c *Canvas) alloc(w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	c.Width, c.Height = w, h
	c.Pix = make([]engine.Color, w*h)
}

// Resize reallocates the buffer and notifies resize listeners.
func (c *Canvas) Resize(w, h int) {
	if w == c.Width && h == c.Height {
		return
	}
	c.alloc(w, h)
	for _, fn := range c.listeners {
		fn()
	}
}

// ResizeCells resizes to fit cols x rows terminal cells.
func (c *Canvas) ResizeCells(cols, rows int) { c.Resize(cols, rows*2) }

func (c *Canvas) OnResize(fn func()) { c.listeners = append(c.listeners, fn) }

func (c *Canvas) DeviceSize() (int, int) { return c.Width, c.Height }

// PixelRatio fits the viewport height to the device height.
func (c *Canvas) PixelRatio() float64 { return float64(c.Height) / c.viewport }

func (c *Canvas) SetScale(s float64) {
	if s > 0 {
		c.scale = s
	}
}

// Clear resets the canvas to black.
func (c *Canvas) Clear() {
	for i := range c.Pix {
		c.Pix[i] = engine.Color{}
	}
}

// At returns the pixel at device coordinates (x, y).
func (c *Canvas) At(x, y int) engine.Color {
	if x < 0 || y < 0 || x >= c.Width || y >= c.Height {
		return engine.Color{}
	}
	return c.Pix[y*c.Width+x]
}

// blend composites src over the pixel at (x, y) with the given coverage.
func (c *Canvas) blend(x, y int, src engine.RGBA, coverage float64) {
	if x < 0 || y < 0 || x >= c.Width || y >= c.Height {
		return
	}
	a := src.A * coverage
	if a <= 0 {
		return
	}
	if a > 1 {
		a = 1
	}
	i := y*c.Width + x
	c.Pix[i] = c.Pix[i].Lerp(engine.Color{R: src.R, G: src.G, B: src.B}, a)
}

func (c *Canvas) FillRect(x, y, w, h float64, col engine.RGBA) {
	x0, y0 := int(math.Floor(x*c.scale)), int(math.Floor(y*c.scale))
	x1, y1 := int(math.Ceil((x+w)*c.scale)), int(math.Ceil((y+h)*c.scale))
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, c.Width), min(y1, c.Height)
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			c.blend(px, py, col, 1)
		}
	}
}

// minDot keeps sub-pixel dots visible at terminal resolution.
const minDot = 0.5

func (c *Canvas) FillCircle(cx, cy, r float64, col engine.RGBA) {
	dx, dy, dr := cx*c.scale, cy*c.scale, math.Max(r*c.scale, minDot)
	c.span(dx, dy, dr+1, func(px, py int, d float64) {
		c.blend(px, py, col, coverage(dr-d))
	})
}

func (c *Canvas) StrokeCircle(cx, cy, r, width float64, col engine.RGBA) {
	dx, dy, dr := cx*c.scale, cy*c.scale, r*c.scale
	hw := math.Max(width*c.scale, 1) / 2
	c.span(dx, dy, dr+hw+1, func(px, py int, d float64) {
		c.blend(px, py, col, coverage(hw-math.Abs(d-dr)))
	})
}

func (c *Canvas) Line(x0, y0, x1, y1, width float64, col engine.RGBA) {
	ax, ay := x0*c.scale, y0*c.scale
	bx, by := x1*c.scale, y1*c.scale
	hw := math.Max(width*c.scale, 1) / 2
	minX := max(int(math.Floor(math.Min(ax, bx)-hw-1)), 0)
	maxX := min(int(math.Ceil(math.Max(ax, bx)+hw+1)), c.Width-1)
	minY := max(int(math.Floor(math.Min(ay, by)-hw-1)), 0)
	maxY := min(int(math.Ceil(math.Max(ay, by)+hw+1)), c.Height-1)
	for py := minY; py <= maxY; py++ {
		for px := minX; px <= maxX; px++ {
			d := segmentDistance(float64(px)+0.5, float64(py)+0.5, ax, ay, bx, by)
			c.blend(px, py, col, coverage(hw-d))
		}
	}
}

func (c *Canvas) FillCircleGradient(cx, cy, r float64, g engine.RadialGradient) {
	dx, dy, dr := cx*c.scale, cy*c.scale, math.Max(r*c.scale, minDot)
	c.span(dx, dy, dr+1, func(px, py int, d float64) {
		cov := coverage(dr - d)
		if cov <= 0 {
			return
		}
		lx, ly := (float64(px)+0.5)/c.scale, (float64(py)+0.5)/c.scale
		t, ok := g.Param(lx, ly)
		if !ok {
			return
		}
		c.blend(px, py, g.At(t), cov)
	})
}

// span visits every pixel whose center lies within reach of (cx, cy) and
// passes its distance from the center.
func (c *Canvas) span(cx, cy, reach float64, fn func(px, py int, d float64)) {
	minX := max(int(math.Floor(cx-reach)), 0)
	maxX := min(int(math.Ceil(cx+reach)), c.Width-1)
	minY := max(int(math.Floor(cy-reach)), 0)
	maxY := min(int(math.Ceil(cy+reach)), c.Height-1)
	for py := minY; py <= maxY; py++ {
		fy := float64(py) + 0.5 - cy
		for px := minX; px <= maxX; px++ {
			fx := float64(px) + 0.5 - cx
			fn(px, py, math.Hypot(fx, fy))
		}
	}
}

// coverage maps a signed distance inside an edge to a [0, 1] pixel coverage.
func coverage(inside float64) float64 {
	return math.Max(0, math.Min(1, inside+0.5))
}

func segmentDistance(px, py, ax, ay, bx, by float64) float64 {
	vx, vy := bx-ax, by-ay
	l2 := vx*vx + vy*vy
	if l2 == 0 {
		return math.Hypot(px-ax, py-ay)
	}
	t := ((px-ax)*vx + (py-ay)*vy) / l2
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(px-(ax+t*vx), py-(ay+t*vy))
}

// quantize reduces color variety so neighbouring cells share styles.
func quantize(c engine.Color) string {
	q := func(v float64) int {
		n := int(v+0.5) &^ 0x7
		return min(max(n, 0), 255)
	}
	return hexColor(q(c.R), q(c.G), q(c.B))
}

// String renders the canvas with half blocks, one terminal row per two
// pixel rows. Runs of identical cells share one styled segment.
func (c *Canvas) String() string {
	var b strings.Builder
	for row := 0; row < c.Height; row += 2 {
		var run strings.Builder
		var fg, bg string
		flush := func() {
			if run.Len() == 0 {
				return
			}
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(fg)).Background(lipgloss.Color(bg))
			b.WriteString(style.Render(run.String()))
			run.Reset()
		}
		for x := 0; x < c.Width; x++ {
			top := quantize(c.At(x, row))
			bottom := quantize(c.At(x, row+1))
			if top != fg || bottom != bg {
				flush()
				fg, bg = top, bottom
			}
			run.WriteString(halfBlock)
		}
		flush()
		b.WriteString("\n")
	}
	return b.String()
}

// Image copies the canvas into an RGBA image of the same device size.
func (c *Canvas) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			rgb := c.Pix[y*c.Width+x].RGB()
			img.SetRGBA(x, y, color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 0xff})
		}
	}
	return img
}
