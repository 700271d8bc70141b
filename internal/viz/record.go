package viz

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"os"
	"time"

	"github.com/san-kum/sentinel/internal/engine"
	"github.com/san-kum/sentinel/internal/feed"
)

// maxFrames bounds how much a live recording can hold in memory.
const maxFrames = 900

// Recorder collects canvas frames for an animated GIF. All frames share the
// size of the first one.
type Recorder struct {
	frames []*image.Paletted
	bounds image.Rectangle
	delay  int
	zoom   int
	limit  int
}

// NewRecorder records at the given frame interval, enlarging each canvas
// pixel to zoom x zoom image pixels.
func NewRecorder(interval time.Duration, zoom int) *Recorder {
	delay := int(interval / (10 * time.Millisecond))
	if delay < 2 {
		delay = 2
	}
	if zoom < 1 {
		zoom = 1
	}
	return &Recorder{delay: delay, zoom: zoom, limit: maxFrames}
}

// Capture snapshots c. It reports false once the recorder is full or when c
// no longer has the size of the first captured frame; the frame is dropped.
func (r *Recorder) Capture(c *Canvas) bool {
	if len(r.frames) >= r.limit {
		return false
	}
	src := c.Image()
	b := src.Bounds()
	size := image.Rect(0, 0, b.Dx()*r.zoom, b.Dy()*r.zoom)
	if len(r.frames) > 0 && size != r.bounds {
		return false
	}
	r.bounds = size
	img := image.NewPaletted(size, palette.Plan9)
	if r.zoom == 1 {
		draw.Draw(img, img.Bounds(), src, image.Point{}, draw.Src)
	} else {
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				idx := uint8(img.Palette.Index(src.At(x, y)))
				for dy := 0; dy < r.zoom; dy++ {
					for dx := 0; dx < r.zoom; dx++ {
						img.SetColorIndex(x*r.zoom+dx, y*r.zoom+dy, idx)
					}
				}
			}
		}
	}
	r.frames = append(r.frames, img)
	return true
}

func (r *Recorder) Len() int { return len(r.frames) }

// Limit is the number of frames the recorder accepts.
func (r *Recorder) Limit() int { return r.limit }

// Encode writes the captured frames as a looping GIF.
func (r *Recorder) Encode(w io.Writer) error {
	if len(r.frames) == 0 {
		return fmt.Errorf("no frames recorded")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, r.delay)
	}
	return gif.EncodeAll(w, &anim)
}

// Save encodes the recording to path.
func (r *Recorder) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// RecordOptions drives an off-screen render.
type RecordOptions struct {
	Width, Height int
	Viewport      float64
	Frames        int
	FrameInterval time.Duration
	TickInterval  time.Duration
}

// RecordResult describes a finished off-screen render.
type RecordResult struct {
	Frames int
	Last   feed.Update
}

// Record renders opts.Frames frames on an off-screen canvas with a synthetic
// frame clock and writes them to w as a GIF. The feed is stepped inline every
// TickInterval of simulated time, so no goroutines are involved.
func Record(w io.Writer, eng *engine.Engine, f *feed.Feed, opts RecordOptions) (RecordResult, error) {
	if opts.Frames <= 0 {
		return RecordResult{}, fmt.Errorf("frames must be positive, got %d", opts.Frames)
	}
	canvas := NewCanvas(opts.Width, opts.Height, opts.Viewport)
	sched := engine.NewStepper()
	eng.Initialize(canvas, sched)
	rec := NewRecorder(opts.FrameInterval, 1)
	rec.limit = opts.Frames

	var last feed.Update
	push := func() {
		last = f.Step()
		eng.PushExternalState(engine.FromParams(last.Params))
	}
	push()

	var ts, nextTick time.Duration
	nextTick = opts.TickInterval
	for i := 0; i < opts.Frames; i++ {
		if ts >= nextTick {
			push()
			nextTick += opts.TickInterval
		}
		if !sched.Fire(ts) {
			return RecordResult{Frames: rec.Len(), Last: last}, fmt.Errorf("engine stopped scheduling after %d frames", rec.Len())
		}
		rec.Capture(canvas)
		ts += opts.FrameInterval
	}
	return RecordResult{Frames: rec.Len(), Last: last}, rec.Encode(w)
}
