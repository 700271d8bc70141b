// Package feed runs the metric pipeline on its own clock and hands the most
// recent mapped parameters to a single consumer.
package feed

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/sentinel/internal/logging"
	"github.com/san-kum/sentinel/internal/mapper"
	"github.com/san-kum/sentinel/internal/metrics"
)

// Update is one tick of the pipeline.
type Update struct {
	Tick   uint64
	Sample metrics.Sample
	Params mapper.Params
	At     time.Time
}

// Latest is a one-slot mailbox. Posting replaces any unread value, so a slow
// consumer only ever sees the newest update.
type Latest struct {
	ch chan Update
}

func NewLatest() *Latest {
	return &Latest{ch: make(chan Update, 1)}
}

// Post never blocks. It must only be called from a single producer.
func (l *Latest) Post(u Update) {
	for {
		select {
		case l.ch <- u:
			return
		default:
		}
		select {
		case <-l.ch:
		default:
		}
	}
}

func (l *Latest) C() <-chan Update { return l.ch }

// Feed samples a metrics.Source on a fixed interval.
type Feed struct {
	src      *metrics.Source
	interval time.Duration
	out      *Latest
	paused   atomic.Bool
	ticks    atomic.Uint64
	last     mapper.Status
}

func New(src *metrics.Source, interval time.Duration) *Feed {
	if interval <= 0 {
		interval = time.Second
	}
	return &Feed{src: src, interval: interval, out: NewLatest()}
}

func (f *Feed) Updates() <-chan Update { return f.out.C() }

func (f *Feed) Interval() time.Duration { return f.interval }

// SetPaused stops or resumes posting; the source is not advanced while paused.
func (f *Feed) SetPaused(p bool) { f.paused.Store(p) }

func (f *Feed) Paused() bool { return f.paused.Load() }

func (f *Feed) Ticks() uint64 { return f.ticks.Load() }

// Run ticks until ctx is done. It posts one update immediately so the
// consumer does not wait a full interval for the first sample.
func (f *Feed) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting metric feed", zap.Duration("interval", f.interval))
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	f.step(log)
	for {
		select {
		case <-ticker.C:
			if f.paused.Load() {
				continue
			}
			f.step(log)
		case <-ctx.Done():
			log.Info("stopping metric feed", zap.Uint64("ticks", f.ticks.Load()))
			return
		}
	}
}

// Step advances the source once and returns the resulting update without
// posting it.
func (f *Feed) Step() Update {
	s := f.src.Tick()
	return Update{
		Tick:   f.ticks.Add(1),
		Sample: s,
		Params: mapper.Map(s),
		At:     time.Now(),
	}
}

func (f *Feed) step(log *zap.Logger) {
	u := f.Step()
	if u.Tick == 1 || u.Params.Status != f.last {
		log.Info("health status",
			zap.Stringer("status", u.Params.Status),
			zap.Float64("cpu", u.Sample.CPU),
			zap.Float64("memory", u.Sample.Memory),
			zap.Int("errors", u.Sample.Errors),
			zap.Float64("network", u.Sample.Network),
		)
		f.last = u.Params.Status
	}
	log.Debug("tick", zap.Uint64("tick", u.Tick), zap.Stringer("params", u.Params))
	f.out.Post(u)
}
