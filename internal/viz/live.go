package viz

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"go.uber.org/zap"

	"github.com/san-kum/sentinel/internal/engine"
	"github.com/san-kum/sentinel/internal/feed"
	"github.com/san-kum/sentinel/internal/logging"
)

const (
	panelWidth      = 38
	historyCapacity = 120
	recordZoom      = 4
)

type frameMsg time.Time

type updateMsg feed.Update

// Options configures the live view.
type Options struct {
	FrameInterval time.Duration
	Viewport      float64
	Theme         string
	Logger        *zap.Logger
}

// Model is the bubbletea host for the engine: it owns the canvas, fires the
// engine's frame callback on every tick and forwards metric updates.
type Model struct {
	eng      *engine.Engine
	canvas   *Canvas
	sched    *engine.Stepper
	feed     *feed.Feed
	log      *zap.Logger
	start    time.Time
	interval time.Duration

	keys  keyMap
	help  help.Model
	theme Theme

	width, height int
	paused        bool
	showPanel     bool
	showHelp      bool

	last       feed.Update
	haveUpdate bool
	cpuHistory []float64
	memHistory []float64

	recorder *Recorder
	notice   string
}

// NewModel attaches eng to a terminal-sized canvas and returns the view.
func NewModel(eng *engine.Engine, f *feed.Feed, opts Options) Model {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = time.Second / 60
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	canvas := NewTerminalCanvas(80-panelWidth, 23, opts.Viewport)
	sched := engine.NewStepper()
	eng.Initialize(canvas, sched)

	return Model{
		eng:        eng,
		canvas:     canvas,
		sched:      sched,
		feed:       f,
		log:        opts.Logger,
		start:      time.Now(),
		interval:   opts.FrameInterval,
		keys:       newKeyMap(),
		help:       help.New(),
		theme:      GetTheme(opts.Theme),
		width:      80,
		height:     24,
		showPanel:  true,
		cpuHistory: make([]float64, 0, historyCapacity),
		memHistory: make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.nextFrame(), waitForUpdate(m.feed.Updates()))
}

func (m Model) nextFrame() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// waitForUpdate blocks on the feed's mailbox; only the newest update is ever
// delivered.
func waitForUpdate(ch <-chan feed.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return nil
		}
		return updateMsg(u)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		// frames of a different size cannot join the current gif
		m.stopRecording()
		m.layout()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.stopRecording()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
		case key.Matches(msg, m.keys.Feed):
			m.feed.SetPaused(!m.feed.Paused())
		case key.Matches(msg, m.keys.Record):
			if m.recorder != nil {
				m.stopRecording()
			} else {
				m.recorder = NewRecorder(m.interval, recordZoom)
				m.notice = ""
			}
		case key.Matches(msg, m.keys.Panel):
			m.showPanel = !m.showPanel
			m.stopRecording()
			m.layout()
		case key.Matches(msg, m.keys.Theme):
			m.theme = NextTheme(m.theme)
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			m.help.ShowAll = m.showHelp
		}
		return m, nil

	case frameMsg:
		if !m.paused {
			m.sched.Fire(time.Time(msg).Sub(m.start))
			if m.recorder != nil && !m.recorder.Capture(m.canvas) {
				m.stopRecording()
			}
		}
		return m, m.nextFrame()

	case updateMsg:
		m.apply(feed.Update(msg))
		return m, waitForUpdate(m.feed.Updates())
	}
	return m, nil
}

// apply forwards a metric update to the engine and records history.
func (m *Model) apply(u feed.Update) {
	m.eng.PushExternalState(engine.FromParams(u.Params))
	if m.haveUpdate && u.Params.Status != m.last.Params.Status {
		m.log.Info("status changed",
			zap.Stringer("from", m.last.Params.Status),
			zap.Stringer("to", u.Params.Status),
			zap.Int("fps", m.eng.FrameRate()),
		)
	}
	m.last, m.haveUpdate = u, true
	m.cpuHistory = appendBounded(m.cpuHistory, u.Sample.CPU)
	m.memHistory = appendBounded(m.memHistory, u.Sample.Memory)
}

func appendBounded(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

// layout fits the canvas to the terminal, leaving room for the panel and
// the help line. The engine hears about it through the canvas.
func (m *Model) layout() {
	cols := m.width
	if m.showPanel {
		cols -= panelWidth
	}
	rows := m.height - 1
	m.canvas.ResizeCells(max(cols, 1), max(rows, 1))
}

func (m *Model) stopRecording() {
	if m.recorder == nil {
		return
	}
	rec := m.recorder
	m.recorder = nil
	if rec.Len() == 0 {
		return
	}
	path := fmt.Sprintf("sentinel_%s.gif", logging.NewSessionID())
	if err := rec.Save(path); err != nil {
		m.notice = "record failed: " + err.Error()
		m.log.Error("save recording", zap.String("path", path), zap.Error(err))
		return
	}
	m.notice = "saved " + path
	m.log.Info("saved recording", zap.String("path", path), zap.Int("frames", rec.Len()))
}

func (m Model) View() string {
	canvasView := strings.TrimSuffix(m.canvas.String(), "\n")
	helpView := m.help.View(m.keys)
	if !m.showPanel {
		return canvasView + "\n" + helpView
	}
	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panelStyle.Render(m.panel()))
	return main + "\n" + helpView
}

func (m Model) panel() string {
	var s strings.Builder
	header := headerStyle.Foreground(m.theme.Header)
	s.WriteString(header.Render("SENTINEL") + "\n")

	st := m.eng.State()
	s.WriteString(StatusBadge(st.Status, st.Color.RGB()) + "  " + m.runState() + "\n\n")

	if m.haveUpdate {
		smp := m.last.Sample
		s.WriteString(labelStyle.Render("CPU") + ProgressBar(smp.CPU/100, 12) + valueStyle.Render(fmt.Sprintf(" %5.1f%%", smp.CPU)) + "\n")
		s.WriteString(labelStyle.Render("Memory") + ProgressBar(smp.Memory/100, 12) + valueStyle.Render(fmt.Sprintf(" %5.1f%%", smp.Memory)) + "\n")
		s.WriteString(labelStyle.Render("Errors") + valueStyle.Render(fmt.Sprintf("%d", smp.Errors)) + "\n")
		s.WriteString(labelStyle.Render("Network") + valueStyle.Render(fmt.Sprintf("%.1f", smp.Network)) + "\n")
	} else {
		s.WriteString(valueStyle.Render("waiting for metrics") + "\n")
	}

	if len(m.cpuHistory) > 1 {
		chart := asciigraph.PlotMany(
			[][]float64{m.cpuHistory, m.memHistory},
			asciigraph.Height(5),
			asciigraph.Width(panelWidth-14),
			asciigraph.LowerBound(0),
			asciigraph.UpperBound(100),
			asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue),
			asciigraph.Caption("cpu / memory"),
		)
		s.WriteString(graphStyle.Foreground(m.theme.Graph).Render(chart) + "\n")
	}

	s.WriteString("\n")
	s.WriteString(labelStyle.Render("Pulse") + valueStyle.Render(fmt.Sprintf("%.4f", st.PulseSpeed)) + "\n")
	s.WriteString(labelStyle.Render("Breath") + valueStyle.Render(fmt.Sprintf("%.1f", st.BreathAmplitude)) + "\n")
	s.WriteString(labelStyle.Render("Tension") + valueStyle.Render(fmt.Sprintf("%.1f", st.Tension)) + "\n")
	s.WriteString(labelStyle.Render("Flow") + valueStyle.Render(fmt.Sprintf("%.2f", st.ParticleSpeed)) + "\n")
	s.WriteString(labelStyle.Render("FPS") + valueStyle.Render(fmt.Sprintf("%d", m.eng.FrameRate())) + "\n")
	s.WriteString(labelStyle.Render("Ticks") + valueStyle.Render(fmt.Sprintf("%d", m.last.Tick)) + "\n")

	if m.notice != "" {
		s.WriteString(helpStyle.Foreground(m.theme.Muted).Render(m.notice) + "\n")
	}
	return s.String()
}

func (m Model) runState() string {
	switch {
	case m.recorder != nil:
		return StatusRecording.Render(fmt.Sprintf("REC %d", m.recorder.Len()))
	case m.paused:
		return StatusPaused.Render("PAUSED")
	case m.feed.Paused():
		return StatusPaused.Render("METRICS HELD")
	default:
		return valueStyle.Render("LIVE")
	}
}

// Run starts the full-screen view and blocks until the user quits.
func Run(eng *engine.Engine, f *feed.Feed, opts Options) error {
	p := tea.NewProgram(NewModel(eng, f, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
