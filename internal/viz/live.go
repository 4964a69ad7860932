package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dropsim/internal/sim"
)

const (
	sceneCols       = 60
	sceneRows       = 22
	historyCapacity = 600
)

type TickMsg time.Time

// DoneMsg is sent once the session has terminated.
type DoneMsg struct {
	Result *sim.Result
	Err    error
}

// SimModel shows a running session on a braille canvas next to a panel of
// live readings.
type SimModel struct {
	session    *sim.Session
	canvas     *Canvas
	scene      *Scene
	interval   time.Duration
	paused     bool
	showHelp   bool
	history    []float64
	rec        *Recorder
	recording  bool
	recordPath string
	log        *log.Logger
	status     string
}

// NewSimModel wraps a started session. A non-empty recordPath enables GIF
// recording with the g key.
func NewSimModel(s *sim.Session, recordPath string, logger *log.Logger) SimModel {
	cfg := s.Config()
	canvas := NewCanvas(sceneCols, sceneRows)
	if logger == nil {
		logger = log.Default()
	}
	m := SimModel{
		session:    s,
		canvas:     canvas,
		scene:      NewScene(canvas, cfg.Width, cfg.Height),
		interval:   cfg.FrameInterval(),
		history:    make([]float64, 0, historyCapacity),
		rec:        NewRecorder(),
		recordPath: recordPath,
		log:        logger,
	}
	m.draw()
	return m
}

func (m SimModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m SimModel) Init() tea.Cmd { return m.tick() }

func (m SimModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q", "backspace":
			m.session.Cancel()
			m.paused = false
		case " ":
			m.paused = !m.paused
		case "g":
			m.toggleRecording()
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		case "ctrl+c":
			return m, tea.Quit
		}
	case TickMsg:
		if m.paused || m.session.State() != sim.Running {
			return m, m.tick()
		}
		running, err := m.session.Frame()
		if s, ok := m.session.LastSample(); ok {
			m.history = append(m.history, s.Velocity)
			if len(m.history) > historyCapacity {
				m.history = m.history[1:]
			}
		}
		m.draw()
		if m.recording {
			m.rec.Capture(m.canvas)
		}
		if !running || err != nil {
			if m.recording {
				m.toggleRecording()
			}
			res := m.session.Result()
			return m, func() tea.Msg { return DoneMsg{Result: res, Err: err} }
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *SimModel) toggleRecording() {
	if m.recordPath == "" {
		m.status = "recording disabled"
		return
	}
	if !m.recording {
		m.rec.Reset()
		m.recording = true
		m.status = "recording"
		return
	}
	m.recording = false
	if err := m.rec.Save(m.recordPath); err != nil {
		m.log.Error("save recording", "path", m.recordPath, "err", err)
		m.status = "recording failed"
		return
	}
	m.status = fmt.Sprintf("saved %d frames to %s", m.rec.Len(), m.recordPath)
}

func (m *SimModel) draw() {
	m.scene.Clear()
	m.session.Draw(m.scene)
}

func (m SimModel) View() string {
	st := newStyles(CurrentTheme)
	p := m.session.Params()

	var s strings.Builder
	s.WriteString(st.title.Render("DROP") + "  " + st.subtitle.Render(p.Surface.String()) + "\n\n")

	status := "RUNNING"
	switch {
	case m.session.State() == sim.Terminated:
		status = strings.ToUpper(string(m.session.Reason()))
	case m.paused:
		status = "PAUSED"
	}
	if m.recording {
		status += "  ● REC"
	}
	s.WriteString(st.ok.Render(status) + "\n")

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Velocity"))
		s.WriteString(st.chart.Render(chart) + "\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.session.Elapsed()))
	if last, ok := m.session.LastSample(); ok {
		row("Velocity", fmt.Sprintf("%.2f", last.Velocity))
	}
	row("Bodies", fmt.Sprintf("%d", len(m.session.Bodies())))
	row("Fragmentations", fmt.Sprintf("%d", m.session.Fragmentations()))
	row("Fall", ProgressBar(m.session.Progress(), 20))

	s.WriteString("\n" + st.dim.Render("mass ") + st.value.Render(fmt.Sprintf("%g", p.Mass)) +
		st.dim.Render("  height ") + st.value.Render(fmt.Sprintf("%g", p.DropHeight)) +
		st.dim.Render("  g ") + st.value.Render(fmt.Sprintf("%g", p.Gravity)) +
		st.dim.Render("  wind ") + st.value.Render(fmt.Sprintf("%g", p.LateralVelocity)) + "\n")

	if m.status != "" {
		s.WriteString("\n" + st.hint.Render(m.status) + "\n")
	}
	s.WriteString("\n" + st.keyHints("space", "pause", "esc", "back", "?", "help"))
	if m.showHelp {
		s.WriteString("\n" + st.keyHints("g", "record gif", "t", "theme", "ctrl+c", "quit"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, st.scene.Render(m.canvas.String()), st.panel.Render(s.String()))
}
