package viz

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/san-kum/dropsim/internal/dynamo"
	"github.com/san-kum/dropsim/internal/form"
	"github.com/san-kum/dropsim/internal/metrics"
	"github.com/san-kum/dropsim/internal/plot"
	"github.com/san-kum/dropsim/internal/sim"
	"github.com/san-kum/dropsim/internal/storage"
)

const (
	screenForm = iota
	screenSim
	screenPlot
)

// rows of the form after the text fields
const (
	rowSurface = int(form.NumFields) + iota
	rowStart
	numRows
)

type AppOptions struct {
	Config    sim.Config
	Params    dynamo.Params
	NewEngine func() (dynamo.Engine, error)
	Logger    *log.Logger
	// Store, when set, receives every finished run.
	Store *storage.Store
	Info  storage.RunInfo
	// Clock overrides the session clock.
	Clock      sim.Clock
	RecordPath string
}

type App struct {
	opts   AppOptions
	screen int
	fields form.Fields
	cursor int
	errMsg string
	live   SimModel
	result *sim.Result
	chart  string
	saved  string
	width  int
	height int
}

func NewApp(opts AppOptions) App {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return App{
		opts:   opts,
		screen: screenForm,
		fields: form.FromParams(opts.Params),
	}
}

func RunApp(opts AppOptions) error {
	_, err := tea.NewProgram(NewApp(opts), tea.WithAltScreen()).Run()
	return err
}

func (m App) Init() tea.Cmd { return nil }

func (m App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case DoneMsg:
		m.finish(msg)
		return m, nil
	case tea.KeyMsg:
		switch m.screen {
		case screenForm:
			return m.formKey(msg)
		case screenPlot:
			return m.plotKey(msg)
		}
	}
	if m.screen == screenSim {
		live, cmd := m.live.Update(msg)
		m.live = live.(SimModel)
		return m, cmd
	}
	return m, nil
}

func (m App) formKey(msg tea.KeyMsg) (App, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "shift+tab":
		m.cursor = (m.cursor + numRows - 1) % numRows
		return m, nil
	case "down", "tab":
		m.cursor = (m.cursor + 1) % numRows
		return m, nil
	case "enter":
		cmd := m.start()
		return m, cmd
	}

	if m.cursor == rowSurface {
		switch msg.String() {
		case "left", "right", " ", "h", "l":
			if m.fields.Surface == dynamo.Land {
				m.fields.Surface = dynamo.Water
			} else {
				m.fields.Surface = dynamo.Land
			}
		}
		return m, nil
	}
	if m.cursor >= int(form.NumFields) {
		return m, nil
	}

	text := &m.fields.Text[m.cursor]
	switch msg.Type {
	case tea.KeyBackspace:
		if r := []rune(*text); len(r) > 0 {
			*text = string(r[:len(r)-1])
		}
	case tea.KeyRunes:
		*text += string(msg.Runes)
	}
	return m, nil
}

// start parses the form and launches a session. Errors keep the form open.
func (m *App) start() tea.Cmd {
	params, err := m.fields.Parse()
	if err != nil {
		m.errMsg = err.Error()
		return nil
	}

	engine, err := m.opts.NewEngine()
	if err != nil {
		m.errMsg = err.Error()
		return nil
	}

	opts := []sim.Option{sim.WithLogger(m.opts.Logger), sim.WithMetrics(metrics.Default()...)}
	if m.opts.Clock != nil {
		opts = append(opts, sim.WithClock(m.opts.Clock))
	}
	session := sim.New(engine, m.opts.Config, opts...)
	if err := session.Start(params); err != nil {
		var verr *dynamo.ValidationError
		if !errors.As(err, &verr) {
			m.opts.Logger.Error("start session", "err", err)
		}
		m.errMsg = err.Error()
		return nil
	}

	m.errMsg = ""
	m.screen = screenSim
	m.live = NewSimModel(session, m.opts.RecordPath, m.opts.Logger)
	return m.live.Init()
}

func (m *App) finish(done DoneMsg) {
	m.live.session.Close()
	m.screen = screenPlot
	m.result = done.Result
	m.saved = ""
	if done.Err != nil {
		m.errMsg = done.Err.Error()
	}

	chart, err := plot.Render(done.Result.Samples, plot.DefaultOptions())
	if err != nil {
		chart = err.Error()
	}
	m.chart = chart

	if m.opts.Store == nil {
		return
	}
	id, err := m.opts.Store.Save(m.opts.Info, done.Result)
	if err != nil {
		m.opts.Logger.Error("save run", "err", err)
		m.saved = "save failed: " + err.Error()
		return
	}
	m.saved = "saved as " + id
}

func (m App) plotKey(msg tea.KeyMsg) (App, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "enter", "n":
		m.screen = screenForm
		m.errMsg = ""
		m.fields = form.FromParams(m.result.Params)
	}
	return m, nil
}

func (m App) View() string {
	switch m.screen {
	case screenSim:
		return m.live.View()
	case screenPlot:
		return m.viewPlot()
	}
	return m.viewForm()
}

func (m App) viewForm() string {
	st := newStyles(CurrentTheme)
	var b strings.Builder
	b.WriteString("\n\n    " + st.title.Render("DROPSIM") + "\n    " + st.subtitle.Render("projectile drop & fragmentation") + "\n    " + st.subtitle.Render("─────────────────────────") + "\n\n")

	line := func(row int, label, value string) {
		if row == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", st.cursor.Render("▸"), st.active.Render(fmt.Sprintf("%-12s", label)), st.value.Render(value)))
		} else {
			b.WriteString(fmt.Sprintf("      %s %s\n", st.inactive.Render(fmt.Sprintf("%-12s", label)), st.inactive.Render(value)))
		}
	}

	for i := form.Field(0); i < form.NumFields; i++ {
		text := m.fields.Text[i]
		if int(i) == m.cursor {
			text += "_"
		}
		line(int(i), i.Label(), text)
	}

	land, water := "  Land  ", "  Water  "
	if m.fields.Surface == dynamo.Land {
		land = "[ Land ]"
	} else {
		water = "[ Water ]"
	}
	line(rowSurface, "Ground", land+" "+water)
	line(rowStart, "", "Start")

	if m.errMsg != "" {
		b.WriteString("\n    " + st.err.Render(m.errMsg) + "\n")
	}
	b.WriteString("\n    " + st.keyHints("↑/↓", "select", "←/→", "ground", "enter", "start", "esc", "quit") + "\n")
	return b.String()
}

func (m App) viewPlot() string {
	st := newStyles(CurrentTheme)
	var b strings.Builder
	res := m.result

	b.WriteString("\n" + st.title.Render(plot.Title) + "\n\n")
	b.WriteString(st.chart.Render(m.chart) + "\n\n")

	row := func(label, value string) {
		b.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Ended", string(res.Reason))
	row("Duration", fmt.Sprintf("%.2fs", res.Duration))
	row("Frames", fmt.Sprintf("%d", res.Frames))
	row("Fragmentations", fmt.Sprintf("%d", res.Fragmentations))

	names := make([]string, 0, len(res.Metrics))
	for k := range res.Metrics {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		row(k, fmt.Sprintf("%.3f", res.Metrics[k]))
	}

	if m.saved != "" {
		b.WriteString("\n" + st.hint.Render(m.saved) + "\n")
	}
	if m.errMsg != "" {
		b.WriteString("\n" + st.err.Render(m.errMsg) + "\n")
	}
	b.WriteString("\n" + st.keyHints("enter", "new run", "q", "quit") + "\n")
	return b.String()
}
