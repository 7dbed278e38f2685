package viz

import (
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/sim"
)

var presetInfo = map[string]string{
	"default":  "balanced drift",
	"dense":    "crowded field",
	"sparse":   "loose, slow homing",
	"rain":     "falls from the top",
	"jelly":    "soft, bouncy",
	"terminal": "small viewport",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// param is one editable setting on the config screen.
type param struct {
	name string
	step float64
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
}

var params = []param{
	{"count", 5,
		func(c *config.Config) float64 { return float64(c.Field.Count) },
		func(c *config.Config, v float64) { c.Field.Count = max(int(v), 0) }},
	{"seed", 1,
		func(c *config.Config) float64 { return float64(c.Seed) },
		func(c *config.Config, v float64) { c.Seed = int64(v) }},
	{"home", 0.001,
		func(c *config.Config) float64 { return c.Physics.HomeStrength },
		func(c *config.Config, v float64) { c.Physics.HomeStrength = max(v, 0) }},
	{"repulsion", 25,
		func(c *config.Config) float64 { return c.Physics.CursorRepulsion },
		func(c *config.Config, v float64) { c.Physics.CursorRepulsion = max(v, 0) }},
	{"shock", 0.5,
		func(c *config.Config) float64 { return c.Physics.ShockStrength },
		func(c *config.Config, v float64) { c.Physics.ShockStrength = max(v, 0) }},
	{"damping", 0.01,
		func(c *config.Config) float64 { return c.Physics.Damping },
		func(c *config.Config, v float64) { c.Physics.Damping = min(max(v, 0), 1) }},
}

type model struct {
	state, cursor int
	presets       []string
	selected      string
	cfg           *config.Config
	paramCursor   int
	editing       bool
	editBuf       string
	err           error
	logger        *slog.Logger
	liveModel     Model
}

// NewInteractiveApp returns a preset picker that launches the live view.
func NewInteractiveApp(logger *slog.Logger) *model {
	return &model{
		state:   stateMenu,
		presets: config.ListPresets(),
		logger:  logger,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case stateMenu:
			return m.menuKey(msg)
		case stateConfig:
			return m.configKey(msg)
		}
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.presets[m.cursor]
		m.cfg = TerminalConfig(m.selected)
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	p := params[m.paramCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			if _, err := fmt.Sscanf(m.editBuf, "%f", &val); err == nil {
				p.set(m.cfg, val)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(params)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, formatParam(p.get(m.cfg))
	case "left", "h":
		p.set(m.cfg, p.get(m.cfg)-p.step)
	case "right", "l":
		p.set(m.cfg, p.get(m.cfg)+p.step)
	case "s":
		return m.start()
	}
	return m, nil
}

func (m model) start() (model, tea.Cmd) {
	live, err := NewModel(m.cfg, m.selected, sim.WithLogger(m.logger))
	if err != nil {
		m.err = err
		return m, nil
	}
	m.liveModel = live
	m.state = stateSim
	return m, m.liveModel.Init()
}

// TerminalConfig returns the named preset with the terminal preset's
// geometry applied. The population scales with the preset's count
// relative to the default.
func TerminalConfig(name string) *config.Config {
	cfg := config.GetPreset(name)
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	count := cfg.Field.Count
	config.Presets["terminal"](cfg)
	if name != "terminal" {
		cfg.Field.Count = max(cfg.Field.Count*count/config.DefaultCount, 1)
	}
	return cfg
}

func formatParam(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

func (m model) viewMenu() string {
	t := CurrentTheme
	var b strings.Builder
	b.WriteString("\n\n    " + GradientText("DRIFTFIELD", t.Primary, t.Accent) + "\n")
	b.WriteString("    " + t.hint().Render("particle field") + "\n")
	b.WriteString("    " + Separator(26, t) + "\n\n")
	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n",
				t.key().Render("▸"),
				t.value().Bold(true).Render(fmt.Sprintf("%-10s", name)),
				t.selected().Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n",
				t.label().Width(10).Render(name),
				t.hint().Render(desc)))
		}
	}
	b.WriteString("\n    " + keyHelp(t, "j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m model) viewConfig() string {
	t := CurrentTheme
	var b strings.Builder
	b.WriteString("\n\n    " + t.header().UnsetMarginBottom().Render(strings.ToUpper(m.selected)) + "\n")
	b.WriteString("    " + t.hint().Render(presetInfo[m.selected]) + "\n")
	b.WriteString("    " + Separator(26, t) + "\n\n")
	for i, p := range params {
		val := fmt.Sprintf("%10s", formatParam(p.get(m.cfg)))
		if m.editing && i == m.paramCursor {
			val = fmt.Sprintf("%10s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n",
				t.key().Render("▸"),
				t.value().Bold(true).Render(fmt.Sprintf("%-10s", p.name)),
				t.selected().Render(val)))
		} else {
			b.WriteString(fmt.Sprintf("      %s %s\n",
				t.label().Width(10).Render(p.name),
				t.hint().Render(val)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(t.Error).Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyHelp(t, "j/k", "select", "h/l", "adjust", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// keyHelp renders alternating key and description pairs.
func keyHelp(t Theme, pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(t.key().Render(pairs[i]) + t.hint().Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

// RunInteractive runs the picker and then the chosen live view.
func RunInteractive(logger *slog.Logger) error {
	p := tea.NewProgram(NewInteractiveApp(logger),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus())
	_, err := p.Run()
	return err
}
