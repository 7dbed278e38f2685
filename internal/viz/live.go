package viz

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/export"
	"github.com/san-kum/driftfield/internal/input"
	"github.com/san-kum/driftfield/internal/metrics"
	"github.com/san-kum/driftfield/internal/physics"
	"github.com/san-kum/driftfield/internal/render"
	"github.com/san-kum/driftfield/internal/sim"
)

const (
	historyCapacity = 240
	maxGIFFrames    = 600
	gifScale        = 4

	// canvasLeft and canvasTop are the canvas origin in terminal cells,
	// matching canvasStyle's padding.
	canvasLeft = 2
	canvasTop  = 1
)

type TickMsg time.Time

// Model hosts a simulation loop in the terminal. One braille cell covers
// 2x4 viewport units, so the viewport is the canvas size in dots.
type Model struct {
	loop     *sim.Loop
	canvas   *Canvas
	renderer *CanvasRenderer
	kinetic  *metrics.KineticEnergy
	shock    *metrics.ForceLoad
	style    render.Style
	name     string
	interval time.Duration
	now      func() time.Time

	armed    bool
	hidden   bool
	scroll   float64
	showHelp bool
	notice   string

	energyHistory []float64
	shockHistory  []float64

	recording bool
	frames    []*image.Paletted
	gifPath   string
}

// NewModel builds a loop from cfg that renders onto a braille canvas sized
// to the configured viewport.
func NewModel(cfg *config.Config, name string, opts ...sim.Option) (Model, error) {
	canvas := NewCanvas(int(cfg.Viewport.Width)/2, int(cfg.Viewport.Height)/4)
	style := cfg.Style()
	r := NewCanvasRenderer(canvas, style)

	loop, err := sim.New(cfg, append(opts, sim.WithRenderer(r))...)
	if err != nil {
		return Model{}, err
	}
	kinetic := metrics.NewKineticEnergy()
	shock := metrics.NewForceLoad(physics.Shock)
	loop.AddMetric(kinetic)
	loop.AddMetric(shock)

	return Model{
		loop:          loop,
		canvas:        canvas,
		renderer:      r,
		kinetic:       kinetic,
		shock:         shock,
		style:         style,
		name:          name,
		interval:      cfg.FrameInterval(),
		now:           time.Now,
		armed:         true,
		energyHistory: make([]float64, 0, historyCapacity),
		shockHistory:  make([]float64, 0, historyCapacity),
		gifPath:       "driftfield.gif",
	}, nil
}

// Loop exposes the hosted simulation loop.
func (m Model) Loop() *sim.Loop { return m.loop }

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// arm schedules the next frame unless one is pending or the loop is paused.
func (m *Model) arm() tea.Cmd {
	if m.armed || m.loop.State() != sim.Running {
		return nil
	}
	m.armed = true
	return m.tick()
}

// Update feeds terminal events to the loop and steps it on every tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		m.armed = false
		if m.loop.Frame(time.Time(msg)) {
			m.record()
		}
		return m, m.arm()

	case tea.FocusMsg:
		if m.loop.SetForeground(true) {
			return m, m.arm()
		}
	case tea.BlurMsg:
		m.loop.SetForeground(false)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.MouseMsg:
		m.mouse(tea.MouseEvent(msg))

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.hidden = !m.hidden
			if m.loop.SetOnScreen(!m.hidden) {
				return m, m.arm()
			}
		case "c":
			vp := m.loop.Input().Viewport
			m.loop.Click(vp.Width/2, vp.Height/2, m.now())
		case "r":
			vp := m.loop.Input().Viewport
			m.loop.ResizeNow(vp.Width, vp.Height, vp.PixelRatio)
		case "t":
			NextTheme()
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		}
	}
	return m, nil
}

// resize fits the canvas into the terminal beside the stats panel and
// queues the matching viewport.
func (m *Model) resize(w, h int) {
	cols := w - panelWidth - 2*canvasLeft - 3
	rows := h - 2*canvasTop
	if cols < 1 || rows < 1 {
		m.loop.Resize(0, 0, 1, m.now())
		return
	}
	m.canvas = NewCanvas(cols, rows)
	m.renderer.Canvas = m.canvas
	dw, dh := m.canvas.Dots()
	m.loop.Resize(float64(dw), float64(dh), 1, m.now())
}

// mouse translates cell coordinates to viewport units at the dot centre.
func (m *Model) mouse(ev tea.MouseEvent) {
	cx, cy := ev.X-canvasLeft, ev.Y-canvasTop
	inside := cx >= 0 && cy >= 0 && cx < m.canvas.Width && cy < m.canvas.Height
	x, y := float64(cx*2)+1, float64(cy*4)+2

	if ev.IsWheel() {
		section := float64(m.canvas.Height * 4)
		step := section / 8
		switch ev.Button {
		case tea.MouseButtonWheelDown:
			m.scroll = min(m.scroll+step, section)
		case tea.MouseButtonWheelUp:
			m.scroll = max(m.scroll-step, 0)
		}
		m.loop.Scroll(m.scroll, section, m.now())
		return
	}

	if !inside {
		m.loop.PointerLeave()
		return
	}
	switch ev.Action {
	case tea.MouseActionMotion:
		m.loop.PointerMove(x, y)
	case tea.MouseActionPress:
		m.loop.PointerMove(x, y)
		if ev.Button == tea.MouseButtonLeft {
			m.loop.Click(x, y, m.now())
		}
	}
}

// record appends the latest metric values to the panel history and drains
// the metric series so a long session stays bounded.
func (m *Model) record() {
	m.energyHistory = appendCapped(m.energyHistory, m.kinetic.Value())
	m.shockHistory = appendCapped(m.shockHistory, m.shock.Value())
	m.kinetic.Reset()
	m.shock.Reset()

	if m.recording {
		m.captureFrame()
	}
}

func appendCapped(h []float64, v float64) []float64 {
	if len(h) >= historyCapacity {
		copy(h, h[1:])
		h = h[:len(h)-1]
	}
	return append(h, v)
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = m.frames[:0]
		m.notice = ""
		return
	}
	m.recording = false
	if err := m.saveGIF(); err != nil {
		m.notice = "gif: " + err.Error()
	} else if len(m.frames) > 0 {
		m.notice = fmt.Sprintf("saved %d frames to %s", len(m.frames), m.gifPath)
	}
	m.frames = nil
}

// captureFrame rasterises the current field and dithers it into a GIF
// frame.
func (m *Model) captureFrame() {
	if len(m.frames) >= maxGIFFrames {
		return
	}
	in := m.loop.Input()
	scene := render.Scene{
		Particles:  m.loop.Snapshot(),
		Width:      in.Viewport.Width,
		Height:     in.Viewport.Height,
		PixelRatio: gifScale,
		PointerX:   in.PointerX,
		PointerY:   in.PointerY,
		Dispersion: in.Dispersion,
	}
	img := export.Frame(&scene, m.style, "")
	if img == nil {
		return
	}
	frame := image.NewPaletted(img.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(frame, img.Bounds(), img, image.Point{})
	m.frames = append(m.frames, frame)
}

func (m *Model) saveGIF() error {
	if len(m.frames) == 0 {
		return nil
	}
	delay := max(int(m.interval/(10*time.Millisecond)), 1)
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}
	f, err := os.Create(m.gifPath)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &anim); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (m Model) View() string {
	t := CurrentTheme
	in := m.loop.Input()

	var s strings.Builder
	s.WriteString(t.header().Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(t.status(m.loop.State(), m.recording) + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory,
			asciigraph.Height(4),
			asciigraph.Width(panelWidth-12),
			asciigraph.Caption("Kinetic energy"))
		s.WriteString(t.graph().Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(t.label().Render(label) + t.value().Render(value) + "\n")
	}
	row("Tick", fmt.Sprintf("%d", m.loop.Tick()))
	row("Particles", fmt.Sprintf("%d", m.loop.Len()))
	row("Shockwaves", fmt.Sprintf("%d", m.loop.Shockwaves()))
	row("Viewport", fmt.Sprintf("%.0f×%.0f", in.Viewport.Width, in.Viewport.Height))
	if in.PointerX != input.OffCanvas {
		row("Pointer", fmt.Sprintf("%.0f, %.0f", in.PointerX, in.PointerY))
	} else {
		row("Pointer", "off canvas")
	}
	s.WriteString(t.label().Render("Dispersion") + ProgressBar(in.Dispersion, 12, t) + "\n")
	s.WriteString(t.label().Render("Shock load") + SparklineChart(m.shockHistory, 16, t) + "\n")

	if !m.loop.Valid() {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(t.Warning).Render("viewport too small") + "\n")
	}
	if m.notice != "" {
		s.WriteString("\n" + t.hint().Render(m.notice) + "\n")
	}

	s.WriteString("\n" + Separator(panelWidth-4, t) + "\n")
	s.WriteString(t.hint().Render("SP:Hide C:Shock R:Regen Q:Quit\nT:Theme G:Record ?:Help"))

	canvasView := canvasStyle.Render(m.canvas.Render())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, t.panel().Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Mouse    - Push particles aside     ║
║  Click    - Shockwave                ║
║  Wheel    - Disperse the field       ║
║  Space    - Hide/show (pauses)       ║
║  C        - Shockwave at centre      ║
║  R        - Regenerate population    ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

// Run starts the live view in the alternate screen with mouse motion and
// focus reporting enabled.
func Run(m Model) error {
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus())
	_, err := p.Run()
	return err
}
