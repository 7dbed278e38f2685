// Package gui hosts the particle field in a resizable raylib window.
package gui

import (
	"fmt"
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/input"
	"github.com/san-kum/driftfield/internal/metrics"
	"github.com/san-kum/driftfield/internal/render"
	"github.com/san-kum/driftfield/internal/sim"
)

var (
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColError   = rl.NewColor(255, 90, 90, 255)
)

const telemetryCapacity = 200

type App struct {
	Presets  []string
	Selected int
	InMenu   bool
	Preset   string
	Font     rl.Font

	logger    *slog.Logger
	cfg       *config.Config
	loop      *sim.Loop
	renderer  *Renderer
	kinetic   *metrics.KineticEnergy
	telemetry []float64
	hidden    bool
	scroll    float64
	err       error
}

func initWindow(cfg *config.Config) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Viewport.Width), int32(cfg.Viewport.Height), "driftfield")
	rl.SetTargetFPS(int32(cfg.Loop.FPS))
	rl.SetExitKey(0)
}

// loadFont prefers Liberation Mono and falls back to raylib's built-in font.
func loadFont() rl.Font {
	font := rl.LoadFontEx("/usr/share/fonts/liberation/LiberationMono-Regular.ttf", 32, nil, 0)
	if font.Texture.ID == 0 {
		return rl.GetFontDefault()
	}
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

// NewApp creates an App in the preset menu. Call start to load a field.
func NewApp(logger *slog.Logger) *App {
	return &App{
		Presets:   config.ListPresets(),
		InMenu:    true,
		Font:      loadFont(),
		logger:    logger,
		renderer:  NewRenderer(render.DefaultStyle()),
		telemetry: make([]float64, 0, telemetryCapacity),
	}
}

// RunInteractive opens the window on the preset menu and blocks until it
// is closed.
func RunInteractive(logger *slog.Logger) error {
	initWindow(config.DefaultConfig())
	defer rl.CloseWindow()
	app := NewApp(logger)
	app.RunLoop()
	return nil
}

// Run opens the window straight into cfg and blocks until it is closed.
func Run(cfg *config.Config, preset string, logger *slog.Logger) error {
	initWindow(cfg)
	defer rl.CloseWindow()
	app := NewApp(logger)
	if err := app.start(cfg, preset); err != nil {
		return err
	}
	app.RunLoop()
	return nil
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if !a.Update() {
			return
		}
		a.Draw()
	}
}

// start builds a loop for cfg sized to the current window.
func (a *App) start(cfg *config.Config, preset string) error {
	cfg = cfg.Clone()
	cfg.Viewport.Width = float64(rl.GetScreenWidth())
	cfg.Viewport.Height = float64(rl.GetScreenHeight())
	if dpi := float64(rl.GetWindowScaleDPI().X); dpi > 0 {
		cfg.Viewport.PixelRatio = dpi
	}

	r := NewRenderer(cfg.Style())
	loop, err := sim.New(cfg, sim.WithRenderer(r), sim.WithLogger(a.logger))
	if err != nil {
		return err
	}
	a.kinetic = metrics.NewKineticEnergy()
	loop.AddMetric(a.kinetic)

	a.cfg, a.loop, a.renderer = cfg, loop, r
	a.Preset = preset
	a.InMenu, a.hidden, a.scroll, a.err = false, false, 0, nil
	a.telemetry = a.telemetry[:0]
	a.logger.Info("field loaded", "preset", preset, "particles", loop.Len())
	return nil
}

// Update polls window and input state. It returns false when the user
// quits.
func (a *App) Update() bool {
	if rl.IsKeyPressed(rl.KeyQ) {
		return false
	}
	if a.InMenu {
		a.updateMenu()
		return true
	}

	now := time.Now()
	w, h := float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight())

	if rl.IsKeyPressed(rl.KeyEscape) {
		a.InMenu = true
		return true
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		a.hidden = !a.hidden
	}
	if rl.IsKeyPressed(rl.KeyC) {
		a.loop.Click(w/2, h/2, now)
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.loop.ResizeNow(w, h, float64(rl.GetWindowScaleDPI().X))
	}

	if rl.IsWindowResized() {
		a.loop.Resize(w, h, float64(rl.GetWindowScaleDPI().X), now)
		a.scroll = min(a.scroll, h)
	}
	a.loop.SetOnScreen(!a.hidden && !rl.IsWindowMinimized())
	a.loop.SetForeground(rl.IsWindowFocused())

	if rl.IsCursorOnScreen() {
		pos := rl.GetMousePosition()
		a.loop.PointerMove(float64(pos.X), float64(pos.Y))
		if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
			a.loop.Click(float64(pos.X), float64(pos.Y), now)
		}
	} else {
		a.loop.PointerLeave()
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		a.scroll = max(0, min(h, a.scroll-float64(wheel)*h/10))
		a.loop.Scroll(a.scroll, h, now)
	}
	return true
}

func (a *App) updateMenu() {
	if rl.IsKeyPressed(rl.KeyDown) || rl.IsKeyPressed(rl.KeyJ) {
		a.Selected = (a.Selected + 1) % len(a.Presets)
	}
	if rl.IsKeyPressed(rl.KeyUp) || rl.IsKeyPressed(rl.KeyK) {
		a.Selected = (a.Selected - 1 + len(a.Presets)) % len(a.Presets)
	}
	if rl.IsKeyPressed(rl.KeyEscape) && a.loop != nil {
		a.InMenu = false
	}
	if rl.IsKeyPressed(rl.KeyEnter) {
		name := a.Presets[a.Selected]
		cfg, err := config.LoadPreset(name)
		if err == nil {
			err = a.start(cfg, name)
		}
		if err != nil {
			a.err = err
			a.logger.Error("load preset", "preset", name, "err", err)
		}
	}
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(a.renderer.Background())

	if a.InMenu {
		a.drawMenu()
	} else {
		a.drawSim(time.Now())
		a.DrawHUD()
	}

	rl.EndDrawing()
}

// drawSim steps the loop, which renders through the Renderer. A paused
// loop leaves particle state alone, so the last positions are redrawn.
func (a *App) drawSim(now time.Time) {
	if a.loop.Frame(now) {
		a.telemetry = append(a.telemetry, a.kinetic.Value())
		if len(a.telemetry) > telemetryCapacity {
			a.telemetry = a.telemetry[1:]
		}
		a.kinetic.Reset()
	} else {
		in := a.loop.Input()
		a.renderer.Render(&render.Scene{
			Particles:  a.loop.Snapshot(),
			Width:      in.Viewport.Width,
			Height:     in.Viewport.Height,
			PixelRatio: in.Viewport.PixelRatio,
			PointerX:   in.PointerX,
			PointerY:   in.PointerY,
			Dispersion: in.Dispersion,
		})
	}

	if in := a.loop.Input(); in.PointerX != input.OffCanvas {
		drawCursor(in.PointerX, in.PointerY, a.renderer.Style.GlowRadius)
	}
}

func (a *App) DrawHUD() {
	w, h := int(rl.GetScreenWidth()), int(rl.GetScreenHeight())
	in := a.loop.Input()

	a.drawText("driftfield", 30, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %s", a.Preset), 170, 34, 16, ColText)

	a.DrawTelemetry()

	status, col := "RUNNING", ColSelect
	if a.loop.State() == sim.Paused {
		status, col = "PAUSED", ColTextDim
	}
	a.drawText(status, w-130, 30, 16, col)
	a.drawText(fmt.Sprintf("tick %d  particles %d  shocks %d  dispersion %.2f",
		a.loop.Tick(), a.loop.Len(), a.loop.Shockwaves(), in.Dispersion), 30, 64, 14, ColText)

	a.drawText("[SPACE] HIDE  [C] SHOCK  [R] REGEN  [ESC] MENU  [Q] QUIT", w-580, h-40, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), 30, h-40, 14, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

// DrawTelemetry plots recent kinetic energy as a line strip.
func (a *App) DrawTelemetry() {
	if len(a.telemetry) < 2 {
		return
	}

	rectX, rectY := 30, int(rl.GetScreenHeight())-120
	width, height := 400, 60

	minVal, maxVal := a.telemetry[0], a.telemetry[0]
	for _, v := range a.telemetry {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.telemetry))
	for i, val := range a.telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("KE: %.2e", a.telemetry[len(a.telemetry)-1]), rectX+width+10, rectY+height-10, 14, ColText)
}

func (a *App) drawMenu() {
	a.drawText("driftfield", 50, 50, 40, ColSelect)
	a.drawText("Select Preset", 50, 100, 16, ColTextDim)

	y := 160
	for i, name := range a.Presets {
		if i == a.Selected {
			a.drawText(fmt.Sprintf("> %s", name), 50, y, 20, ColSelect)
		} else {
			a.drawText(fmt.Sprintf("  %s", name), 50, y, 20, ColText)
		}
		y += 28
	}
	if a.err != nil {
		a.drawText(a.err.Error(), 50, y+20, 16, ColError)
	}

	a.drawText("ARROWS: NAVIGATE  ENTER: SELECT  Q: QUIT", 50, int(rl.GetScreenHeight())-40, 14, ColTextDim)
}
