package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/dynamo"
	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/input"
	"github.com/san-kum/driftfield/internal/integrators"
	"github.com/san-kum/driftfield/internal/physics"
	"github.com/san-kum/driftfield/internal/quadtree"
	"github.com/san-kum/driftfield/internal/render"
	"github.com/san-kum/driftfield/internal/shockwave"
)

// Loop drives one tick and one render per frame. Host input methods may be
// called from any goroutine; they only write input state, which the next
// Frame reads as a whole.
type Loop struct {
	mu sync.Mutex

	cfg        *config.Config
	field      *field.Field
	tree       *quadtree.Tree
	forces     physics.Forces
	integrator *integrators.SemiImplicitEuler
	shocks     *shockwave.Registry
	renderer   render.Renderer
	observers  []Observer
	metrics    []Metric
	logger     *slog.Logger

	state      State
	onScreen   bool
	foreground bool
	valid      bool

	in     Input
	resize *input.Debounce[input.Size]
	scroll *input.Throttle[float64]

	workers int
	scratch *scratchPool
	acc     []physics.Accel
	parts   []physics.Breakdown
	env     physics.Env
	scene   render.Scene
	frame   Frame
	tick    int
}

type Option func(*Loop)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

func WithRenderer(r render.Renderer) Option {
	return func(l *Loop) { l.renderer = r }
}

// WithField starts the loop from an existing population instead of
// regenerating one for the configured viewport.
func WithField(f *field.Field) Option {
	return func(l *Loop) { l.field = f }
}

// New builds a loop in the Running state from cfg.
func New(cfg *config.Config, opts ...Option) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	palette, err := field.ParsePalette(cfg.Field.Palette)
	if err != nil {
		return nil, err
	}

	l := &Loop{
		cfg:    cfg,
		forces: cfg.Forces(),
		integrator: &integrators.SemiImplicitEuler{
			Damping:     cfg.Physics.Damping,
			Restitution: cfg.Physics.Bounce,
		},
		shocks:     shockwave.NewRegistry(cfg.ShockLifetime()),
		tree:       quadtree.New(cfg.Index.Capacity, cfg.Index.MaxDepth, cfg.Physics.CollisionMargin),
		logger:     slog.Default(),
		state:      Running,
		onScreen:   true,
		foreground: true,
		resize:     input.NewDebounce[input.Size](cfg.ResizeDebounce()),
		scroll:     input.NewThrottle[float64](cfg.ScrollThrottle()),
		workers:    max(cfg.Loop.Workers, 1),
		scratch:    newScratchPool(32),
		in: Input{
			PointerX: input.OffCanvas,
			PointerY: input.OffCanvas,
		},
	}
	for _, opt := range opts {
		opt(l)
	}

	size := input.Size{
		Width:      cfg.Viewport.Width,
		Height:     cfg.Viewport.Height,
		PixelRatio: input.PixelRatio(cfg.Viewport.PixelRatio, cfg.Render.MaxPixelRatio),
	}
	if l.field != nil {
		l.in.Viewport = input.Size{Width: l.field.Width, Height: l.field.Height, PixelRatio: size.PixelRatio}
		l.valid = l.field.Valid()
		return l, nil
	}

	l.field = field.New(palette, field.SpawnPolicy(cfg.Field.Spawn), cfg.Seed)
	l.applyResize(size)
	return l, nil
}

func (l *Loop) AddObserver(o Observer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, o)
}

func (l *Loop) AddMetric(m Metric) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.metrics = append(l.metrics, m)
}

// PointerMove records the pointer position in viewport coordinates.
func (l *Loop) PointerMove(x, y float64) {
	l.mu.Lock()
	l.in.PointerX, l.in.PointerY = x, y
	l.mu.Unlock()
}

// PointerLeave moves the pointer off canvas.
func (l *Loop) PointerLeave() {
	l.PointerMove(input.OffCanvas, input.OffCanvas)
}

// Click triggers a shockwave at (x, y).
func (l *Loop) Click(x, y float64, now time.Time) {
	l.mu.Lock()
	l.shocks.Trigger(x, y, now)
	l.mu.Unlock()
}

// Scroll maps a scroll offset past the host section to the dispersion
// factor. Updates are throttled; the latest value lands on a later frame.
func (l *Loop) Scroll(offset, sectionHeight float64, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if d, ok := l.scroll.Offer(input.Dispersion(offset, sectionHeight), now); ok {
		l.in.Dispersion = d
	}
}

// SetDispersion sets the dispersion factor directly, bypassing the throttle.
func (l *Loop) SetDispersion(d float64) {
	l.mu.Lock()
	l.in.Dispersion = input.Dispersion(d, 1)
	l.mu.Unlock()
}

// Resize queues a viewport change. The population is regenerated by the
// first frame after the debounce window.
func (l *Loop) Resize(width, height, dpr float64, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resize.Push(input.Size{
		Width:      width,
		Height:     height,
		PixelRatio: input.PixelRatio(dpr, l.cfg.Render.MaxPixelRatio),
	}, now)
}

// ResizeNow applies a viewport change immediately.
func (l *Loop) ResizeNow(width, height, dpr float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.applyResize(input.Size{
		Width:      width,
		Height:     height,
		PixelRatio: input.PixelRatio(dpr, l.cfg.Render.MaxPixelRatio),
	})
}

func (l *Loop) applyResize(size input.Size) {
	l.in.Viewport = size
	err := l.field.Regenerate(l.cfg.Field.Count, size.Width, size.Height)
	switch {
	case errors.Is(err, dynamo.ErrEmptyViewport):
		if l.valid {
			l.logger.Info("viewport empty, ticks suspended", "width", size.Width, "height", size.Height)
		}
		l.valid = false
		return
	case err != nil:
		l.logger.Error("regenerate failed", "err", err)
		l.valid = false
		return
	}
	l.valid = true
	l.logger.Debug("regenerated",
		"count", l.field.Len(),
		"width", size.Width,
		"height", size.Height,
		"pixel_ratio", size.PixelRatio)
}

// SetOnScreen reports whether the host surface intersects the viewport.
// It returns true when the caller must re-arm the frame schedule.
func (l *Loop) SetOnScreen(v bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onScreen = v
	return l.updateState()
}

// SetForeground reports whether the host itself is in the foreground.
// It returns true when the caller must re-arm the frame schedule.
func (l *Loop) SetForeground(v bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.foreground = v
	return l.updateState()
}

func (l *Loop) updateState() bool {
	visible := l.onScreen && l.foreground
	switch {
	case !visible && l.state == Running:
		l.state = Paused
		l.logger.Debug("paused", "tick", l.tick)
	case visible && l.state == Paused:
		l.state = Running
		l.logger.Debug("resumed", "tick", l.tick)
		return true
	}
	return false
}

func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Tick returns the number of committed ticks.
func (l *Loop) Tick() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tick
}

func (l *Loop) Input() Input {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.in
}

// Valid reports whether the viewport can be simulated.
func (l *Loop) Valid() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.valid
}

func (l *Loop) Shockwaves() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.shocks.Len()
}

// Snapshot copies the current particle state.
func (l *Loop) Snapshot() []field.Particle {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]field.Particle(nil), l.field.Particles...)
}

// Metrics returns the current value of every registered metric.
func (l *Loop) Metrics() map[string]float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]float64, len(l.metrics))
	for _, m := range l.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// Frame runs one tick and render at now. It returns false without
// touching particle state when the loop is paused or the viewport is
// empty.
func (l *Loop) Frame(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if size, ok := l.resize.Ready(now); ok {
		l.applyResize(size)
	}
	if d, ok := l.scroll.Flush(now); ok {
		l.in.Dispersion = d
	}
	if l.state != Running || !l.valid {
		return false
	}

	l.shocks.Prune(now)

	ps := l.field.Particles
	l.rebuild(ps)

	l.env = physics.Env{
		Width:      l.field.Width,
		Height:     l.field.Height,
		PointerX:   l.in.PointerX,
		PointerY:   l.in.PointerY,
		Dispersion: l.in.Dispersion,
		Shockwaves: l.shocks.Live(),
		Now:        now,
	}
	l.ensureBuffers(len(ps))
	l.evaluate(ps)
	l.integrator.StepAll(ps, l.acc, l.field.Width, l.field.Height)
	l.tick++

	if l.renderer != nil {
		l.scene = render.Scene{
			Particles:  ps,
			Width:      l.field.Width,
			Height:     l.field.Height,
			PixelRatio: l.in.Viewport.PixelRatio,
			PointerX:   l.in.PointerX,
			PointerY:   l.in.PointerY,
			Dispersion: l.in.Dispersion,
		}
		l.renderer.Render(&l.scene)
	}

	if len(l.observers) > 0 || len(l.metrics) > 0 {
		l.frame = Frame{
			Tick:       l.tick,
			Now:        now,
			Width:      l.field.Width,
			Height:     l.field.Height,
			Particles:  ps,
			Forces:     l.parts,
			Shockwaves: l.shocks.Len(),
			Input:      l.in,
		}
		for _, m := range l.metrics {
			m.Observe(&l.frame)
		}
		for _, o := range l.observers {
			o.OnFrame(&l.frame)
		}
	}
	return true
}

func (l *Loop) rebuild(ps []field.Particle) {
	l.tree.Reset(quadtree.Rect{W: l.field.Width, H: l.field.Height})
	for i := range ps {
		l.tree.Insert(int32(i), ps[i].X, ps[i].Y, ps[i].Radius)
	}
}

// Run calls Frame for every value received on ticks until ctx is done or
// ticks is closed. Ticks arriving while paused are dropped.
func (l *Loop) Run(ctx context.Context, ticks <-chan time.Time) error {
	l.logger.Info("loop started", "particles", l.Len(), "workers", l.workers)
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("loop stopped at tick %d: %w", l.Tick(), ctx.Err())
		case now, ok := <-ticks:
			if !ok {
				return nil
			}
			l.Frame(now)
		}
	}
}

// RunFor runs n frames on a synthetic clock starting at start, spaced by
// the configured frame interval, and returns the time after the last one.
func (l *Loop) RunFor(ctx context.Context, start time.Time, n int) (time.Time, error) {
	step := l.cfg.FrameInterval()
	now := start
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return now, err
		}
		now = now.Add(step)
		l.Frame(now)
	}
	return now, nil
}

func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.field.Len()
}

// Config returns the configuration the loop was built from.
func (l *Loop) Config() *config.Config { return l.cfg }
