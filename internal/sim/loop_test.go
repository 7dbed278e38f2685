package sim

import (
	"context"
	"errors"
	"image/color"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/dynamo"
	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/input"
	"github.com/san-kum/driftfield/internal/physics"
	"github.com/san-kum/driftfield/internal/render"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func testConfig(count int, w, h float64) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Seed = 42
	cfg.Field.Count = count
	cfg.Viewport.Width = w
	cfg.Viewport.Height = h
	return cfg
}

// ring places n particles evenly on a circle of radius dist around the
// centre of a w×h field, each resting at its home.
func ring(n int, w, h, dist float64) *field.Field {
	f := field.New(nil, field.SpawnHome, 1)
	f.Width, f.Height = w, h
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		x := w/2 + math.Cos(a)*dist
		y := h/2 + math.Sin(a)*dist
		f.Particles = append(f.Particles, field.Particle{
			X: x, Y: y, HomeX: x, HomeY: y,
			Radius: 8,
			Color:  color.RGBA{0x63, 0x66, 0xf1, 0xff},
		})
	}
	return f
}

type frameRecorder struct {
	ticks  []int
	shocks [][]physics.Accel
}

func (r *frameRecorder) OnFrame(fr *Frame) {
	r.ticks = append(r.ticks, fr.Tick)
	s := make([]physics.Accel, len(fr.Forces))
	for i, b := range fr.Forces {
		s[i] = b[physics.Shock]
	}
	r.shocks = append(r.shocks, s)
}

type countingRenderer struct{ scenes int }

func (c *countingRenderer) Render(*render.Scene) { c.scenes++ }

type tickCounter struct{ n float64 }

func (t *tickCounter) Name() string   { return "ticks" }
func (t *tickCounter) Observe(*Frame) { t.n++ }
func (t *tickCounter) Value() float64 { return t.n }
func (t *tickCounter) Reset()         { t.n = 0 }

var _ = Describe("Loop", func() {
	var (
		ctx context.Context
		cfg *config.Config
		l   *Loop
	)

	BeforeEach(func() {
		ctx = context.Background()
		cfg = testConfig(60, 640, 480)
		var err error
		l, err = New(cfg)
		Expect(err).NotTo(HaveOccurred())
	})

	It("starts running with a regenerated population", func() {
		Expect(l.State()).To(Equal(Running))
		Expect(l.Len()).To(Equal(60))
		Expect(l.Valid()).To(BeTrue())
		Expect(l.Input().PointerX).To(Equal(input.OffCanvas))
	})

	It("rejects an invalid config", func() {
		cfg.Loop.FPS = 0
		_, err := New(cfg)
		Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
	})

	Describe("pause and resume", func() {
		It("commits no ticks while paused and keeps state", func() {
			now, err := l.RunFor(ctx, epoch, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(l.Tick()).To(Equal(10))

			Expect(l.SetOnScreen(false)).To(BeFalse())
			Expect(l.State()).To(Equal(Paused))
			before := l.Snapshot()

			now, err = l.RunFor(ctx, now, 300)
			Expect(err).NotTo(HaveOccurred())
			Expect(l.Tick()).To(Equal(10))
			Expect(l.Snapshot()).To(Equal(before))

			Expect(l.SetOnScreen(true)).To(BeTrue())
			Expect(l.State()).To(Equal(Running))
			_, err = l.RunFor(ctx, now, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(l.Tick()).To(Equal(11))
		})

		It("stays paused until both visibility signals agree", func() {
			l.SetForeground(false)
			Expect(l.SetOnScreen(false)).To(BeFalse())
			Expect(l.SetOnScreen(true)).To(BeFalse())
			Expect(l.State()).To(Equal(Paused))
			Expect(l.SetForeground(true)).To(BeTrue())
			Expect(l.State()).To(Equal(Running))
		})

		It("does not ask to re-arm when already running", func() {
			Expect(l.SetOnScreen(true)).To(BeFalse())
		})
	})

	Describe("shockwave scenario", func() {
		var rec *frameRecorder

		BeforeEach(func() {
			var err error
			l, err = New(testConfig(10, 500, 500), WithField(ring(10, 500, 500, 150)))
			Expect(err).NotTo(HaveOccurred())
			rec = &frameRecorder{}
			l.AddObserver(rec)
		})

		It("pushes particles outward until the shockwave expires", func() {
			l.Click(250, 250, epoch)

			_, err := l.RunFor(ctx, epoch, 1)
			Expect(err).NotTo(HaveOccurred())
			for _, p := range l.Snapshot() {
				outward := p.VX*(p.X-250) + p.VY*(p.Y-250)
				Expect(outward).To(BeNumerically(">", 0))
			}

			_, err = l.RunFor(ctx, epoch.Add(cfg.FrameInterval()), 39)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.ticks).To(HaveLen(40))

			ps := l.Snapshot()
			for tick, shocks := range rec.shocks {
				for i, a := range shocks {
					if tick+1 >= 25 {
						Expect(a).To(Equal(physics.Accel{}), "tick %d particle %d", tick+1, i)
					}
				}
			}
			for tick := 0; tick < 3; tick++ {
				for i, a := range rec.shocks[tick] {
					Expect(math.Hypot(a.X, a.Y)).To(BeNumerically(">", 0), "tick %d particle %d", tick+1, i)
				}
			}
			Expect(ps).To(HaveLen(10))
			Expect(l.Shockwaves()).To(BeZero())
		})
	})

	Describe("containment", func() {
		It("keeps every particle inside the viewport under heavy forcing", func() {
			l.PointerMove(320, 240)
			l.SetDispersion(1)
			now := epoch
			for i := 0; i < 200; i++ {
				if i%10 == 0 {
					l.Click(float64(i%640), float64(i%480), now)
				}
				now = now.Add(cfg.FrameInterval())
				Expect(l.Frame(now)).To(BeTrue())
				for _, p := range l.Snapshot() {
					Expect(p.X).To(BeNumerically(">=", p.Radius-1e-9))
					Expect(p.X).To(BeNumerically("<=", 640-p.Radius+1e-9))
					Expect(p.Y).To(BeNumerically(">=", p.Radius-1e-9))
					Expect(p.Y).To(BeNumerically("<=", 480-p.Radius+1e-9))
				}
			}
		})
	})

	Describe("overlap", func() {
		It("separates an overlapping pair under collision alone", func() {
			f := field.New(nil, field.SpawnHome, 1)
			f.Width, f.Height = 400, 400
			f.Particles = []field.Particle{
				{X: 195, Y: 200, HomeX: 195, HomeY: 200, Radius: 10},
				{X: 205, Y: 200, HomeX: 205, HomeY: 200, Radius: 10},
			}
			c := testConfig(2, 400, 400)
			c.Physics.HomeStrength = 0
			loop, err := New(c, WithField(f))
			Expect(err).NotTo(HaveOccurred())

			overlap := func() float64 {
				ps := loop.Snapshot()
				d := math.Hypot(ps[0].X-ps[1].X, ps[0].Y-ps[1].Y)
				return ps[0].Radius + ps[1].Radius + 1 - d
			}
			prev := overlap()
			now := epoch
			for i := 0; i < 30 && prev > 0; i++ {
				now = now.Add(c.FrameInterval())
				loop.Frame(now)
				cur := overlap()
				Expect(cur).To(BeNumerically("<", prev))
				prev = cur
			}
			Expect(prev).To(BeNumerically("<=", 0))
		})
	})

	Describe("determinism", func() {
		replay := func(workers int) []field.Particle {
			c := testConfig(150, 800, 600)
			c.Loop.Workers = workers
			loop, err := New(c)
			Expect(err).NotTo(HaveOccurred())

			now := epoch
			for i := 0; i < 120; i++ {
				now = now.Add(c.FrameInterval())
				loop.PointerMove(100+float64(i)*4, 300)
				switch i {
				case 20:
					loop.Click(400, 300, now)
				case 50:
					loop.Scroll(200, 600, now)
				case 70:
					loop.SetOnScreen(false)
				case 80:
					loop.SetOnScreen(true)
				case 90:
					loop.Resize(700, 500, 1, now)
				}
				loop.Frame(now)
			}
			return loop.Snapshot()
		}

		It("replays identically for a fixed seed and input sequence", func() {
			Expect(replay(1)).To(Equal(replay(1)))
		})

		It("does not depend on the number of workers", func() {
			Expect(replay(4)).To(Equal(replay(1)))
		})
	})

	Describe("viewport", func() {
		It("turns frames into no-ops on an empty viewport", func() {
			l.ResizeNow(0, 480, 1)
			Expect(l.Valid()).To(BeFalse())
			before := l.Snapshot()
			Expect(l.Frame(epoch)).To(BeFalse())
			Expect(l.Snapshot()).To(Equal(before))

			l.ResizeNow(320, 240, 1)
			Expect(l.Valid()).To(BeTrue())
			Expect(l.Frame(epoch)).To(BeTrue())
		})

		It("debounces resize events", func() {
			l.Resize(300, 200, 3, epoch)
			l.Resize(320, 240, 3, epoch.Add(100*time.Millisecond))
			l.Frame(epoch.Add(200 * time.Millisecond))
			Expect(l.Input().Viewport.Width).To(Equal(640.0))

			l.Frame(epoch.Add(260 * time.Millisecond))
			vp := l.Input().Viewport
			Expect(vp.Width).To(Equal(320.0))
			Expect(vp.PixelRatio).To(Equal(input.MaxPixelRatio))
			for _, p := range l.Snapshot() {
				Expect(p.X).To(BeNumerically("<=", 320))
			}
		})

		It("regenerates exactly count particles from the palette", func() {
			l.ResizeNow(1024, 768, 1)
			palette := field.MustParsePalette(field.DefaultPalette)
			ps := l.Snapshot()
			Expect(ps).To(HaveLen(60))
			for _, p := range ps {
				Expect(palette).To(ContainElement(p.Color))
				Expect(p.Radius).To(And(BeNumerically(">=", field.MinRadius), BeNumerically("<", field.MaxRadius)))
			}
		})
	})

	Describe("scroll", func() {
		It("throttles dispersion and lands the latest value", func() {
			l.Scroll(100, 400, epoch)
			Expect(l.Input().Dispersion).To(Equal(0.25))
			l.Scroll(400, 400, epoch.Add(10*time.Millisecond))
			Expect(l.Input().Dispersion).To(Equal(0.25))
			l.Frame(epoch.Add(60 * time.Millisecond))
			Expect(l.Input().Dispersion).To(Equal(1.0))
		})
	})

	Describe("outputs", func() {
		It("renders and notifies only on committed ticks", func() {
			r := &countingRenderer{}
			m := &tickCounter{}
			loop, err := New(cfg, WithRenderer(r))
			Expect(err).NotTo(HaveOccurred())
			loop.AddMetric(m)

			now, _ := loop.RunFor(ctx, epoch, 5)
			loop.SetForeground(false)
			loop.RunFor(ctx, now, 5)

			Expect(r.scenes).To(Equal(5))
			Expect(loop.Metrics()).To(HaveKeyWithValue("ticks", 5.0))
		})
	})

	Describe("Run", func() {
		It("drives frames from a tick channel until it closes", func() {
			ticks := make(chan time.Time, 8)
			for i := 1; i <= 8; i++ {
				ticks <- epoch.Add(time.Duration(i) * cfg.FrameInterval())
			}
			close(ticks)
			Expect(l.Run(ctx, ticks)).To(Succeed())
			Expect(l.Tick()).To(Equal(8))
		})

		It("stops when the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			err := l.Run(cctx, make(chan time.Time))
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		})
	})
})
