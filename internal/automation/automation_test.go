package automation

import (
	"context"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/dynamo"
	"github.com/san-kum/driftfield/internal/experiment"
	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/input"
	"github.com/san-kum/driftfield/internal/sim"
)

const small = `
name: small
preset: sparse
seed: 3
count: 25
width: 400
height: 300
ticks: 60
events:
  - {at: 40, type: click, x: 200, y: 150}
  - {at: 0, type: path, x: 0, y: 150, to_x: 400, to_y: 150, over: 20}
  - {at: 25, type: leave}
  - {at: 30, type: hide}
  - {at: 35, type: show}
`

var _ = Describe("Scenario", func() {
	ctx := context.Background()

	Describe("parsing", func() {
		It("loads a scenario file", func() {
			sc, err := LoadScenario("testdata/click-burst.yaml")
			Expect(err).NotTo(HaveOccurred())
			Expect(sc.Name).To(Equal("click-burst"))
			Expect(sc.Ticks).To(Equal(360))
			Expect(sc.Events).To(HaveLen(7))
			Expect(*sc.Seed).To(Equal(int64(7)))
		})

		It("orders events by tick", func() {
			sc, err := ParseScenario([]byte(small))
			Expect(err).NotTo(HaveOccurred())
			Expect(sc.Events[0].Type).To(Equal(EventPath))
			Expect(sc.Events[len(sc.Events)-1].Type).To(Equal(EventClick))
		})

		It("applies overrides on top of the preset", func() {
			sc, err := ParseScenario([]byte(small))
			Expect(err).NotTo(HaveOccurred())
			cfg, err := sc.Config()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Field.Count).To(Equal(25))
			Expect(cfg.Seed).To(Equal(int64(3)))
			Expect(cfg.Viewport.Width).To(Equal(400.0))
			Expect(cfg.Physics.HomeStrength).To(Equal(config.GetPreset("sparse").Physics.HomeStrength))
		})

		DescribeTable("rejects invalid scenarios",
			func(doc string) {
				_, err := ParseScenario([]byte(doc))
				Expect(err).To(MatchError(dynamo.ErrInvalidScenario))
			},
			Entry("no ticks", "name: x\n"),
			Entry("unknown event", "ticks: 5\nevents:\n  - {at: 1, type: teleport}\n"),
			Entry("negative tick", "ticks: 5\nevents:\n  - {at: -1, type: click}\n"),
			Entry("path without span", "ticks: 5\nevents:\n  - {at: 1, type: path}\n"),
			Entry("scroll without section", "ticks: 5\nevents:\n  - {at: 1, type: scroll, offset: 3}\n"),
			Entry("not yaml", "ticks: [\n"),
		)

		It("reports unknown presets", func() {
			sc := &Scenario{Preset: "nope", Ticks: 1}
			_, err := sc.Config()
			Expect(err).To(MatchError(dynamo.ErrUnknownPreset))
		})
	})

	Describe("Apply", func() {
		var (
			sc *Scenario
			l  *sim.Loop
		)

		BeforeEach(func() {
			var err error
			sc, err = ParseScenario([]byte(small))
			Expect(err).NotTo(HaveOccurred())
			cfg, err := sc.Config()
			Expect(err).NotTo(HaveOccurred())
			l, err = sim.New(cfg)
			Expect(err).NotTo(HaveOccurred())
		})

		It("interpolates pointer paths", func() {
			sc.Apply(10, experiment.Epoch, l)
			in := l.Input()
			Expect(in.PointerX).To(BeNumerically("~", 200, 1e-9))
			Expect(in.PointerY).To(BeNumerically("~", 150, 1e-9))
		})

		It("fires discrete events only on their tick", func() {
			sc.Apply(25, experiment.Epoch, l)
			Expect(l.Input().PointerX).To(Equal(input.OffCanvas))

			sc.Apply(30, experiment.Epoch, l)
			Expect(l.State()).To(Equal(sim.Paused))
			sc.Apply(31, experiment.Epoch, l)
			Expect(l.State()).To(Equal(sim.Paused))
			sc.Apply(35, experiment.Epoch, l)
			Expect(l.State()).To(Equal(sim.Running))

			sc.Apply(40, experiment.Epoch.Add(time.Second), l)
			Expect(l.Shockwaves()).To(Equal(1))
		})

		It("debounces resize events like a host would", func() {
			rs, err := ParseScenario([]byte("ticks: 20\nwidth: 400\nheight: 300\nevents:\n  - {at: 0, type: resize, width: 600, height: 200, dpr: 1}\n"))
			Expect(err).NotTo(HaveOccurred())

			rs.Apply(0, experiment.Epoch, l)
			Expect(l.Input().Viewport.Width).To(Equal(400.0))

			l.Frame(experiment.Epoch.Add(50 * time.Millisecond))
			Expect(l.Input().Viewport.Width).To(Equal(400.0))

			l.Frame(experiment.Epoch.Add(200 * time.Millisecond))
			vp := l.Input().Viewport
			Expect(vp.Width).To(Equal(600.0))
			Expect(vp.Height).To(Equal(200.0))
		})
	})

	Describe("replay", func() {
		It("commits only ticks while visible", func() {
			sc, err := ParseScenario([]byte(small))
			Expect(err).NotTo(HaveOccurred())
			res, err := RunScenario(ctx, sc)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Ticks).To(Equal(60))
			Expect(res.Committed).To(Equal(55))
			Expect(res.Particles).To(HaveLen(25))
		})

		It("is deterministic", func() {
			sc, err := LoadScenario("testdata/click-burst.yaml")
			Expect(err).NotTo(HaveOccurred())
			sc.Ticks = 120
			d, err := Replay(ctx, sc)
			Expect(err).NotTo(HaveOccurred())
			Expect(d).To(BeZero())
		})
	})

	Describe("sweep", func() {
		It("runs one experiment per step", func() {
			sc, err := ParseScenario([]byte(small))
			Expect(err).NotTo(HaveOccurred())
			results, err := RunSweep(ctx, &ParameterSweep{
				Scenario:  sc,
				ParamName: "damping",
				ParamMin:  0.5,
				ParamMax:  0.9,
				NumSteps:  3,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
			Expect(results[1].ParamValue).To(BeNumerically("~", 0.7, 1e-12))
			for _, r := range results {
				Expect(r.Escapes).To(BeZero())
			}
		})

		It("rejects unknown parameters", func() {
			sc, _ := ParseScenario([]byte(small))
			_, err := RunSweep(ctx, &ParameterSweep{Scenario: sc, ParamName: "gravity", NumSteps: 2})
			Expect(err).To(HaveOccurred())
		})

		It("stops on values that fail validation", func() {
			sc, _ := ParseScenario([]byte(small))
			_, err := RunSweep(ctx, &ParameterSweep{Scenario: sc, ParamName: "damping", ParamMin: 0, ParamMax: 0.5, NumSteps: 2})
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		})
	})
})

var _ = Describe("Divergence", func() {
	It("is zero for identical states", func() {
		ps := []field.Particle{{X: 1, Y: 2, VX: 3}}
		Expect(Divergence(ps, ps)).To(BeZero())
	})

	It("reports the largest coordinate difference", func() {
		a := []field.Particle{{X: 1, Y: 2}, {VX: 1}}
		b := []field.Particle{{X: 1.5, Y: 2}, {VX: -1}}
		Expect(Divergence(a, b)).To(Equal(2.0))
	})

	It("is infinite for different population sizes", func() {
		Expect(math.IsInf(Divergence(make([]field.Particle, 2), nil), 1)).To(BeTrue())
	})
})
