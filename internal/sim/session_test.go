package sim_test

import (
	"bytes"
	"context"
	"errors"
	"math"
	"time"

	"github.com/charmbracelet/log"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dropsim/internal/dynamo"
	"github.com/san-kum/dropsim/internal/integrators"
	"github.com/san-kum/dropsim/internal/metrics"
	"github.com/san-kum/dropsim/internal/physics"
	"github.com/san-kum/dropsim/internal/physics/chipmunk"
	"github.com/san-kum/dropsim/internal/sim"
)

type countingMetric struct {
	frames     int
	splits     int
	firstSplit int
	peak       int
}

func (m *countingMetric) Name() string { return "counting" }

func (m *countingMetric) Observe(f sim.Frame) {
	m.frames++
	m.splits += f.Splits
	if f.Splits > 0 && m.firstSplit == 0 {
		m.firstSplit = f.Index
	}
	if f.Count > m.peak {
		m.peak = f.Count
	}
}

func (m *countingMetric) Value() float64 { return float64(m.frames) }
func (m *countingMetric) Reset()         { *m = countingMetric{} }

type recorder struct {
	circles []dynamo.Vec2
	lines   int
	texts   []string
}

func (r *recorder) DrawCircle(c dynamo.Vec2, radius float64) { r.circles = append(r.circles, c) }
func (r *recorder) DrawLine(a, b dynamo.Vec2)                { r.lines++ }
func (r *recorder) DrawText(pos dynamo.Vec2, text string)    { r.texts = append(r.texts, text) }

func runToEnd(s *sim.Session) {
	for i := 0; i < 100000; i++ {
		running, err := s.Frame()
		Expect(err).NotTo(HaveOccurred())
		if !running {
			return
		}
	}
	Fail("session never terminated")
}

var _ = Describe("Session", func() {
	var (
		world   *physics.World
		session *sim.Session
		cfg     sim.Config
		logs    *bytes.Buffer
		params  dynamo.Params
	)

	BeforeEach(func() {
		world = physics.NewWorld(integrators.NewSymplecticEuler())
		cfg = sim.DefaultConfig()
		logs = &bytes.Buffer{}
		params = dynamo.Params{Mass: 10, DropHeight: 100, Gravity: 981}
		session = sim.New(world, cfg,
			sim.WithClock(sim.NewStepClock(time.Second/60)),
			sim.WithLogger(log.New(logs)),
		)
	})

	It("starts in Configuring", func() {
		Expect(session.State()).To(Equal(sim.Configuring))
		_, err := session.Frame()
		Expect(err).To(MatchError(sim.ErrNotRunning))
	})

	Describe("Start", func() {
		DescribeTable("rejects out of range parameters",
			func(mass, height, lateral float64, field string) {
				params.Mass = mass
				params.DropHeight = height
				params.LateralVelocity = lateral

				err := session.Start(params)
				Expect(errors.Is(err, dynamo.ErrValidation)).To(BeTrue())

				var verr *dynamo.ValidationError
				Expect(errors.As(err, &verr)).To(BeTrue())
				Expect(verr.Field).To(Equal(field))

				Expect(session.State()).To(Equal(sim.Configuring))
				Expect(world.Len()).To(BeZero())
			},
			Entry("height above 500", 10.0, 501.0, 0.0, "height"),
			Entry("lateral above 30", 10.0, 100.0, 31.0, "lateral"),
			Entry("lateral below -30", 10.0, 100.0, -31.0, "lateral"),
			Entry("zero mass", 0.0, 100.0, 0.0, "mass"),
			Entry("negative mass", -1.0, 100.0, 0.0, "mass"),
			Entry("NaN mass", math.NaN(), 100.0, 0.0, "mass"),
			Entry("infinite mass", math.Inf(1), 100.0, 0.0, "mass"),
		)

		It("accepts the bounds themselves", func() {
			params.DropHeight = 500
			params.LateralVelocity = -30
			Expect(session.Start(params)).To(Succeed())
		})

		It("can start after a failed validation", func() {
			params.DropHeight = 501
			Expect(session.Start(params)).NotTo(Succeed())
			params.DropHeight = 100
			Expect(session.Start(params)).To(Succeed())
			Expect(session.State()).To(Equal(sim.Running))
		})

		It("does not bound mass or gravity from above", func() {
			params.Mass = 1e9
			params.Gravity = -5
			Expect(session.Start(params)).To(Succeed())
		})

		It("spawns one body at the spawn point", func() {
			params.LateralVelocity = 12
			Expect(session.Start(params)).To(Succeed())

			bodies := world.Bodies()
			Expect(bodies).To(HaveLen(1))
			b := bodies[0].Body
			Expect(b.Position).To(Equal(dynamo.Vec2{X: 400, Y: 450}))
			Expect(b.Velocity).To(Equal(dynamo.Vec2{X: 12, Y: 0}))
			Expect(b.Radius).To(Equal(3.0))
			Expect(b.Fragmented).To(BeFalse())
			Expect(world.Gravity()).To(Equal(dynamo.Vec2{Y: 981}))

			_, err := session.Frame()
			Expect(err).NotTo(HaveOccurred())
			Expect(world.Len()).To(Equal(1))
		})

		It("refuses a second start", func() {
			Expect(session.Start(params)).To(Succeed())
			Expect(session.Start(params)).To(MatchError(sim.ErrAlreadyStarted))
		})
	})

	Describe("running to the ground", func() {
		It("terminates with monotonic samples", func() {
			Expect(session.Start(params)).To(Succeed())
			runToEnd(session)

			Expect(session.State()).To(Equal(sim.Terminated))
			Expect(session.Reason()).To(Equal(sim.ReasonGrounded))

			samples := session.Samples()
			Expect(samples).NotTo(BeEmpty())
			for i := 1; i < len(samples); i++ {
				Expect(samples[i].Time).To(BeNumerically(">", samples[i-1].Time))
			}

			_, err := session.Frame()
			Expect(err).To(MatchError(sim.ErrNotRunning))
		})

		It("samples sqrt(2 g |v|) of the tracked body", func() {
			params.LateralVelocity = 3
			Expect(session.Start(params)).To(Succeed())
			_, err := session.Frame()
			Expect(err).NotTo(HaveOccurred())

			b, ok := world.Body(session.Tracked())
			Expect(ok).To(BeTrue())
			s := session.Samples()[0]
			Expect(s.Velocity).To(BeNumerically("~", math.Sqrt(2*981*b.Velocity.Len()), 1e-9))
			Expect(s.Time).To(BeNumerically("~", 1.0/60, 1e-6))
		})

		It("follows the first child after a fragmentation", func() {
			params.Mass = 100 // force 98.1 splits into 4
			m := &countingMetric{}
			session = sim.New(world, cfg,
				sim.WithClock(sim.NewStepClock(time.Second/60)),
				sim.WithLogger(log.New(logs)),
				sim.WithMetrics(m),
			)
			Expect(session.Start(params)).To(Succeed())
			first := session.Tracked()
			runToEnd(session)

			Expect(session.Tracked()).NotTo(Equal(first))
			res := session.Result()
			Expect(res.Reason).To(Equal(sim.ReasonGrounded))
			Expect(res.Fragmentations).To(BeNumerically(">=", 1))
			Expect(m.splits).To(Equal(res.Fragmentations))
			Expect(res.Metrics).To(HaveKeyWithValue("counting", float64(res.Frames)))
			Expect(world.Len()).To(BeNumerically(">", 1))
		})

		DescribeTable("ends a heavy drop on the impact frame",
			func(useChipmunk bool, mass float64) {
				var engine dynamo.Engine = world
				if useChipmunk {
					engine = chipmunk.New()
				}
				m := &countingMetric{}
				session = sim.New(engine, cfg,
					sim.WithClock(sim.NewStepClock(time.Second/60)),
					sim.WithLogger(log.New(logs)),
					sim.WithMetrics(m),
				)
				params = dynamo.Params{Mass: mass, DropHeight: 500, Gravity: 981}
				Expect(session.Start(params)).To(Succeed())
				runToEnd(session)

				res := session.Result()
				Expect(res.Reason).To(Equal(sim.ReasonGrounded))
				Expect(m.firstSplit).To(BeNumerically(">", 0))
				Expect(res.Frames).To(Equal(m.firstSplit))
				Expect(res.Fragmentations).To(Equal(1))

				maxBodies := int(math.Floor(math.Log(mass * 500 * 981 / 1e5)))
				Expect(engine.Len()).To(BeNumerically("<=", maxBodies))
				Expect(m.peak).To(BeNumerically("<=", maxBodies))
			},
			Entry("native, mass 100", false, 100.0),
			Entry("native, mass 1000", false, 1000.0),
			Entry("native, mass 10000", false, 10000.0),
			Entry("chipmunk, mass 1000", true, 1000.0),
		)

		It("terminates on the same engine contract with chipmunk", func() {
			space := chipmunk.New()
			session = sim.New(space, cfg,
				sim.WithClock(sim.NewStepClock(time.Second/60)),
				sim.WithLogger(log.New(logs)),
			)
			Expect(session.Start(params)).To(Succeed())
			runToEnd(session)
			Expect(session.Reason()).To(Equal(sim.ReasonGrounded))
		})

		It("stops at the frame limit", func() {
			cfg.MaxFrames = 5
			params.Gravity = 0
			session = sim.New(world, cfg, sim.WithLogger(log.New(logs)))
			Expect(session.Start(params)).To(Succeed())
			runToEnd(session)
			Expect(session.Reason()).To(Equal(sim.ReasonFrameLimit))
			Expect(session.Result().Frames).To(Equal(5))
		})
	})

	Describe("cancellation", func() {
		It("terminates at the next frame without stepping", func() {
			Expect(session.Start(params)).To(Succeed())
			_, err := session.Frame()
			Expect(err).NotTo(HaveOccurred())
			before, _ := world.Body(session.Tracked())

			session.Cancel()
			running, err := session.Frame()
			Expect(err).NotTo(HaveOccurred())
			Expect(running).To(BeFalse())
			Expect(session.Reason()).To(Equal(sim.ReasonCanceled))

			after, _ := world.Body(session.Tracked())
			Expect(after.Position).To(Equal(before.Position))
			Expect(session.Samples()).To(HaveLen(1))
		})

		It("gives metrics a final frame when canceled", func() {
			session = sim.New(world, cfg,
				sim.WithClock(sim.NewStepClock(time.Second/60)),
				sim.WithLogger(log.New(logs)),
				sim.WithMetrics(metrics.Default()...),
			)
			Expect(session.Start(params)).To(Succeed())
			for i := 0; i < 5; i++ {
				_, err := session.Frame()
				Expect(err).NotTo(HaveOccurred())
			}
			b, _ := world.Body(session.Tracked())

			session.Cancel()
			_, err := session.Frame()
			Expect(err).NotTo(HaveOccurred())

			res := session.Result()
			Expect(res.Reason).To(Equal(sim.ReasonCanceled))
			Expect(res.Metrics["kinetic_energy"]).To(BeNumerically("~", b.KineticEnergy(), 1e-9))
			Expect(res.Metrics["fragments"]).To(Equal(1.0))
		})

		It("maps context cancellation in Run", func() {
			params.Gravity = 0
			Expect(session.Start(params)).To(Succeed())

			ctx, cancel := context.WithCancel(context.Background())
			frames := 0
			res, err := session.Run(ctx, func(s *sim.Session) {
				frames++
				if frames == 3 {
					cancel()
				}
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Reason).To(Equal(sim.ReasonCanceled))
			Expect(res.Frames).To(Equal(3))
		})
	})

	It("draws ground, basket, bodies and time", func() {
		Expect(session.Start(params)).To(Succeed())
		_, err := session.Frame()
		Expect(err).NotTo(HaveOccurred())

		r := &recorder{}
		session.Draw(r)
		Expect(r.circles).To(HaveLen(1))
		Expect(r.lines).To(Equal(4))
		Expect(r.texts).To(ConsistOf("Time: 0.02s"))
	})

	It("removes every body on Close", func() {
		params.Mass = 100
		Expect(session.Start(params)).To(Succeed())
		runToEnd(session)
		session.Close()
		Expect(world.Len()).To(BeZero())
		session.Close()
	})
})
