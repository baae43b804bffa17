package mppi_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mppinav/internal/dynamo"
	"github.com/san-kum/mppinav/internal/integrators"
	"github.com/san-kum/mppinav/internal/mppi"
	"github.com/san-kum/mppinav/internal/physics"
)

type divergent struct{}

func (divergent) Derive(x dynamo.State, u dynamo.Control) dynamo.State {
	return dynamo.State{math.NaN(), 0, 0}
}
func (divergent) StateDim() int   { return 3 }
func (divergent) ControlDim() int { return 2 }

var _ = Describe("Controller", func() {
	var (
		cfg       mppi.Config
		diffDrive dynamo.Model
		unicycle  dynamo.Model
	)

	BeforeEach(func() {
		cfg = mppi.DefaultConfig()
		cfg.Seed = 7
		diffDrive = dynamo.NewModel(physics.NewDiffDrive(), integrators.NewRK4())
		unicycle = dynamo.NewModel(physics.NewUnicycle(), integrators.NewEuler())
	})

	It("starts initialized with a zero nominal sequence", func() {
		c, err := mppi.New(cfg, diffDrive, dynamo.State{1, 0, 0})
		Expect(err).NotTo(HaveOccurred())

		Expect(c.Phase()).To(Equal(mppi.PhaseInitialized))
		Expect(c.Nominal()).To(HaveLen(cfg.Horizon))
		for _, u := range c.Nominal() {
			Expect(u.IsZero()).To(BeTrue())
		}
		Expect(c.Trajectory()).To(BeEmpty())
		Expect(c.Controls()).To(BeEmpty())
	})

	It("drives a differential-drive robot to its goal", func() {
		c, err := mppi.New(cfg, diffDrive, dynamo.State{1, 0, 0})
		Expect(err).NotTo(HaveOccurred())

		x := dynamo.State{0, 0, 0}
		for i := 0; i < 600 && c.Phase() != mppi.PhaseGoalReached; i++ {
			x, _, err = c.Step(x)
			Expect(err).NotTo(HaveOccurred())
			for _, u := range c.Nominal() {
				Expect(math.Abs(u[0])).To(BeNumerically("<=", cfg.ControlLimit))
				Expect(math.Abs(u[1])).To(BeNumerically("<=", cfg.ControlLimit))
			}
		}

		Expect(c.Phase()).To(Equal(mppi.PhaseGoalReached))
		Expect(x.Distance(dynamo.State{1, 0, 0})).To(BeNumerically("<", cfg.GoalThreshold))
		Expect(math.Abs(x[dynamo.Heading])).To(BeNumerically("<", 0.5))
	})

	It("reaches the goal on the first tick when already there", func() {
		start := dynamo.State{0, 0, math.Pi / 2}
		c, err := mppi.New(cfg, unicycle, start.Clone())
		Expect(err).NotTo(HaveOccurred())

		next, u, err := c.Step(start)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Phase()).To(Equal(mppi.PhaseGoalReached))
		Expect(c.GoalsReached()).To(Equal(1))
		Expect(u.IsZero()).To(BeTrue())
		Expect([]float64(next)).To(Equal([]float64(start)))

		next, u, err = c.Step(next)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Phase()).To(Equal(mppi.PhaseIdle))
		Expect(c.Done()).To(BeTrue())
		Expect(u.IsZero()).To(BeTrue())
		Expect([]float64(next)).To(Equal([]float64(start)))
	})

	It("never moves when the control limit is zero", func() {
		cfg.ControlLimit = 0
		c, err := mppi.New(cfg, diffDrive, dynamo.State{2, 1, 0})
		Expect(err).NotTo(HaveOccurred())

		start := dynamo.State{0, 0, 0.3}
		x := start.Clone()
		for i := 0; i < 20; i++ {
			var u dynamo.Control
			x, u, err = c.Step(x)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.IsZero()).To(BeTrue())
		}
		Expect([]float64(x)).To(Equal([]float64(start)))
		for _, p := range c.Controls() {
			Expect(p.Control.IsZero()).To(BeTrue())
		}
	})

	It("aborts the tick and keeps the nominal sequence when the rollout diverges", func() {
		c, err := mppi.New(cfg, dynamo.NewModel(divergent{}, integrators.NewEuler()), dynamo.State{1, 0, 0})
		Expect(err).NotTo(HaveOccurred())
		before := c.Nominal()

		u, err := c.Tick(dynamo.State{0, 0, 0})
		Expect(err).To(MatchError(dynamo.ErrUnstable))
		Expect(u.IsZero()).To(BeTrue())
		Expect(c.Nominal()).To(Equal(before))

		var tickErr *mppi.TickError
		Expect(err).To(BeAssignableToTypeOf(tickErr))
	})

	It("holds the previous command on malformed feedback", func() {
		c, err := mppi.New(cfg, diffDrive, dynamo.State{1, 0, 0})
		Expect(err).NotTo(HaveOccurred())

		first, err := c.Tick(dynamo.State{0, 0, 0})
		Expect(err).NotTo(HaveOccurred())

		held, err := c.Tick(dynamo.State{math.NaN(), 0, 0})
		Expect(err).To(MatchError(dynamo.ErrInvalidState))
		Expect(held).To(Equal(first))

		_, err = c.Tick(dynamo.State{0, 0})
		Expect(err).To(MatchError(dynamo.ErrInvalidState))
		Expect(c.Controls()).To(HaveLen(1))
		Expect(c.Ticks()).To(Equal(1))
	})

	It("applies a new goal only at the next tick boundary", func() {
		c, err := mppi.New(cfg, diffDrive, dynamo.State{1, 0, 0})
		Expect(err).NotTo(HaveOccurred())
		_, err = c.Tick(dynamo.State{0, 0, 0})
		Expect(err).NotTo(HaveOccurred())

		Expect(c.SetGoal(dynamo.State{-1, 2, 0})).To(Succeed())
		Expect([]float64(c.Goal())).To(Equal([]float64{1, 0, 0}))

		_, err = c.Tick(dynamo.State{0, 0, 0})
		Expect(err).NotTo(HaveOccurred())
		Expect([]float64(c.Goal())).To(Equal([]float64{-1, 2, 0}))
		Expect(c.Phase()).To(Equal(mppi.PhaseRunning))
	})

	It("rejects malformed goals", func() {
		c, err := mppi.New(cfg, diffDrive, dynamo.State{1, 0, 0})
		Expect(err).NotTo(HaveOccurred())

		Expect(c.SetGoal(dynamo.State{1, math.Inf(1), 0})).To(MatchError(dynamo.ErrInvalidState))
		Expect(c.SetWaypoints(nil)).To(MatchError(dynamo.ErrInvalidState))
	})

	It("moves through queued waypoints in waypoint mode", func() {
		cfg.Mode = mppi.ModeWaypoints
		start := dynamo.State{0, 0, 0}
		c, err := mppi.New(cfg, unicycle, start.Clone())
		Expect(err).NotTo(HaveOccurred())
		Expect(c.SetWaypoints([]dynamo.State{{0, 0, 0}, {0.5, 0, 0}})).To(Succeed())

		x, _, err := c.Step(start)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Phase()).To(Equal(mppi.PhaseGoalReached))
		Expect(c.Done()).To(BeFalse())

		_, _, err = c.Step(x)
		Expect(err).NotTo(HaveOccurred())
		Expect([]float64(c.Goal())).To(Equal([]float64{0.5, 0, 0}))
		Expect(c.Phase()).To(Equal(mppi.PhaseRunning))
		Expect(c.Waypoints()).To(BeEmpty())
	})

	It("keeps an append-only log with increasing timestamps", func() {
		c, err := mppi.New(cfg, diffDrive, dynamo.State{1, 0, 0})
		Expect(err).NotTo(HaveOccurred())

		x := dynamo.State{0, 0, 0}
		for i := 0; i < 5; i++ {
			x, _, err = c.Step(x)
			Expect(err).NotTo(HaveOccurred())
		}

		traj, ctrls := c.Trajectory(), c.Controls()
		Expect(traj).To(HaveLen(5))
		Expect(ctrls).To(HaveLen(5))
		for i := range traj {
			Expect(traj[i].Time).To(BeNumerically("~", float64(i)*cfg.Dt, 1e-12))
			Expect(ctrls[i].Time).To(Equal(traj[i].Time))
		}
		Expect([]float64(traj[0].State)).To(Equal([]float64{0, 0, 0}))
	})

	It("reproduces the same commands for the same seed", func() {
		run := func() []dynamo.Control {
			c, err := mppi.New(cfg, diffDrive, dynamo.State{1, 1, 0})
			Expect(err).NotTo(HaveOccurred())
			x := dynamo.State{0, 0, 0}
			for i := 0; i < 5; i++ {
				x, _, err = c.Step(x)
				Expect(err).NotTo(HaveOccurred())
			}
			return c.Controls().Controls()
		}
		Expect(run()).To(Equal(run()))
	})
})
