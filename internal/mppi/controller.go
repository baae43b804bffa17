package mppi

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/mppinav/internal/dynamo"
)

type Phase int

const (
	PhaseInitialized Phase = iota
	PhaseRunning
	PhaseGoalReached
	PhaseIdle
)

func (p Phase) String() string {
	switch p {
	case PhaseInitialized:
		return "initialized"
	case PhaseRunning:
		return "running"
	case PhaseGoalReached:
		return "goal_reached"
	case PhaseIdle:
		return "idle"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

type Option func(*Controller)

// WithLogger sets the logger used for phase transitions and tick failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// Controller is the receding-horizon loop. It owns the nominal control
// sequence and the logs; nothing else writes them.
type Controller struct {
	cfg     Config
	model   dynamo.Model
	sampler *Sampler
	updater *Updater
	logger  *slog.Logger

	phase     Phase
	goal      dynamo.State
	waypoints []dynamo.State
	nominal   []dynamo.Control
	lastCmd   dynamo.Control
	tick      int
	reached   int

	trajectory TrajectoryLog
	controls   ControlLog

	mu         sync.Mutex
	pending    []dynamo.State
	hasPending bool
}

// New validates cfg and returns a controller heading for goal.
func New(cfg Config, model dynamo.Model, goal dynamo.State, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := checkGoal(goal); err != nil {
		return nil, err
	}
	if model.System == nil || model.Integrator == nil {
		return nil, fmt.Errorf("%w: model needs a system and an integrator", ErrInvalidConfig)
	}
	if model.System.StateDim() != dynamo.StateDim || model.System.ControlDim() != dynamo.ControlDim {
		return nil, fmt.Errorf("%w: model is %dx%d, want %dx%d", dynamo.ErrDimensionMismatch,
			model.System.StateDim(), model.System.ControlDim(), dynamo.StateDim, dynamo.ControlDim)
	}

	cfg = cfg.Clone()
	updater, err := NewUpdater(cfg)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		cfg:     cfg,
		model:   model,
		sampler: NewSampler(cfg, model, NewCostEvaluator(cfg)),
		updater: updater,
		logger:  slog.Default(),
		lastCmd: make(dynamo.Control, dynamo.ControlDim),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.reset(goal.Clone(), nil)
	return c, nil
}

func checkGoal(goal dynamo.State) error {
	if len(goal) != dynamo.StateDim || !goal.IsValid() {
		return fmt.Errorf("%w: goal %v", dynamo.ErrInvalidState, goal)
	}
	return nil
}

// reset targets goal with a zeroed nominal sequence. Logs and the clock
// keep running across goals.
func (c *Controller) reset(goal dynamo.State, rest []dynamo.State) {
	c.goal = goal
	c.waypoints = rest
	c.nominal = make([]dynamo.Control, c.cfg.Horizon)
	for t := range c.nominal {
		c.nominal[t] = make(dynamo.Control, dynamo.ControlDim)
	}
	c.setPhase(PhaseInitialized)
}

func (c *Controller) setPhase(p Phase) {
	if c.phase == p {
		return
	}
	c.logger.Info("mppi phase change",
		slog.String("from", c.phase.String()),
		slog.String("to", p.String()),
		slog.Int("tick", c.tick),
		slog.Any("goal", []float64(c.goal)),
	)
	c.phase = p
}

// SetGoal replaces the current goal and clears queued waypoints. It takes
// effect at the start of the next tick.
func (c *Controller) SetGoal(goal dynamo.State) error {
	return c.SetWaypoints([]dynamo.State{goal})
}

// SetWaypoints replaces the goal queue; the first entry becomes the active
// goal at the start of the next tick.
func (c *Controller) SetWaypoints(goals []dynamo.State) error {
	if len(goals) == 0 {
		return fmt.Errorf("%w: empty waypoint list", dynamo.ErrInvalidState)
	}
	queue := make([]dynamo.State, len(goals))
	for i, g := range goals {
		if err := checkGoal(g); err != nil {
			return err
		}
		queue[i] = g.Clone()
	}

	c.mu.Lock()
	c.pending = queue
	c.hasPending = true
	c.mu.Unlock()
	return nil
}

func (c *Controller) applyPending() {
	c.mu.Lock()
	queue, ok := c.pending, c.hasPending
	c.pending, c.hasPending = nil, false
	c.mu.Unlock()

	if ok {
		c.reset(queue[0], queue[1:])
	}
}

// leaveGoal runs at the tick after a goal was reached.
func (c *Controller) leaveGoal() {
	if c.cfg.Mode == ModeWaypoints && len(c.waypoints) > 0 {
		c.reset(c.waypoints[0], c.waypoints[1:])
		return
	}
	c.setPhase(PhaseIdle)
}

func (c *Controller) now() float64 {
	return float64(c.tick) * c.cfg.Dt
}

func (c *Controller) record(x dynamo.State, u dynamo.Control) {
	t := c.now()
	c.trajectory = append(c.trajectory, TrajectoryPoint{State: x.Clone(), Time: t})
	c.controls = append(c.controls, ControlPoint{Control: u.Clone(), Time: t})
	c.lastCmd = u.Clone()
	c.tick++
}

// Tick runs one control cycle for the measured state x and returns the
// command to execute.
//
// On error the returned control is still the one to apply: the held
// previous command for malformed feedback, the zero control when the
// rollout diverged, and the first control of the unmodified nominal
// sequence when the weights failed to normalize.
func (c *Controller) Tick(x dynamo.State) (dynamo.Control, error) {
	c.applyPending()

	if len(x) != dynamo.StateDim || !x.IsValid() {
		err := &TickError{Tick: c.tick, Phase: c.phase, Err: dynamo.ErrInvalidState}
		c.logger.Warn("mppi tick skipped", slog.Any("error", err))
		return c.lastCmd.Clone(), err
	}
	x = x.Clone()
	x[dynamo.Heading] = dynamo.WrapAngle(x[dynamo.Heading])

	if c.phase == PhaseGoalReached {
		c.leaveGoal()
	}

	zero := make(dynamo.Control, dynamo.ControlDim)
	if c.phase == PhaseIdle {
		c.record(x, zero)
		return zero, nil
	}

	if x.Distance(c.goal) < c.cfg.GoalThreshold {
		c.setPhase(PhaseGoalReached)
		c.reached++
		c.record(x, zero)
		return zero, nil
	}
	c.setPhase(PhaseRunning)

	rollouts, err := c.sampler.Rollout(x, c.nominal, c.goal)
	if err != nil {
		tickErr := &TickError{Tick: c.tick, Phase: c.phase, Err: err}
		c.logger.Warn("mppi rollout aborted", slog.Any("error", tickErr))
		c.record(x, zero)
		return zero, tickErr
	}

	var tickErr error
	next, weights, err := c.updater.Apply(c.nominal, rollouts)
	if err != nil {
		tickErr = &TickError{Tick: c.tick, Phase: c.phase, Err: err}
		c.logger.Warn("mppi update rejected, keeping nominal", slog.Any("error", tickErr))
	} else {
		c.nominal = next
		c.debugTick(rollouts, weights)
	}

	cmd := c.nominal[0].Clone()
	c.record(x, cmd)
	ShiftHorizon(c.nominal)
	return cmd, tickErr
}

func (c *Controller) debugTick(r *Rollouts, w Weights) {
	totals := make([]float64, r.Samples)
	for i := range totals {
		totals[i] = r.TotalCost(i)
	}
	c.logger.Debug("mppi tick",
		slog.Int("tick", c.tick),
		slog.Float64("min_cost", floats.Min(totals)),
		slog.Float64("max_cost", floats.Max(totals)),
		slog.Float64("effective_samples", w.EffectiveSamples(0)),
	)
}

// Step runs Tick and applies the command to the controller's own model,
// returning the resulting state. For malformed x the input is returned.
func (c *Controller) Step(x dynamo.State) (dynamo.State, dynamo.Control, error) {
	u, err := c.Tick(x)
	if errors.Is(err, dynamo.ErrInvalidState) {
		return x, u, err
	}
	return c.model.Step(x, u, c.cfg.Dt), u, err
}

func (c *Controller) Phase() Phase        { return c.phase }
func (c *Controller) Goal() dynamo.State  { return c.goal.Clone() }
func (c *Controller) Config() Config      { return c.cfg.Clone() }
func (c *Controller) Ticks() int          { return c.tick }
func (c *Controller) GoalsReached() int   { return c.reached }
func (c *Controller) Model() dynamo.Model { return c.model }

// Done reports whether the controller has nothing left to drive towards.
func (c *Controller) Done() bool {
	switch c.phase {
	case PhaseIdle:
		return true
	case PhaseGoalReached:
		return c.cfg.Mode != ModeWaypoints || len(c.waypoints) == 0
	}
	return false
}

// Waypoints returns the goals queued after the active one.
func (c *Controller) Waypoints() []dynamo.State {
	out := make([]dynamo.State, len(c.waypoints))
	for i, w := range c.waypoints {
		out[i] = w.Clone()
	}
	return out
}

// Nominal returns a copy of the current nominal control sequence.
func (c *Controller) Nominal() []dynamo.Control {
	out := make([]dynamo.Control, len(c.nominal))
	for t, u := range c.nominal {
		out[t] = u.Clone()
	}
	return out
}

func (c *Controller) Trajectory() TrajectoryLog {
	return append(TrajectoryLog(nil), c.trajectory...)
}

func (c *Controller) Controls() ControlLog {
	return append(ControlLog(nil), c.controls...)
}
