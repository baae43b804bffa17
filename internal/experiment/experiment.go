package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/san-kum/mppinav/internal/config"
	"github.com/san-kum/mppinav/internal/controllers"
	"github.com/san-kum/mppinav/internal/dynamo"
	"github.com/san-kum/mppinav/internal/mppi"
	"github.com/san-kum/mppinav/internal/physics"
	"github.com/san-kum/mppinav/internal/sim"
)

var ErrNotMPPI = errors.New("experiment: policy is not mppi")

// Policy is a closed-loop controller that tracks a goal queue.
type Policy interface {
	sim.Controller
	GoalsReached() int
	Goal() dynamo.State
}

// Experiment is one fully wired scenario: plant, policy and simulator.
type Experiment struct {
	cfg       *config.Config
	model     dynamo.Model
	policy    Policy
	mppi      *mppi.Controller
	simulator *sim.Simulator
}

func New(cfg *config.Config, logger *slog.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	reg := NewRegistry()
	model, err := reg.BuildModel(cfg)
	if err != nil {
		return nil, err
	}

	e := &Experiment{cfg: cfg, model: model}
	goals := cfg.GoalStates()

	switch cfg.Policy {
	case config.PolicyPID:
		drive, _ := model.System.(*physics.DiffDrive)
		cc := cfg.Controller
		e.policy, err = controllers.NewGoToGoal(goals, drive, cc.ControlLimit, cc.GoalThreshold, cc.Dt)
		if err != nil {
			return nil, fmt.Errorf("build baseline: %w", err)
		}
	default:
		ctrl, err := mppi.New(cfg.ControllerConfig(), model, goals[0], mppi.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("build controller: %w", err)
		}
		if len(goals) > 1 {
			if err := ctrl.SetWaypoints(goals); err != nil {
				return nil, err
			}
		}
		e.mppi, e.policy = ctrl, ctrl
	}

	e.simulator = sim.New(model, e.policy)
	e.simulator.SetLogger(logger)
	for _, m := range reg.DefaultMetrics(goals[len(goals)-1], cfg.Controller.Dt) {
		e.simulator.AddMetric(m)
	}
	return e, nil
}

func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{Dt: e.cfg.Controller.Dt, MaxTicks: e.cfg.MaxTicks}
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	return e.simulator.Run(ctx, e.cfg.StartState(), e.SimConfig())
}

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) Model() dynamo.Model { return e.model }

func (e *Experiment) Policy() Policy { return e.policy }

// Controller returns the sampling controller, or ErrNotMPPI for the
// baseline policy.
func (e *Experiment) Controller() (*mppi.Controller, error) {
	if e.mppi == nil {
		return nil, ErrNotMPPI
	}
	return e.mppi, nil
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}
