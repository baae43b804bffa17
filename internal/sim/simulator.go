package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/san-kum/mppinav/internal/dynamo"
)

var ErrInvalidConfig = errors.New("sim: invalid configuration")

type Simulator struct {
	plant      Plant
	controller Controller
	metrics    []Metric
	observers  []Observer
	logger     *slog.Logger
}

func New(plant Plant, controller Controller) *Simulator {
	return &Simulator{
		plant:      plant,
		controller: controller,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		logger:     slog.Default(),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Run closes the loop from x0 until the controller has no goal left,
// MaxTicks is hit, or ctx is cancelled. The returned result holds
// everything recorded up to that point, also on error.
func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		States:   make([]dynamo.State, 0, cfg.MaxTicks+1),
		Controls: make([]dynamo.Control, 0, cfg.MaxTicks),
		Times:    make([]float64, 0, cfg.MaxTicks+1),
		Metrics:  make(map[string]float64),
		Errors:   make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0
	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	err := s.loop(ctx, x, t, cfg, result)

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, err
}

func (s *Simulator) loop(ctx context.Context, x dynamo.State, t float64, cfg Config, result *Result) error {
	for i := 0; i < cfg.MaxTicks; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		u, tickErr := s.controller.Tick(x)
		if tickErr != nil {
			result.Errors = append(result.Errors, SimError{Tick: i, Time: t, Message: "controller tick", Err: tickErr})
			if cfg.StopOnError {
				return tickErr
			}
		}

		for _, m := range s.metrics {
			m.Observe(x, u, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, u, t)
		}

		newX := s.plant.Step(x, u, cfg.Dt)
		if !newX.IsValid() {
			err := SimError{Tick: i, Time: t, Message: "invalid plant state", Err: dynamo.ErrUnstable}
			result.Errors = append(result.Errors, err)
			return err
		}

		x = newX
		t += cfg.Dt
		result.Ticks++
		result.States = append(result.States, x.Clone())
		result.Controls = append(result.Controls, u.Clone())
		result.Times = append(result.Times, t)

		if s.controller.Done() {
			result.Done = true
			s.logger.Info("simulation finished", slog.Int("ticks", result.Ticks), slog.Float64("time", t))
			return nil
		}
	}
	s.logger.Warn("simulation hit tick limit", slog.Int("max_ticks", cfg.MaxTicks))
	return nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.MaxTicks <= 0 {
		return fmt.Errorf("%w: max ticks must be positive, got %d", ErrInvalidConfig, cfg.MaxTicks)
	}
	if s.plant == nil || s.controller == nil {
		return fmt.Errorf("%w: simulator needs a plant and a controller", ErrInvalidConfig)
	}
	return nil
}

// RunWithCallback closes the loop like Run but hands every step to
// callback instead of recording it. Returning false stops the run.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 dynamo.State, cfg Config, callback func(dynamo.State, dynamo.Control, float64) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	x := x0.Clone()
	t := 0.0
	for i := 0; i < cfg.MaxTicks && !s.controller.Done(); i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		u, err := s.controller.Tick(x)
		if err != nil && cfg.StopOnError {
			return err
		}

		if !callback(x, u, t) {
			return nil
		}

		x = s.plant.Step(x, u, cfg.Dt)
		t += cfg.Dt

		if !x.IsValid() {
			return SimError{Tick: i, Time: t, Message: "invalid plant state", Err: dynamo.ErrUnstable}
		}
	}
	return nil
}
