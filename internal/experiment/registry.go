package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/mppinav/internal/analysis"
	"github.com/san-kum/mppinav/internal/config"
	"github.com/san-kum/mppinav/internal/dynamo"
	"github.com/san-kum/mppinav/internal/integrators"
	"github.com/san-kum/mppinav/internal/metrics"
	"github.com/san-kum/mppinav/internal/physics"
	"github.com/san-kum/mppinav/internal/sim"
)

type Registry struct {
	models      map[string]func(config.WheelConfig) dynamo.System
	integrators map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]func(config.WheelConfig) dynamo.System),
		integrators: make(map[string]func() dynamo.Integrator),
	}

	r.models["diff_drive"] = func(w config.WheelConfig) dynamo.System {
		return &physics.DiffDrive{WheelRadius: w.Radius, WheelBase: w.Base}
	}
	r.models["unicycle"] = func(config.WheelConfig) dynamo.System { return physics.NewUnicycle() }

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }

	return r
}

func (r *Registry) GetModel(name string, wheel config.WheelConfig) (dynamo.System, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(wheel), nil
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

// BuildModel resolves the kinematics and integrator named in cfg.
func (r *Registry) BuildModel(cfg *config.Config) (dynamo.Model, error) {
	sys, err := r.GetModel(cfg.Model, cfg.Wheel)
	if err != nil {
		return dynamo.Model{}, err
	}
	integ, err := r.GetIntegrator(cfg.Integrator)
	if err != nil {
		return dynamo.Model{}, err
	}
	return dynamo.NewModel(sys, integ), nil
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics measures progress towards the final goal and flags
// command chatter in the upper half of the spectrum.
func (r *Registry) DefaultMetrics(finalGoal dynamo.State, dt float64) []sim.Metric {
	return []sim.Metric{
		analysis.NewChatter(dt, 1/(4*dt)),
		metrics.NewControlEffort(),
		metrics.NewPathLength(),
		metrics.NewGoalDistance(finalGoal),
		metrics.NewHeadingError(finalGoal),
	}
}
