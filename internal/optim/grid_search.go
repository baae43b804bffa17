package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/mppinav/internal/config"
	"github.com/san-kum/mppinav/internal/experiment"
)

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search evaluates every grid point and returns the parameters that
// minimize metricName. Points whose experiment fails are skipped; the
// search only errors when no point succeeds or ctx is cancelled.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (map[string]float64, float64, []Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, nil, fmt.Errorf("grid search: %d names for %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	var trials []Trial

	err := g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, metricName, &best, &bestParams, &trials)
	if err != nil {
		return nil, 0, trials, err
	}
	if bestParams == nil {
		return nil, 0, trials, fmt.Errorf("grid search: no successful trial for metric %q", metricName)
	}
	return bestParams, best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
	best *float64,
	bestParams *map[string]float64,
	trials *[]Trial,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		trial := Trial{Params: current, Value: math.NaN()}
		defer func() { *trials = append(*trials, trial) }()

		exp, err := buildExperiment(current)
		if err != nil {
			trial.Err = err
			return nil
		}

		result, err := exp.Run(ctx)
		if err != nil {
			trial.Err = err
			return nil
		}

		val, ok := result.Metrics[metricName]
		if !ok {
			trial.Err = fmt.Errorf("metric %q not recorded", metricName)
			return nil
		}
		trial.Value = val
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, buildExperiment, metricName, best, bestParams, trials); err != nil {
			return err
		}
	}
	return nil
}

// Tunable lists the controller parameters ApplyParams understands.
var Tunable = []string{"temperature", "noise_variance", "samples", "horizon", "control_limit"}

// ApplyParams writes grid values into a copy of base.
func ApplyParams(base *config.Config, params map[string]float64) (*config.Config, error) {
	cfg := base.Clone()
	for name, v := range params {
		switch name {
		case "temperature":
			cfg.Controller.Temperature = v
		case "noise_variance":
			cfg.Controller.NoiseVariance = []float64{v, v}
		case "samples":
			cfg.Controller.Samples = int(v)
		case "horizon":
			cfg.Controller.Horizon = int(v)
		case "control_limit":
			cfg.Controller.ControlLimit = v
		default:
			return nil, fmt.Errorf("unknown tunable parameter: %s", name)
		}
	}
	return cfg, cfg.Validate()
}
