package mppi

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/mppinav/internal/dynamo"
	"github.com/san-kum/mppinav/internal/filter"
)

// Weights holds the normalized importance weights, indexed [step][sample].
type Weights [][]float64

// EffectiveSamples is 1/sum(w^2) at step t: N for uniform weights, 1 when a
// single sample carries all the mass.
func (w Weights) EffectiveSamples(t int) float64 {
	return 1 / floats.Dot(w[t], w[t])
}

// Updater folds weighted perturbations into the nominal sequence.
type Updater struct {
	Temperature float64
	Epsilon     float64
	Limit       float64
	Smoother    *filter.SavGol // nil disables smoothing
}

func NewUpdater(cfg Config) (*Updater, error) {
	u := &Updater{
		Temperature: cfg.Temperature,
		Epsilon:     cfg.WeightEpsilon,
		Limit:       cfg.ControlLimit,
	}
	if cfg.NoSmoothing {
		return u, nil
	}

	window := filter.OddWindow(cfg.Horizon - 1)
	if window <= cfg.SmoothDegree {
		return u, nil
	}
	sg, err := filter.NewSavGol(window, cfg.SmoothDegree)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	u.Smoother = sg
	return u, nil
}

// CostToGo returns, for every step t and sample i, the sum of the sample's
// stage costs from t to the end of the horizon. Indexed [step][sample].
func CostToGo(r *Rollouts) [][]float64 {
	ctg := make([][]float64, r.Horizon)
	for t := range ctg {
		ctg[t] = make([]float64, r.Samples)
	}
	for i := 0; i < r.Samples; i++ {
		acc := 0.0
		for t := r.Horizon - 1; t >= 0; t-- {
			acc += r.Cost(i, t)
			ctg[t][i] = acc
		}
	}
	return ctg
}

// Weights turns cost-to-go into per-step normalized importance weights.
func (u *Updater) Weights(ctg [][]float64) (Weights, error) {
	if !(u.Temperature > 0) {
		return nil, fmt.Errorf("%w: %w: temperature %v", ErrDegenerateWeights, ErrInvalidConfig, u.Temperature)
	}

	w := make(Weights, len(ctg))
	for t, costs := range ctg {
		minCost := floats.Min(costs)
		wt := make([]float64, len(costs))
		for i, c := range costs {
			wt[i] = math.Exp(-(c-minCost)/u.Temperature) + u.Epsilon
		}

		sum := floats.Sum(wt)
		if !(sum > 0) || math.IsInf(sum, 0) {
			return nil, fmt.Errorf("%w: step %d sums to %v", ErrDegenerateWeights, t, sum)
		}
		floats.Scale(1/sum, wt)
		w[t] = wt
	}
	return w, nil
}

// Apply returns the updated sequence and the weights used. The input
// sequence is not modified.
func (u *Updater) Apply(nominal []dynamo.Control, r *Rollouts) ([]dynamo.Control, Weights, error) {
	w, err := u.Weights(CostToGo(r))
	if err != nil {
		return nil, nil, err
	}

	next := make([]dynamo.Control, len(nominal))
	for t := range nominal {
		next[t] = nominal[t].Clone()
		for i := 0; i < r.Samples; i++ {
			floats.AddScaled(next[t], w[t][i], r.NoiseAt(i, t))
		}
		next[t].Clip(u.Limit)
	}

	if u.Smoother != nil {
		if err := u.smooth(next); err != nil {
			return nil, nil, err
		}
	}
	return next, w, nil
}

// smooth filters each control dimension across the horizon, then re-clips.
func (u *Updater) smooth(seq []dynamo.Control) error {
	if len(seq) == 0 {
		return nil
	}
	series := make([]float64, len(seq))
	for j := range seq[0] {
		for t := range seq {
			series[t] = seq[t][j]
		}
		out, err := u.Smoother.Apply(series)
		if err != nil {
			return err
		}
		for t := range seq {
			seq[t][j] = dynamo.Clamp(out[t], -u.Limit, u.Limit)
		}
	}
	return nil
}

// ShiftHorizon moves every control one step earlier in place and zeroes the
// last slot.
func ShiftHorizon(seq []dynamo.Control) {
	if len(seq) == 0 {
		return
	}
	last := seq[0]
	copy(seq, seq[1:])
	for j := range last {
		last[j] = 0
	}
	seq[len(seq)-1] = last
}
