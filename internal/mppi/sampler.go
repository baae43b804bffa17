package mppi

import (
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/mppinav/internal/dynamo"
)

// minChunk keeps tiny batches on the calling goroutine.
const minChunk = 16

// Rollouts is one tick's sample batch. Sample i at step t lives at row
// i*Horizon+t of Controls and Noise, and row i*(Horizon+1)+t of States.
type Rollouts struct {
	Samples int
	Horizon int

	Controls dynamo.Batch // applied (clipped) controls
	Noise    dynamo.Batch // applied - nominal, i.e. noise after clipping
	States   dynamo.Batch
	Costs    []float64 // stage costs, terminal cost folded into the last step
}

func newRollouts(samples, horizon int) *Rollouts {
	return &Rollouts{
		Samples:  samples,
		Horizon:  horizon,
		Controls: dynamo.NewBatch(samples*horizon, dynamo.ControlDim),
		Noise:    dynamo.NewBatch(samples*horizon, dynamo.ControlDim),
		States:   dynamo.NewBatch(samples*(horizon+1), dynamo.StateDim),
		Costs:    make([]float64, samples*horizon),
	}
}

func (r *Rollouts) Control(i, t int) dynamo.Control {
	return dynamo.Control(r.Controls.Row(i*r.Horizon + t))
}

func (r *Rollouts) NoiseAt(i, t int) dynamo.Control {
	return dynamo.Control(r.Noise.Row(i*r.Horizon + t))
}

// State returns the state of sample i after t steps; t = 0 is the start.
func (r *Rollouts) State(i, t int) dynamo.State {
	return dynamo.State(r.States.Row(i*(r.Horizon+1) + t))
}

func (r *Rollouts) Cost(i, t int) float64 {
	return r.Costs[i*r.Horizon+t]
}

// TotalCost is the summed cost of sample i over the horizon.
func (r *Rollouts) TotalCost(i int) float64 {
	sum := 0.0
	for _, c := range r.Costs[i*r.Horizon : (i+1)*r.Horizon] {
		sum += c
	}
	return sum
}

// Sampler draws perturbations around a nominal control sequence and rolls
// them out. It owns its random source; draws are serial so results do not
// depend on the number of workers.
type Sampler struct {
	model   dynamo.Model
	cost    *CostEvaluator
	samples int
	horizon int
	dt      float64
	limit   float64
	workers int
	noise   []distuv.Normal
}

func NewSampler(cfg Config, model dynamo.Model, cost *CostEvaluator) *Sampler {
	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	src := rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)
	noise := make([]distuv.Normal, len(cfg.NoiseVariance))
	for j, v := range cfg.NoiseVariance {
		noise[j] = distuv.Normal{Mu: 0, Sigma: math.Sqrt(v), Src: src}
	}

	return &Sampler{
		model:   model,
		cost:    cost,
		samples: cfg.Samples,
		horizon: cfg.Horizon,
		dt:      cfg.Dt,
		limit:   cfg.ControlLimit,
		workers: workers,
		noise:   noise,
	}
}

// draw fills one noise row per (sample, step), step-major.
func (s *Sampler) draw() dynamo.Batch {
	raw := dynamo.NewBatch(s.samples*s.horizon, dynamo.ControlDim)
	for t := 0; t < s.horizon; t++ {
		for i := 0; i < s.samples; i++ {
			row := raw.Row(i*s.horizon + t)
			for j := range row {
				row[j] = s.noise[j].Rand()
			}
		}
	}
	return raw
}

// Rollout samples the perturbed sequences, propagates them from x0 and
// scores every step against goal.
func (s *Sampler) Rollout(x0 dynamo.State, nominal []dynamo.Control, goal dynamo.State) (*Rollouts, error) {
	if len(nominal) != s.horizon {
		return nil, fmt.Errorf("%w: nominal has %d steps, horizon is %d", dynamo.ErrDimensionMismatch, len(nominal), s.horizon)
	}

	raw := s.draw()
	r := newRollouts(s.samples, s.horizon)

	err := dynamo.ParallelFor(s.samples, s.workers, minChunk, func(start, end int) error {
		return s.rolloutChunk(r, raw, x0, nominal, goal, start, end)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Sampler) rolloutChunk(r *Rollouts, raw dynamo.Batch, x0 dynamo.State, nominal []dynamo.Control, goal dynamo.State, start, end int) error {
	n := end - start
	states := dynamo.NewBatch(n, dynamo.StateDim)
	states.Fill(x0)
	for k := 0; k < n; k++ {
		copy(r.State(start+k, 0), x0)
	}

	for t := 0; t < s.horizon; t++ {
		controls := dynamo.NewBatch(n, dynamo.ControlDim)
		for k := 0; k < n; k++ {
			i := start + k
			u := controls.Row(k)
			eps := r.NoiseAt(i, t)
			for j := range u {
				u[j] = dynamo.Clamp(nominal[t][j]+raw.Row(i*s.horizon + t)[j], -s.limit, s.limit)
				eps[j] = u[j] - nominal[t][j]
			}
			copy(r.Control(i, t), u)
		}

		states = s.model.Advance(states, controls, s.dt)

		for k := 0; k < n; k++ {
			i := start + k
			x := dynamo.State(states.Row(k))
			if !x.IsValid() {
				return &dynamo.SimulationError{Step: t, Sample: i, State: x.Clone(), Wrapped: dynamo.ErrUnstable}
			}
			copy(r.State(i, t+1), x)

			c := s.cost.Stage(x, goal, r.Control(i, t), nominal[t], r.NoiseAt(i, t))
			if t == s.horizon-1 {
				c += s.cost.Terminal(x, goal)
			}
			if !finite(c) {
				return &dynamo.SimulationError{Step: t, Sample: i, State: x.Clone(), Wrapped: dynamo.ErrUnstable}
			}
			r.Costs[i*s.horizon+t] = c
		}
	}
	return nil
}
