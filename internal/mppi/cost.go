package mppi

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/mppinav/internal/dynamo"
)

// CostEvaluator scores a rollout step by step. Weights are diagonal and
// immutable once built.
type CostEvaluator struct {
	Q, R, P  *mat.DiagDense
	SigmaInv *mat.DiagDense
	Lambda   float64
}

func NewCostEvaluator(cfg Config) *CostEvaluator {
	inv := make([]float64, len(cfg.NoiseVariance))
	for i, v := range cfg.NoiseVariance {
		// zero-variance dimensions never perturb, so they carry no correction
		if v > 0 {
			inv[i] = 1 / v
		}
	}

	return &CostEvaluator{
		Q:        mat.NewDiagDense(len(cfg.Q), append([]float64(nil), cfg.Q...)),
		R:        mat.NewDiagDense(len(cfg.R), append([]float64(nil), cfg.R...)),
		P:        mat.NewDiagDense(len(cfg.P), append([]float64(nil), cfg.P...)),
		SigmaInv: mat.NewDiagDense(len(inv), inv),
		Lambda:   cfg.Temperature,
	}
}

// Stage returns 1/2 e'Qe + 1/2 v'Rv + lambda u'Sigma^-1 eps for the state x
// reached after applying v = u + eps.
func (c *CostEvaluator) Stage(x, goal dynamo.State, applied, nominal, eps dynamo.Control) float64 {
	e := mat.NewVecDense(len(x), x.Error(goal))
	v := mat.NewVecDense(len(applied), applied)
	u := mat.NewVecDense(len(nominal), nominal)
	n := mat.NewVecDense(len(eps), eps)

	return 0.5*mat.Inner(e, c.Q, e) + 0.5*mat.Inner(v, c.R, v) + c.Lambda*mat.Inner(u, c.SigmaInv, n)
}

// Terminal returns e'Pe for the final state of a rollout.
func (c *CostEvaluator) Terminal(x, goal dynamo.State) float64 {
	e := mat.NewVecDense(len(x), x.Error(goal))
	return mat.Inner(e, c.P, e)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
