package sim

import (
	"fmt"

	"github.com/san-kum/mppinav/internal/dynamo"
)

// Plant advances the simulated robot. dynamo.Model satisfies it.
type Plant interface {
	Step(x dynamo.State, u dynamo.Control, dt float64) dynamo.State
}

// Controller is the closed-loop policy. *mppi.Controller satisfies it.
type Controller interface {
	Tick(x dynamo.State) (dynamo.Control, error)
	Done() bool
}

type Metric interface {
	Name() string
	Observe(x dynamo.State, u dynamo.Control, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x dynamo.State, u dynamo.Control, t float64)
}

type Config struct {
	Dt       float64 `yaml:"dt" json:"dt"`
	MaxTicks int     `yaml:"max_ticks" json:"max_ticks"`
	// StopOnError ends the run at the first failed tick instead of
	// applying the fallback command and carrying on.
	StopOnError bool `yaml:"stop_on_error" json:"stop_on_error"`
}

type Result struct {
	States   []dynamo.State
	Controls []dynamo.Control
	Times    []float64
	Metrics  map[string]float64
	Ticks    int
	Done     bool
	Errors   []error
}

// Final returns the last recorded state.
func (r *Result) Final() dynamo.State {
	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}

type SimError struct {
	Tick    int
	Time    float64
	Message string
	Err     error
}

func (e SimError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sim error at tick %d (t=%.4f): %s: %v", e.Tick, e.Time, e.Message, e.Err)
	}
	return fmt.Sprintf("sim error at tick %d (t=%.4f): %s", e.Tick, e.Time, e.Message)
}

func (e SimError) Unwrap() error { return e.Err }
