package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/mppinav/internal/dynamo"
)

// Unicycle takes linear velocity v (m/s) and angular velocity omega (rad/s).
type Unicycle struct{}

func NewUnicycle() *Unicycle {
	return &Unicycle{}
}

func (c *Unicycle) StateDim() int   { return dynamo.StateDim }
func (c *Unicycle) ControlDim() int { return dynamo.ControlDim }

func (c *Unicycle) Derive(x dynamo.State, u dynamo.Control) dynamo.State {
	theta := x[dynamo.Heading]
	v, omega := u[0], u[1]
	return dynamo.State{math.Cos(theta) * v, math.Sin(theta) * v, omega}
}

func (c *Unicycle) GetParams() map[string]float64 { return map[string]float64{} }

func (c *Unicycle) SetParam(name string, value float64) error {
	return fmt.Errorf("unknown param: %s", name)
}
