package dynamo

import (
	"math"
)

// Pose layout.
const (
	X = iota
	Y
	Heading

	StateDim   = 3
	ControlDim = 2
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Distance is the planar distance between two poses, ignoring heading.
func (s State) Distance(other State) float64 {
	return math.Hypot(s[X]-other[X], s[Y]-other[Y])
}

// Error returns s - goal with the heading component wrapped.
func (s State) Error(goal State) State {
	e := make(State, len(s))
	for i := range s {
		e[i] = s[i] - goal[i]
	}
	if len(e) > Heading {
		e[Heading] = WrapAngle(e[Heading])
	}
	return e
}

type Control []float64

func (u Control) Clone() Control {
	c := make(Control, len(u))
	copy(c, u)
	return c
}

// Clip bounds every component to [-limit, limit] in place.
func (u Control) Clip(limit float64) Control {
	for i, v := range u {
		u[i] = Clamp(v, -limit, limit)
	}
	return u
}

func (u Control) IsZero() bool {
	for _, v := range u {
		if v != 0 {
			return false
		}
	}
	return true
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// WrapAngle maps theta into (-pi, pi].
func WrapAngle(theta float64) float64 {
	return theta - (math.Ceil((theta+math.Pi)/(2*math.Pi))-1)*2*math.Pi
}

type System interface {
	Derive(x State, u Control) State
	StateDim() int
	ControlDim() int
}

type Integrator interface {
	Step(dyn System, x State, u Control, dt float64) State
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
