package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/mppinav/internal/dynamo"
)

const (
	DefaultWheelRadius = 0.033
	DefaultWheelBase   = 0.16
)

// DiffDrive models a differential-drive base. Controls are the left and
// right wheel angular velocities in rad/s.
type DiffDrive struct {
	WheelRadius float64
	WheelBase   float64
}

func NewDiffDrive() *DiffDrive {
	return &DiffDrive{
		WheelRadius: DefaultWheelRadius,
		WheelBase:   DefaultWheelBase,
	}
}

func (d *DiffDrive) StateDim() int   { return dynamo.StateDim }
func (d *DiffDrive) ControlDim() int { return dynamo.ControlDim }

func (d *DiffDrive) Derive(x dynamo.State, u dynamo.Control) dynamo.State {
	theta := x[dynamo.Heading]
	wl, wr := u[0], u[1]

	v := d.WheelRadius / 2 * (wl + wr)
	omega := d.WheelRadius / d.WheelBase * (wr - wl)

	return dynamo.State{v * math.Cos(theta), v * math.Sin(theta), omega}
}

// BodyTwist converts wheel rates into linear and angular body velocity.
func (d *DiffDrive) BodyTwist(u dynamo.Control) (v, omega float64) {
	return d.WheelRadius / 2 * (u[0] + u[1]), d.WheelRadius / d.WheelBase * (u[1] - u[0])
}

func (d *DiffDrive) GetParams() map[string]float64 {
	return map[string]float64{
		"wheel_radius": d.WheelRadius,
		"wheel_base":   d.WheelBase,
	}
}

func (d *DiffDrive) SetParam(name string, value float64) error {
	if value <= 0 {
		return fmt.Errorf("%s must be positive, got %f", name, value)
	}
	switch name {
	case "wheel_radius":
		d.WheelRadius = value
	case "wheel_base":
		d.WheelBase = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
