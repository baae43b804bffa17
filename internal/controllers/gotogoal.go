package controllers

import (
	"fmt"
	"math"

	"github.com/san-kum/mppinav/internal/dynamo"
	"github.com/san-kum/mppinav/internal/physics"
)

// GoToGoal is the classical baseline: one PID on distance for forward
// speed, one on bearing error for turn rate. With a DiffDrive attached it
// emits wheel speeds, otherwise (v, omega).
type GoToGoal struct {
	Linear    *PID
	Angular   *PID
	Drive     *physics.DiffDrive
	Limit     float64
	Threshold float64
	Dt        float64

	goals   []dynamo.State
	reached int
	done    bool
}

func NewGoToGoal(goals []dynamo.State, drive *physics.DiffDrive, limit, threshold, dt float64) (*GoToGoal, error) {
	if len(goals) == 0 {
		return nil, fmt.Errorf("%w: no goals", dynamo.ErrInvalidState)
	}
	queue := make([]dynamo.State, len(goals))
	for i, g := range goals {
		if len(g) != dynamo.StateDim || !g.IsValid() {
			return nil, fmt.Errorf("%w: goal %v", dynamo.ErrInvalidState, g)
		}
		queue[i] = g.Clone()
	}
	return &GoToGoal{
		Linear:    NewPID(1.0, 0, 0.05),
		Angular:   NewPID(4.0, 0, 0.1),
		Drive:     drive,
		Limit:     limit,
		Threshold: threshold,
		Dt:        dt,
		goals:     queue,
	}, nil
}

func (g *GoToGoal) Tick(x dynamo.State) (dynamo.Control, error) {
	zero := make(dynamo.Control, dynamo.ControlDim)
	if len(x) != dynamo.StateDim || !x.IsValid() {
		return zero, dynamo.ErrInvalidState
	}
	if g.done {
		return zero, nil
	}

	goal := g.goals[0]
	dist := x.Distance(goal)
	if dist < g.Threshold {
		g.reached++
		g.goals = g.goals[1:]
		g.done = len(g.goals) == 0
		g.Linear.Reset()
		g.Angular.Reset()
		return zero, nil
	}

	bearing := math.Atan2(goal[dynamo.Y]-x[dynamo.Y], goal[dynamo.X]-x[dynamo.X])
	headingErr := dynamo.WrapAngle(bearing - x[dynamo.Heading])

	v := g.Linear.Update(dist, g.Dt) * math.Max(math.Cos(headingErr), 0)
	omega := g.Angular.Update(headingErr, g.Dt)

	if g.Drive == nil {
		return dynamo.Control{v, omega}.Clip(g.Limit), nil
	}
	return g.wheels(v, omega), nil
}

// wheels inverts the differential-drive kinematics and scales both wheels
// down together so the turn radius survives saturation.
func (g *GoToGoal) wheels(v, omega float64) dynamo.Control {
	half := omega * g.Drive.WheelBase / 2
	u := dynamo.Control{(v - half) / g.Drive.WheelRadius, (v + half) / g.Drive.WheelRadius}

	peak := math.Max(math.Abs(u[0]), math.Abs(u[1]))
	if peak > g.Limit && peak > 0 {
		scale := g.Limit / peak
		u[0] *= scale
		u[1] *= scale
	}
	return u
}

func (g *GoToGoal) Done() bool        { return g.done }
func (g *GoToGoal) GoalsReached() int { return g.reached }

func (g *GoToGoal) Goal() dynamo.State {
	if len(g.goals) == 0 {
		return nil
	}
	return g.goals[0].Clone()
}
