package metrics

import (
	"math"

	"github.com/san-kum/mppinav/internal/dynamo"
)

// PathLength accumulates planar distance between consecutive observed states.
type PathLength struct {
	name   string
	length float64
	last   dynamo.State
}

func NewPathLength() *PathLength {
	return &PathLength{name: "path_length"}
}

func (p *PathLength) Name() string { return p.name }

func (p *PathLength) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if p.last != nil {
		p.length += p.last.Distance(x)
	}
	p.last = x.Clone()
}

func (p *PathLength) Value() float64 { return p.length }

func (p *PathLength) Reset() {
	p.length = 0
	p.last = nil
}

// GoalDistance reports the planar distance to goal at the last observation.
type GoalDistance struct {
	name string
	goal dynamo.State
	dist float64
	seen bool
}

func NewGoalDistance(goal dynamo.State) *GoalDistance {
	return &GoalDistance{name: "goal_distance", goal: goal.Clone()}
}

func (g *GoalDistance) Name() string { return g.name }

func (g *GoalDistance) Observe(x dynamo.State, u dynamo.Control, t float64) {
	g.dist = x.Distance(g.goal)
	g.seen = true
}

func (g *GoalDistance) Value() float64 {
	if !g.seen {
		return math.Inf(1)
	}
	return g.dist
}

func (g *GoalDistance) Reset() {
	g.dist = 0
	g.seen = false
}

// HeadingError reports the absolute wrapped heading error to goal at the
// last observation.
type HeadingError struct {
	name string
	goal dynamo.State
	err  float64
}

func NewHeadingError(goal dynamo.State) *HeadingError {
	return &HeadingError{name: "heading_error", goal: goal.Clone()}
}

func (h *HeadingError) Name() string { return h.name }

func (h *HeadingError) Observe(x dynamo.State, u dynamo.Control, t float64) {
	h.err = math.Abs(x.Error(h.goal)[dynamo.Heading])
}

func (h *HeadingError) Value() float64 { return h.err }

func (h *HeadingError) Reset() { h.err = 0 }
