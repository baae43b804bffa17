package mppi

import "github.com/san-kum/mppinav/internal/dynamo"

type TrajectoryPoint struct {
	State dynamo.State `json:"state"`
	Time  float64      `json:"time"`
}

type ControlPoint struct {
	Control dynamo.Control `json:"control"`
	Time    float64        `json:"time"`
}

// TrajectoryLog is the append-only record of states seen at each tick.
type TrajectoryLog []TrajectoryPoint

// ControlLog is the append-only record of commands emitted at each tick.
type ControlLog []ControlPoint

func (l TrajectoryLog) States() []dynamo.State {
	out := make([]dynamo.State, len(l))
	for i, p := range l {
		out[i] = p.State
	}
	return out
}

func (l TrajectoryLog) Times() []float64 {
	out := make([]float64, len(l))
	for i, p := range l {
		out[i] = p.Time
	}
	return out
}

func (l ControlLog) Controls() []dynamo.Control {
	out := make([]dynamo.Control, len(l))
	for i, p := range l {
		out[i] = p.Control
	}
	return out
}
