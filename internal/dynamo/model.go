package dynamo

// Model advances poses through a System with a chosen Integrator and keeps
// the heading wrapped into (-pi, pi] after every step.
type Model struct {
	System     System
	Integrator Integrator
}

func NewModel(sys System, integ Integrator) Model {
	return Model{System: sys, Integrator: integ}
}

func (m Model) Step(x State, u Control, dt float64) State {
	next := m.Integrator.Step(m.System, x, u, dt)
	if len(next) > Heading {
		next[Heading] = WrapAngle(next[Heading])
	}
	return next
}

// Advance steps every row of states with the matching row of controls and
// returns a new batch. Rows never read each other.
func (m Model) Advance(states, controls Batch, dt float64) Batch {
	next := NewBatch(states.Rows, states.Dim)
	for i := 0; i < states.Rows; i++ {
		copy(next.Row(i), m.Step(State(states.Row(i)), Control(controls.Row(i)), dt))
	}
	return next
}
