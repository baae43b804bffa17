// Package dynamo provides core primitives for vehicle models used by the
// controller and the closed-loop simulator.
//
// The package defines the fundamental interfaces and types:
//
//   - [State]: pose vector (x, y, heading)
//   - [Control]: actuator command vector
//   - [System]: continuous-time kinematics (dX/dt = f(X, u))
//   - [Integrator]: numerical integration scheme
//   - [Model]: a System paired with an Integrator, stepped with heading wrap
//   - [Batch]: flat row-major storage for many independent samples
//
// # Example
//
//	m := dynamo.NewModel(physics.NewDiffDrive(), integrators.NewRK4())
//	next := m.Step(dynamo.State{0, 0, 0}, dynamo.Control{1, 1}, 0.1)
//
// # Thread Safety
//
// Systems and integrators hold no mutable state, so a single [Model] may be
// stepped from many goroutines at once as long as each works on its own rows.
package dynamo
