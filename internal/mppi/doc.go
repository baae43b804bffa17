// Package mppi implements a Model Predictive Path Integral controller for
// planar ground vehicles.
//
// Every tick the controller samples perturbed copies of its nominal control
// sequence, rolls them out through a [dynamo.Model], scores each rollout,
// and folds the perturbations back into the nominal sequence weighted by
// exp(-cost/temperature). Only the first control is executed before the
// horizon shifts by one step.
//
//   - [Sampler]: noise generation and batch rollout
//   - [CostEvaluator]: stage and terminal cost
//   - [Updater]: importance weights, control update and smoothing
//   - [Controller]: the receding-horizon state machine
//
// # Example
//
//	model := dynamo.NewModel(physics.NewDiffDrive(), integrators.NewRK4())
//	ctrl, err := mppi.New(mppi.DefaultConfig(), model, dynamo.State{1, 0, 0})
//	if err != nil {
//		return err
//	}
//	for {
//		x := estimator.Pose()
//		u, err := ctrl.Tick(x)
//		...
//	}
//
// # Thread Safety
//
// Tick and Step must be called from a single goroutine. SetGoal and
// SetWaypoints may be called from any goroutine; they take effect at the
// start of the next tick.
package mppi
