// Package physics provides ground-vehicle kinematic models.
//
// Each model implements the [dynamo.System] interface, defining the
// continuous-time kinematics of a planar pose (x, y, heading):
//
//   - [DiffDrive]: two independently driven wheels, u = (left, right) wheel rates
//   - [Unicycle]: body-frame command, u = (linear, angular) velocity
//
// Both also implement [dynamo.Configurable] so geometry can be tuned from
// configuration files.
package physics
