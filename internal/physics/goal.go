package physics

import (
	"math"

	"github.com/san-kum/mppinav/internal/dynamo"
)

// BearingGoal builds a goal pose for a position-only waypoint, heading along
// the line from the current position to the waypoint.
func BearingGoal(from dynamo.State, x, y float64) dynamo.State {
	bearing := math.Atan2(y-from[dynamo.Y], x-from[dynamo.X])
	return dynamo.State{x, y, dynamo.WrapAngle(bearing)}
}
