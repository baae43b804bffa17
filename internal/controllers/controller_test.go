package controllers

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/mppinav/internal/dynamo"
	"github.com/san-kum/mppinav/internal/integrators"
	"github.com/san-kum/mppinav/internal/physics"
	"github.com/san-kum/mppinav/internal/sim"
)

var _ sim.Controller = (*GoToGoal)(nil)

func TestPID(t *testing.T) {
	p := NewPID(10, 0.1, 5)
	assert.Equal(t, 10.0, p.Update(1, 0.1), "first update is proportional only")

	u := p.Update(0.5, 0.1)
	assert.InDelta(t, 10*0.5+0.1*0.05+5*(-5), u, 1e-12)

	p.Reset()
	assert.Equal(t, -20.0, p.Update(-2, 0.1))
}

func TestGoToGoalWheelsRespectLimit(t *testing.T) {
	dd := physics.NewDiffDrive()
	g, err := NewGoToGoal([]dynamo.State{{5, 5, 0}}, dd, 6, 0.05, 0.1)
	require.NoError(t, err)

	u, err := g.Tick(dynamo.State{0, 0, math.Pi})
	require.NoError(t, err)
	assert.LessOrEqual(t, math.Abs(u[0]), 6.0+1e-12)
	assert.LessOrEqual(t, math.Abs(u[1]), 6.0+1e-12)
	assert.Greater(t, u[0], u[1], "shorter turn is clockwise, so the left wheel leads")
}

func TestGoToGoalReachesWaypoints(t *testing.T) {
	dd := physics.NewDiffDrive()
	goals := []dynamo.State{{0.5, 0, 0}, {0.5, 0.5, 0}}
	g, err := NewGoToGoal(goals, dd, 6, 0.05, 0.1)
	require.NoError(t, err)

	plant := dynamo.NewModel(dd, integrators.NewRK4())
	res, err := sim.New(plant, g).Run(context.Background(), dynamo.State{0, 0, 0}, sim.Config{Dt: 0.1, MaxTicks: 500})
	require.NoError(t, err)

	assert.True(t, res.Done)
	assert.Equal(t, 2, g.GoalsReached())
	assert.Less(t, res.Final().Distance(goals[1]), 0.05)
	assert.Nil(t, g.Goal())
}

func TestGoToGoalUnicycle(t *testing.T) {
	g, err := NewGoToGoal([]dynamo.State{{1, 0, 0}}, nil, 0.5, 0.05, 0.1)
	require.NoError(t, err)

	u, err := g.Tick(dynamo.State{0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, dynamo.Control{0.5, 0}, u)
}

func TestGoToGoalRejectsBadInput(t *testing.T) {
	_, err := NewGoToGoal(nil, nil, 1, 0.05, 0.1)
	assert.ErrorIs(t, err, dynamo.ErrInvalidState)

	g, err := NewGoToGoal([]dynamo.State{{1, 0, 0}}, nil, 1, 0.05, 0.1)
	require.NoError(t, err)
	_, err = g.Tick(dynamo.State{math.NaN(), 0, 0})
	assert.ErrorIs(t, err, dynamo.ErrInvalidState)
}
