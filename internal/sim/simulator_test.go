package sim

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/mppinav/internal/dynamo"
	"github.com/san-kum/mppinav/internal/integrators"
	"github.com/san-kum/mppinav/internal/mppi"
	"github.com/san-kum/mppinav/internal/physics"
)

// forwardController drives straight ahead until x passes stopAt.
type forwardController struct {
	speed  float64
	stopAt float64
	done   bool
	fail   error
}

func (c *forwardController) Tick(x dynamo.State) (dynamo.Control, error) {
	if x[dynamo.X] >= c.stopAt {
		c.done = true
		return dynamo.Control{0, 0}, nil
	}
	return dynamo.Control{c.speed, 0}, c.fail
}

func (c *forwardController) Done() bool { return c.done }

type nanPlant struct{}

func (nanPlant) Step(x dynamo.State, u dynamo.Control, dt float64) dynamo.State {
	return dynamo.State{math.NaN(), 0, 0}
}

type countMetric struct{ n int }

func (m *countMetric) Name() string                                        { return "count" }
func (m *countMetric) Observe(x dynamo.State, u dynamo.Control, t float64) { m.n++ }
func (m *countMetric) Value() float64                                      { return float64(m.n) }
func (m *countMetric) Reset()                                              { m.n = 0 }

func unicyclePlant() dynamo.Model {
	return dynamo.NewModel(physics.NewUnicycle(), integrators.NewEuler())
}

func TestSimulatorRun(t *testing.T) {
	ctrl := &forwardController{speed: 1, stopAt: 0.45}
	s := New(unicyclePlant(), ctrl)
	metric := &countMetric{}
	s.AddMetric(metric)

	res, err := s.Run(context.Background(), dynamo.State{0, 0, 0}, Config{Dt: 0.1, MaxTicks: 100})
	require.NoError(t, err)

	assert.True(t, res.Done)
	assert.Equal(t, 6, res.Ticks)
	assert.Len(t, res.States, res.Ticks+1)
	assert.Len(t, res.Controls, res.Ticks)
	assert.Len(t, res.Times, res.Ticks+1)
	assert.InDelta(t, 0.5, res.Final()[dynamo.X], 1e-9)
	assert.Equal(t, 6.0, res.Metrics["count"])
	assert.Empty(t, res.Errors)
}

func TestSimulatorTickLimit(t *testing.T) {
	ctrl := &forwardController{speed: 1, stopAt: 100}
	s := New(unicyclePlant(), ctrl)

	res, err := s.Run(context.Background(), dynamo.State{0, 0, 0}, Config{Dt: 0.1, MaxTicks: 10})
	require.NoError(t, err)
	assert.False(t, res.Done)
	assert.Equal(t, 10, res.Ticks)
}

func TestSimulatorInvalidConfig(t *testing.T) {
	s := New(unicyclePlant(), &forwardController{})

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, MaxTicks: 10}},
		{"negative dt", Config{Dt: -0.1, MaxTicks: 10}},
		{"zero ticks", Config{Dt: 0.1, MaxTicks: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), dynamo.State{0, 0, 0}, tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestSimulatorTickErrors(t *testing.T) {
	boom := errors.New("boom")

	s := New(unicyclePlant(), &forwardController{speed: 1, stopAt: 0.25, fail: boom})
	res, err := s.Run(context.Background(), dynamo.State{0, 0, 0}, Config{Dt: 0.1, MaxTicks: 10})
	require.NoError(t, err)
	require.NotEmpty(t, res.Errors)
	assert.ErrorIs(t, res.Errors[0], boom)

	s = New(unicyclePlant(), &forwardController{speed: 1, stopAt: 0.25, fail: boom})
	res, err = s.Run(context.Background(), dynamo.State{0, 0, 0}, Config{Dt: 0.1, MaxTicks: 10, StopOnError: true})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, res.Ticks)
}

func TestSimulatorInvalidPlantState(t *testing.T) {
	s := New(nanPlant{}, &forwardController{speed: 1, stopAt: 10})
	res, err := s.Run(context.Background(), dynamo.State{0, 0, 0}, Config{Dt: 0.1, MaxTicks: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, dynamo.ErrUnstable)

	var simErr SimError
	require.ErrorAs(t, err, &simErr)
	assert.Equal(t, 0, simErr.Tick)
	assert.Len(t, res.States, 1)
}

func TestSimulatorCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(unicyclePlant(), &forwardController{speed: 1, stopAt: 10})
	res, err := s.Run(ctx, dynamo.State{0, 0, 0}, Config{Dt: 0.1, MaxTicks: 10})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, res.Ticks)
}

func TestRunWithCallback(t *testing.T) {
	s := New(unicyclePlant(), &forwardController{speed: 1, stopAt: 10})

	calls := 0
	err := s.RunWithCallback(context.Background(), dynamo.State{0, 0, 0}, Config{Dt: 0.1, MaxTicks: 50},
		func(x dynamo.State, u dynamo.Control, t float64) bool {
			calls++
			return calls < 3
		})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestSimulatorWithMPPI(t *testing.T) {
	model := dynamo.NewModel(physics.NewDiffDrive(), integrators.NewRK4())
	cfg := mppi.DefaultConfig()
	cfg.Seed = 3
	ctrl, err := mppi.New(cfg, model, dynamo.State{0.5, 0, 0})
	require.NoError(t, err)

	res, err := New(model, ctrl).Run(context.Background(), dynamo.State{0, 0, 0}, Config{Dt: cfg.Dt, MaxTicks: 400})
	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.Less(t, res.Final().Distance(dynamo.State{0.5, 0, 0}), cfg.GoalThreshold)
}

func TestEnsemble(t *testing.T) {
	var built atomic.Int32
	factory := func(seed uint64) (*Simulator, error) {
		built.Add(1)
		return New(unicyclePlant(), &forwardController{speed: float64(seed), stopAt: 1}), nil
	}

	e := NewEnsemble(factory, 4, 1)
	e.SetWorkers(2)
	results, err := e.Run(context.Background(), dynamo.State{0, 0, 0}, Config{Dt: 0.1, MaxTicks: 100})
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, int32(4), built.Load())

	for i := 1; i < len(results); i++ {
		assert.Less(t, results[i].Ticks, results[i-1].Ticks, "faster seeds finish sooner")
	}
}

func TestEnsembleFactoryError(t *testing.T) {
	boom := errors.New("boom")
	factory := func(seed uint64) (*Simulator, error) { return nil, boom }

	_, err := NewEnsemble(factory, 3, 0).Run(context.Background(), dynamo.State{0, 0, 0}, Config{Dt: 0.1, MaxTicks: 1})
	assert.ErrorIs(t, err, boom)
}
