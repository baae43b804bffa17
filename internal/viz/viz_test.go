package viz

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/mppinav/internal/dynamo"
	"github.com/san-kum/mppinav/internal/integrators"
	"github.com/san-kum/mppinav/internal/mppi"
	"github.com/san-kum/mppinav/internal/physics"
)

func TestCanvasSetAndLine(t *testing.T) {
	c := NewCanvas(4, 2)
	assert.False(t, c.IsSet(0, 0))

	c.DrawLine(0, 0, 7, 7)
	for i := 0; i < 8; i++ {
		assert.True(t, c.IsSet(i, i), "dot %d", i)
	}
	assert.False(t, c.IsSet(7, 0))

	c.Set(-1, 3)
	c.Set(100, 100)
	assert.Len(t, strings.Split(strings.TrimRight(c.String(), "\n"), "\n"), 2)

	c.Clear()
	assert.False(t, c.IsSet(3, 3))
}

func TestViewportFitsPoints(t *testing.T) {
	c := NewCanvas(20, 10)
	pts := [][]float64{{0, 0}, {2, 1}, {-1, -1}}
	v := FitViewport(c, pts)

	for _, p := range pts {
		x, y := v.ToDots(p[0], p[1])
		assert.GreaterOrEqual(t, x, 0)
		assert.Less(t, x, 40)
		assert.GreaterOrEqual(t, y, 0)
		assert.Less(t, y, 40)
	}

	_, yLow := v.ToDots(0, -1)
	_, yHigh := v.ToDots(0, 1)
	assert.Greater(t, yLow, yHigh, "world y points up")
}

func TestPlotRun(t *testing.T) {
	states := [][]float64{{0, 0, 0}, {0.1, 0, 0.1}, {0.2, 0.05, 0.2}}
	controls := [][]float64{{1, 2}, {2, 1}}

	out := PlotRun(states, controls)
	assert.Contains(t, out, "x (m)")
	assert.Contains(t, out, "theta (rad)")
	assert.Contains(t, out, "wheel commands")

	assert.Contains(t, PlotSeries(nil, "d", 4), "waiting")
}

func TestSavePathPNG(t *testing.T) {
	file := filepath.Join(t.TempDir(), "path.png")
	states := [][]float64{{0, 0, 0}, {0.5, 0.1, 0}, {1, 0, 0}}
	require.NoError(t, SavePathPNG(file, "run", states, [][]float64{{1, 0, 0}}))
	assert.FileExists(t, file)

	assert.Error(t, SavePathPNG(file, "empty", nil, nil))
}

func TestLiveSteps(t *testing.T) {
	model := dynamo.NewModel(physics.NewDiffDrive(), integrators.NewRK4())
	cfg := mppi.DefaultConfig()
	cfg.Samples = 32
	ctrl, err := mppi.New(cfg, model, dynamo.State{1, 0, 0})
	require.NoError(t, err)

	var m tea.Model = NewLive(ctrl, model, dynamo.State{0, 0, 0}, []dynamo.State{{1, 0, 0}}, 3, 60)
	for i := 0; i < 5; i++ {
		m, _ = m.Update(TickMsg{})
	}

	live := m.(Live)
	assert.True(t, live.Finished())
	assert.Equal(t, 3, ctrl.Ticks())
	assert.Len(t, live.path, 4)
	assert.True(t, live.State().IsValid())
	assert.Contains(t, live.View(), "mppinav live")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	assert.Equal(t, 1, m.(Live).theme)
}
