package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/mppinav/internal/config"
	"github.com/san-kum/mppinav/internal/storage"
)

const suiteYAML = `
name: smoke
description: two short drives
steps:
  - name: forward
    config:
      goals: [[0.3, 0, 0]]
      max_ticks: 600
      controller:
        samples: 128
        seed: 1
  - name: baseline
    config:
      policy: pid
      goals: [[0.2, 0.2, 0]]
`

func writeSuite(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestScenarioLayering(t *testing.T) {
	suite, err := LoadSuite(writeSuite(t, suiteYAML))
	require.NoError(t, err)
	require.Len(t, suite.Steps, 2)

	cfg, err := suite.Steps[0].Scenario()
	require.NoError(t, err)
	assert.Equal(t, 128, cfg.Controller.Samples)
	assert.Equal(t, config.DefaultConfig().Controller.Horizon, cfg.Controller.Horizon)
	assert.Equal(t, [][]float64{{0.3, 0, 0}}, cfg.Goals)

	preset := SuiteStep{Model: "diff_drive", Preset: "square"}
	cfg, err = preset.Scenario()
	require.NoError(t, err)
	assert.Len(t, cfg.Goals, 4)

	_, err = SuiteStep{Preset: "nope"}.Scenario()
	assert.Error(t, err)
}

func TestLoadSuiteErrors(t *testing.T) {
	_, err := LoadSuite(writeSuite(t, "name: empty\n"))
	assert.Error(t, err)

	_, err = LoadSuite(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRunSuite(t *testing.T) {
	suite, err := LoadSuite(writeSuite(t, suiteYAML))
	require.NoError(t, err)

	st := storage.New(t.TempDir())
	require.NoError(t, st.Init())

	results, err := RunSuite(context.Background(), suite, st, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.Result.Done, r.Name)
		assert.NotEmpty(t, r.RunID)
	}

	runs, err := st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestRunSuiteStopsOnInvalidStep(t *testing.T) {
	suite := &Suite{Name: "bad", Steps: []SuiteStep{{Name: "tank", Model: "tank"}}}
	results, err := RunSuite(context.Background(), suite, nil, nil)
	assert.Error(t, err)
	assert.Empty(t, results)
}

func TestRunSweep(t *testing.T) {
	base := config.DefaultConfig()
	base.Goals = [][]float64{{0.3, 0, 0}}
	base.MaxTicks = 600
	base.Controller.Samples = 128
	base.Controller.Seed = 4

	results, err := RunSweep(context.Background(), &MismatchSweep{
		Base:      base,
		ParamName: "wheel_radius",
		Factors:   []float64{0.9, 1.0, 1.1},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.True(t, r.Done, "factor %.1f", r.Factor)
		assert.Less(t, r.GoalDistance, base.Controller.GoalThreshold)
	}

	_, err = RunSweep(context.Background(), &MismatchSweep{Base: base, ParamName: "mass", Factors: []float64{1}})
	assert.Error(t, err)
}
