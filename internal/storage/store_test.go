package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/mppinav/internal/dynamo"
	"github.com/san-kum/mppinav/internal/mppi"
	"github.com/san-kum/mppinav/internal/sim"
)

func sampleResult() *sim.Result {
	return &sim.Result{
		States:   []dynamo.State{{0, 0, 0}, {0.02, 0, 0.1}, {0.04, 0.001, 0.15}},
		Controls: []dynamo.Control{{6, 6}, {5.5, 6}},
		Times:    []float64{0, 0.1, 0.2},
		Metrics:  map[string]float64{"path_length": 0.04},
		Ticks:    2,
		Done:     true,
	}
}

func sampleMeta() RunMetadata {
	return RunMetadata{
		Model:      "diff_drive",
		Integrator: "rk4",
		Start:      []float64{0, 0, 0},
		Goals:      [][]float64{{1, 0, 0}},
		Controller: mppi.DefaultConfig(),
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runID, err := st.Save(sampleMeta(), sampleResult())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(runID, "diff_drive_"))

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, runID, meta.ID)
	assert.Equal(t, "rk4", meta.Integrator)
	assert.Equal(t, 2, meta.Ticks)
	assert.True(t, meta.Done)
	assert.Equal(t, 0.04, meta.Metrics["path_length"])
	assert.Equal(t, mppi.DefaultConfig(), meta.Controller)

	traj, err := st.LoadStates(runID)
	require.NoError(t, err)
	require.Len(t, traj.States, 3)
	assert.Equal(t, []float64{0, 0.1, 0.2}, traj.Times)
	assert.Equal(t, []float64{0.04, 0.001, 0.15}, traj.States[2])
	assert.Equal(t, []float64{5.5, 6}, traj.Controls[1])
	assert.Equal(t, []float64{0, 0}, traj.Controls[2])
}

func TestStoreIDsAreUnique(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	a, err := st.Save(sampleMeta(), sampleResult())
	require.NoError(t, err)
	b, err := st.Save(sampleMeta(), sampleResult())
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = st.Save(sampleMeta(), sampleResult())
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "garbage"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestStoreMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "nope"))
	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = st.Load("missing")
	assert.Error(t, err)
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, st.Init())

	runID, err := st.Save(sampleMeta(), sampleResult())
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, runID, "metadata.json"))
	assert.FileExists(t, filepath.Join(dir, runID, "states.csv"))
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())
	runID, err := st.Save(sampleMeta(), sampleResult())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, st.ExportJSON(&buf, runID))

	var out ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, runID, out.Run.ID)
	assert.Equal(t, 3, out.Steps)
	assert.Len(t, out.Controls, 3)

	assert.Error(t, st.ExportJSON(&buf, "missing"))
}
