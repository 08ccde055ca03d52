package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neil-Crago/coheron/internal/ensemble"
	"github.com/Neil-Crago/coheron/internal/simulation"
)

// isolateHome points HOME at a temp directory so no real ~/.coheron is read.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	isolateHome(t)

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	want := []string{"version", "run", "ensemble", "fuse", "spectral", "config", "mcp-server"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "coheron version "+version)

	out, err = execute(t, "", "version", "--json")
	require.NoError(t, err)
	var v map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, version, v["version"])
}

func TestRun(t *testing.T) {
	out, err := execute(t, "", "run", "--steps", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "gaussian belief on grid field")
	assert.Contains(t, out, "STEP")
	assert.Contains(t, out, "Final posterior")
}

func TestRunJSON(t *testing.T) {
	out, err := execute(t, "", "run", "--steps", "3", "--seed", "9", "--belief", "kalman", "--field", "wave", "--json")
	require.NoError(t, err)

	var res simulation.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, int64(9), res.Seed)
	assert.Equal(t, "kalman", res.Belief)
	assert.Equal(t, "wave", res.Field)
	assert.Len(t, res.Steps, 3)
	assert.NotNil(t, res.State.Gaussian)
}

func TestRunInvalidFlags(t *testing.T) {
	_, err := execute(t, "", "run", "--belief", "bogus")
	assert.Error(t, err)

	_, err = execute(t, "", "run", "--actuator", "teleport")
	assert.Error(t, err)
}

func TestEnsembleJSON(t *testing.T) {
	out, err := execute(t, "", "ensemble", "--members", "2", "--steps", "2", "--seed", "5", "--json")
	require.NoError(t, err)

	var res ensemble.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Members, 2)
	assert.Equal(t, int64(5), res.Members[0].Seed)
	assert.Equal(t, int64(6), res.Members[1].Seed)
	assert.NotNil(t, res.Fused.Gaussian)
}

func TestEnsembleText(t *testing.T) {
	out, err := execute(t, "", "ensemble", "--members", "2", "--steps", "1", "--belief", "dirichlet")
	require.NoError(t, err)
	assert.Contains(t, out, "2 members")
	assert.Contains(t, out, "Fused dirichlet")
}

func TestFuseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snaps.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- gaussian: {mean: 1, variance: 1}
- gaussian: {mean: 3, variance: 1}
`), 0600))

	out, err := execute(t, "", "fuse", path, "--json")
	require.NoError(t, err)

	var snap simulation.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	require.NotNil(t, snap.Gaussian)
	assert.InDelta(t, 2.0, snap.Gaussian.Mean, 1e-5)
	assert.InDelta(t, 0.5, snap.Gaussian.Variance, 1e-5)
}

func TestFuseStdin(t *testing.T) {
	in := `[{"dirichlet": {"alpha": [1, 2]}}, {"dirichlet": {"alpha": [3, 4]}}]`
	out, err := execute(t, in, "fuse", "-", "--json")
	require.NoError(t, err)

	var snap simulation.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	require.NotNil(t, snap.Dirichlet)
	assert.Equal(t, []float64{4, 6}, snap.Dirichlet.Alpha)
}

func TestFuseRejects(t *testing.T) {
	mixed := `[{"gaussian": {"mean": 0, "variance": 1}}, {"dirichlet": {"alpha": [1]}}]`
	_, err := execute(t, mixed, "fuse", "-")
	assert.ErrorIs(t, err, ensemble.ErrMixedSnapshots)

	_, err = execute(t, "[]", "fuse", "-")
	assert.ErrorIs(t, err, ensemble.ErrNoMembers)

	_, err = execute(t, "", "fuse")
	assert.Error(t, err)
}

func TestSpectral(t *testing.T) {
	out, err := execute(t, "", "spectral", "--json", "--smooth", "4", "6", "10", "12", "8", "6", "5", "5")
	require.NoError(t, err)

	var res spectralOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 2, res.Level)
	assert.Contains(t, res.Scores, "haar")
	assert.Equal(t, res.Scores[res.Best], res.BestScore)
	assert.Len(t, res.Smoothed, 8)
}

func TestSpectralRejects(t *testing.T) {
	_, err := execute(t, "", "spectral")
	assert.Error(t, err)

	_, err = execute(t, "", "spectral", "1", "2", "x", "4")
	assert.Error(t, err)

	_, err = execute(t, "", "spectral", "--level", "3", "1", "2", "3", "4")
	assert.Error(t, err)
}

func TestReadSignalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signal.txt")
	require.NoError(t, os.WriteFile(path, []byte("1, 2,3\n4\t5 6\n"), 0600))

	cmd := newSpectralCmd()
	require.NoError(t, cmd.Flags().Set("file", path))

	got, err := readSignal(cmd, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, got)

	_, err = readSignal(cmd, []string{"1"})
	assert.Error(t, err)
}

func TestConfigGet(t *testing.T) {
	out, err := execute(t, "", "config", "get", "belief.kind")
	require.NoError(t, err)
	assert.Equal(t, "gaussian\n", out)

	out, err = execute(t, "", "config", "get", "simulation.steps", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"value": 10`)

	_, err = execute(t, "", "config", "get", "belief.nope")
	assert.Error(t, err)
}

func TestConfigGetHonoursEnv(t *testing.T) {
	t.Setenv("COHERON_BELIEF", "dirichlet")
	out, err := execute(t, "", "config", "get", "belief.kind")
	require.NoError(t, err)
	assert.Equal(t, "dirichlet\n", out)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	out, err := execute(t, "", "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.FileExists(t, path)

	_, err = execute(t, "", "config", "init", "--config", path)
	assert.Error(t, err)

	_, err = execute(t, "", "config", "init", "--config", path, "--force")
	assert.NoError(t, err)

	out, err = execute(t, "", "config", "get", "field.kind", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "grid\n", out)
}

func TestConfigList(t *testing.T) {
	out, err := execute(t, "", "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "simulation:")
	assert.Contains(t, out, "spectral:")
}
