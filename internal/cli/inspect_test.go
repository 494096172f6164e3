package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect_Text(t *testing.T) {
	dir := t.TempDir()
	path := writePattern(t, dir, "teleport.cue", teleportCUE)

	out, err := executeCommand(t, "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "pattern ")
	assert.Contains(t, out, "inputs:   [0]")
	assert.Contains(t, out, "outputs:  [2]")
	assert.Contains(t, out, "measured: [0 1]")
	assert.Contains(t, out, "commands: 8")
	assert.Contains(t, out, "N: 2")
	assert.Contains(t, out, "E: 2")
	assert.Contains(t, out, "M: 2")
	assert.Contains(t, out, "X: 1")
	assert.Contains(t, out, "Z: 1")
}

func TestInspect_JSON(t *testing.T) {
	dir := t.TempDir()
	path := writePattern(t, dir, "teleport.cue", teleportCUE)

	out, err := executeCommand(t, "--format", "json", "inspect", path)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, data["hash"])
	assert.EqualValues(t, 8, data["commands"])
}

func TestInspect_ListsRecordedRuns(t *testing.T) {
	dir := t.TempDir()
	path := writePattern(t, dir, "teleport.cue", teleportCUE)
	dbPath := filepath.Join(dir, "trace.db")

	_, err := executeCommand(t, "convert", "--trace", dbPath, path)
	require.NoError(t, err)
	_, err = executeCommand(t, "convert", "--backend", "circuit", "--trace", dbPath, path)
	require.NoError(t, err)

	out, err := executeCommand(t, "inspect", "--trace", dbPath, path)
	require.NoError(t, err)
	assert.Contains(t, out, "backend=dataflow")
	assert.Contains(t, out, "backend=circuit")
}

func TestInspect_MissingFile(t *testing.T) {
	out, err := executeCommand(t, "inspect", "/nonexistent/pattern.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "NOT_FOUND")
}
