package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "turtle version")
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	prog := filepath.Join(dir, "line.json")
	require.NoError(t, os.WriteFile(prog, []byte(`{"steps":[{"op":"forward","args":[40]}]}`), 0o644))

	out, err := execute(t, "run", prog)
	require.NoError(t, err)
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "<line")

	target := filepath.Join(dir, "out.json")
	_, err = execute(t, "run", prog, "--format", "json", "--output", target)
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type": "line"`)
}

func TestInvalidConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "turtle.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  driver: etcd\n"), 0o644))

	_, err := execute(t, "version", "--config", path)
	assert.Error(t, err)
}
