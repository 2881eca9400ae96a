//go:build !boundary_passthrough

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: commands_test.go
Description: End-to-end tests for the command tree using the built-in demo harnesses.
*/

package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kleascm/akaylee-boundary/cmd/fuzzer/commands"
	"github.com/kleascm/akaylee-boundary/pkg/engine"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := commands.NewRootCommand(viper.New())
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--no-color", "--log-level", "error"))
	err := root.Execute()
	return out.String(), err
}

func writeCorpus(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestRunCleanCorpus(t *testing.T) {
	corpus := writeCorpus(t, map[string]string{"one": "hello", "two": "world"})
	reports := filepath.Join(t.TempDir(), "reports")

	out, err := execute(t, "run", "--harness", "demo", "--artifact-prefix", t.TempDir()+"/", "--report-dir", reports, corpus)
	require.NoError(t, err)
	assert.Contains(t, out, "Run finished cleanly")
	assert.Contains(t, out, "safe")

	files, err := filepath.Glob(filepath.Join(reports, "boundary_report_*.json"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestRunCrashThenReproduce(t *testing.T) {
	corpus := writeCorpus(t, map[string]string{"boom": "CRSH", "fine": "hello", "abc": "ABCD"})
	artifacts := t.TempDir()

	out, err := execute(t, "run", "--artifact-prefix", artifacts+"/", "--workers", "2", corpus)
	assert.ErrorIs(t, err, commands.ErrRunFailed)
	assert.Contains(t, out, "Run finished with failures")

	crash := engine.ArtifactPrefix{Dir: artifacts}.Path(engine.KindCrash, []byte("CRSH"))
	require.FileExists(t, crash)
	require.FileExists(t, crash+engine.MetaSuffix)
	assert.True(t, strings.Contains(out, crash))

	out, err = execute(t, "reproduce", crash)
	require.NoError(t, err)
	assert.Contains(t, out, "Reproduced")

	// a different harness does not crash on the same bytes
	out, err = execute(t, "reproduce", "--harness", "echo-len", crash)
	assert.ErrorIs(t, err, commands.ErrNotReproduced)
	assert.Contains(t, out, "Not reproduced")
}

func TestRunFindingsOnlyIsNotFailure(t *testing.T) {
	corpus := writeCorpus(t, map[string]string{"abc": "ABCD"})
	out, err := execute(t, "run", "--artifact-prefix", t.TempDir()+"/", corpus)
	require.NoError(t, err)
	assert.Contains(t, out, "Run finished with findings")
}

func TestRunErrors(t *testing.T) {
	_, err := execute(t, "run", "--harness", "nope", writeCorpus(t, map[string]string{"a": "x"}))
	assert.Error(t, err)

	_, err = execute(t, "run", t.TempDir())
	assert.ErrorIs(t, err, engine.ErrNoInputs)

	_, err = execute(t, "run", "--workers", "0", writeCorpus(t, map[string]string{"a": "x"}))
	assert.Error(t, err)

	_, err = execute(t, "run")
	assert.Error(t, err)
}

func TestRunWithConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "akaylee.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
[run]
harness = "always-panic"
max_crashes = 1
`), 0644))

	corpus := writeCorpus(t, map[string]string{"a": "1", "b": "2", "c": "3"})
	out, err := execute(t, "run", "--config", cfgPath, "--artifact-prefix", t.TempDir()+"/", corpus)
	assert.ErrorIs(t, err, commands.ErrRunFailed)
	assert.Contains(t, out, "max_crashes")
}

func TestReproduceWithoutMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loose")
	require.NoError(t, os.WriteFile(path, []byte("CRSH"), 0644))

	out, err := execute(t, "reproduce", "--harness", "demo", path)
	require.NoError(t, err)
	assert.Contains(t, out, "crash")
	assert.Contains(t, out, "No metadata sidecar")
}

func TestInfoCommands(t *testing.T) {
	out, err := execute(t, "list-harnesses")
	require.NoError(t, err)
	assert.Contains(t, out, "demo")
	assert.Contains(t, out, "always-panic")
	assert.Contains(t, out, "echo-len")

	out, err = execute(t, "mode")
	require.NoError(t, err)
	assert.Equal(t, "safe (sentinel -2)\n", out)

	path := filepath.Join(t.TempDir(), "akaylee.toml")
	out, err = execute(t, "init-config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")
	assert.FileExists(t, path)

	_, err = execute(t, "init-config", path)
	assert.Error(t, err)
}
