package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd := newRootCmd()
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, version)
}

func TestTemplateThenRun(t *testing.T) {
	dir := t.TempDir()
	expFile := filepath.Join(dir, "exp.yaml")
	resultsFile := filepath.Join(dir, "results.tsv")
	summaryFile := filepath.Join(dir, "summary.json")

	out, err := execute(t, "template", expFile)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 4 experiments")

	_, err = execute(t, "run", expFile, "--name", "poisson", "--trials", "3", "--workers", "2",
		"--seed-offset", "9", "--results", resultsFile, "--summary", summaryFile, "--log-level", "err")
	require.NoError(t, err)

	contents, err := os.ReadFile(resultsFile)
	require.NoError(t, err)
	lines := strings.Split(string(contents), "\n")
	assert.Equal(t, "#SimID\tTime\tDegree", lines[0])
	assert.Greater(t, len(lines), 3)
	for _, line := range lines[1:] {
		assert.Len(t, strings.Split(line, "\t"), 3)
	}

	_, err = os.Stat(summaryFile)
	assert.NoError(t, err)
}

func TestRunToStdout(t *testing.T) {
	dir := t.TempDir()
	expFile := filepath.Join(dir, "exp.json")
	_, err := execute(t, "template", expFile)
	require.NoError(t, err)

	out, err := execute(t, "run", expFile, "--name", "uniform", "--trials", "2", "--results", "",
		"--seed-offset", "4", "--engine", "evtm")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "#SimID\tTime\tDegree\n0\t"))
	assert.True(t, strings.HasSuffix(out, "\n"))

	// every node has degree three or more, so each seed informs at least one other node
	rows := strings.Split(strings.TrimSuffix(out, "\n"), "\n")[1:]
	assert.GreaterOrEqual(t, len(rows), 4)
	spread := 0
	for _, row := range rows {
		if !strings.Contains(row, "\t0.000000\t") {
			spread += 1
		}
	}
	assert.GreaterOrEqual(t, spread, 2)
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	expFile := filepath.Join(dir, "exp.yaml")
	_, err := execute(t, "template", expFile)
	require.NoError(t, err)

	_, err = execute(t, "run", expFile)
	assert.ErrorContains(t, err, "select one with --name")

	_, err = execute(t, "run", expFile, "--name", "lattice")
	assert.ErrorContains(t, err, "not found")

	_, err = execute(t, "run", filepath.Join(dir, "absent.yaml"))
	assert.Error(t, err)

	_, err = execute(t, "run", expFile, "--name", "poisson", "--engine", "calendar")
	assert.Error(t, err)
}
