package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runArgs(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("TTMP_CONFIG", filepath.Join(t.TempDir(), "config"))
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRun(t *testing.T) {
	for _, args := range [][]string{nil, {"help"}, {"-h"}, {"--help"}, {"help", "run"}} {
		stdout, _, err := runArgs(t, args...)
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", args, err)
		}
		if stdout == "" {
			t.Fatalf("%v: expected help output", args)
		}
	}

	stdout, _, err := runArgs(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ttmp version "+version+"\n", stdout)

	_, stderr, err := runArgs(t, "nope")
	assert.Error(t, err)
	assert.Contains(t, stderr, "Unknown command: nope")

	_, _, err = runArgs(t, "run", "-bogus")
	assert.Error(t, err)
}

func TestRunEpisodes(t *testing.T) {
	stdout, _, err := runArgs(t, "run", "-episodes", "3", "-parallel", "2", "-seed", "5", "-metrics", "-log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, stdout, "EPISODE")
	assert.Contains(t, stdout, "mean reward")
	assert.Contains(t, stdout, `ttmp_plans_total{outcome="found",planner="astar"} 3`)
}

func TestPlanFromFiles(t *testing.T) {
	testdata := filepath.Join("..", "..", "internal", "domainfile", "testdata")
	if _, err := os.Stat(testdata); err != nil {
		t.Skip(err)
	}
	stdout, _, err := runArgs(t, "plan",
		"-domain", filepath.Join(testdata, "taxi-domain.yaml"),
		"-problem", filepath.Join(testdata, "taxi-problem.yaml"),
		"-planner", "bfs")
	require.NoError(t, err)
	assert.Equal(t, "1. PickUp(passenger, taxi, dest-a)\n2. DropOff(passenger, taxi, dest-b)\n", stdout)
}
