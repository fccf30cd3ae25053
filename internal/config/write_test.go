package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetKeyInFile_NewKeyEmptyFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "config")

	if err := SetKeyInFile(path, "planner", "bfs"); err != nil {
		t.Fatalf("SetKeyInFile returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read config file: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "planner bfs" {
		t.Fatalf("expected 'planner bfs', got %q", got)
	}

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	v, ok := cfg.GetGlobalOption("planner")
	assert.True(t, ok)
	assert.Equal(t, "bfs", v)
}

func TestSetKeyInFile_UpdatePreservesLayout(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config")
	initial := "# planning\nplanner astar\nseed 4\n\n[run]\nplanner pabt\n"
	require.NoError(t, os.WriteFile(path, []byte(initial), 0644))

	require.NoError(t, SetKeyInFile(path, "planner", "fd-sat"))
	require.NoError(t, SetKeyInFile(path, "episodes", "10"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# planning\nplanner fd-sat\nseed 4\n\nepisodes 10\n[run]\nplanner pabt\n", string(data))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	v, _ := cfg.GetCommandOption("run", "planner")
	assert.Equal(t, "pabt", v, "section keys are never rewritten")
}

func TestSetKeyInFile_EmptyValue(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, SetKeyInFile(path, "verbose", ""))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	v, ok := cfg.GetGlobalOption("verbose")
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestSetKeyInFile_LeavesNoTempFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config")
	for _, seed := range []string{"1", "2", "3"} {
		require.NoError(t, SetKeyInFile(path, "seed", seed))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "config", entries[0].Name())

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.GetInt("seed"))
}
