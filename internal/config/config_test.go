package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/task-then-motion-planning/internal/testutil"
)

func TestConfigParsing(t *testing.T) {
	configContent := `# Global options
verbose true
planner bfs
terminate done || steps >= 50

[run]
render yes
planner pabt

[plan]
domain  ./taxi.yaml`

	config, err := LoadFromReader(strings.NewReader(configContent))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	assert.Empty(t, config.GetWarnings())

	if value, ok := config.GetGlobalOption("planner"); !ok || value != "bfs" {
		t.Errorf("Expected planner=bfs, got %s (exists: %v)", value, ok)
	}
	if value := config.GetString("terminate"); value != "done || steps >= 50" {
		t.Errorf("Expected the remaining line as the value, got %q", value)
	}
	if value, ok := config.GetCommandOption("run", "planner"); !ok || value != "pabt" {
		t.Errorf("Expected run.planner=pabt, got %s (exists: %v)", value, ok)
	}
	if value, ok := config.GetCommandOption("plan", "planner"); !ok || value != "bfs" {
		t.Errorf("Expected plan.planner=bfs (fallback), got %s (exists: %v)", value, ok)
	}
	if value, _ := config.GetCommandOption("plan", "domain"); value != "./taxi.yaml" {
		t.Errorf("Expected trimmed value, got %q", value)
	}
	if value, ok := config.GetCommandOption("nonexistent", "option"); ok {
		t.Errorf("Expected nonexistent option to not exist, but got %s", value)
	}
	assert.True(t, config.GetBool("verbose"))
}

func TestEmptyConfig(t *testing.T) {
	config, err := LoadFromReader(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, config.Global)
	assert.Empty(t, config.Commands)
	assert.False(t, config.HasWarnings())
}

func TestConfigWarnings(t *testing.T) {
	config, err := LoadFromReader(strings.NewReader("seed many\ncolour auto\n[run]\nrender maybe\nwat 1\n"))
	require.NoError(t, err)
	require.True(t, config.HasWarnings())
	assert.Equal(t, []string{
		`global option "seed": expected int, got "many"`,
		`option "render" in [run]: expected bool, got "maybe"`,
		`unknown global option: "colour" (value: "auto")`,
		`unknown option for command "run": "wat" (value: "1")`,
	}, config.GetWarnings())
}

func TestTypedGetters(t *testing.T) {
	cfg := NewConfig()
	cfg.SetGlobalOption("max-steps", "50")
	cfg.SetGlobalOption("planning-timeout", "250ms")
	cfg.SetGlobalOption("verbose", "off")
	cfg.SetGlobalOption("seed", "x")

	assert.Equal(t, 50, cfg.GetInt("max-steps"))
	assert.Equal(t, 250*time.Millisecond, cfg.GetDuration("planning-timeout"))
	assert.False(t, cfg.GetBool("verbose"))
	assert.Zero(t, cfg.GetInt("seed"))
	assert.Equal(t, "astar", cfg.GetStringDefault("planner", "astar"))
}

func TestSetGlobalAndCommandOptions(t *testing.T) {
	cfg := NewConfig()

	cfg.SetCommandOption("run", "max-steps", "30")
	cfg.SetGlobalOption("max-steps", "10")
	if got, ok := cfg.GetCommandOption("run", "max-steps"); !ok || got != "30" {
		t.Fatalf("expected command option to shadow global, got %q exists=%v", got, ok)
	}
}

func TestResolve(t *testing.T) {
	s := DefaultSchema()
	cfg := NewConfig()

	t.Setenv("TTMP_PLANNER", "")
	os.Unsetenv("TTMP_PLANNER")
	assert.Equal(t, "astar", s.Resolve(cfg, "planner"))
	assert.Equal(t, "200", s.Resolve(cfg, "max-steps"))
	assert.Equal(t, "", s.Resolve(cfg, "nope"))

	cfg.SetGlobalOption("planner", "bfs")
	assert.Equal(t, "bfs", s.Resolve(cfg, "planner"))
	cfg.SetCommandOption("run", "planner", "pabt")
	assert.Equal(t, "pabt", s.ResolveCommand(cfg, "run", "planner"))
	assert.Equal(t, "bfs", s.ResolveCommand(cfg, "plan", "planner"))
	assert.Equal(t, "false", s.ResolveCommand(cfg, "run", "render"))

	t.Setenv("TTMP_PLANNER", "fd-opt")
	assert.Equal(t, "fd-opt", s.Resolve(cfg, "planner"))
	assert.Equal(t, "fd-opt", s.ResolveCommand(cfg, "run", "planner"))
}

func TestSchemaHelp(t *testing.T) {
	s := DefaultSchema()
	assert.Equal(t, []string{"pddl", "plan", "run"}, s.Sections())
	assert.Len(t, s.SectionOptions("run"), 2)
	assert.Len(t, s.Options(), len(s.GlobalOptions())+5)

	help := s.FormatHelp()
	assert.Contains(t, help, "Global Options:\n")
	assert.Contains(t, help, "[run] Options:\n")
	assert.Contains(t, help, "default: astar, env: TTMP_PLANNER")
	assert.Contains(t, help, "type: duration")
}

func TestLoadFromPathMissing(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "missing-config"))
	if err != nil {
		t.Fatalf("expected no error loading missing config, got %v", err)
	}
	if len(cfg.Global) != 0 || len(cfg.Commands) != 0 {
		t.Fatalf("expected empty config for missing file, got %+v", cfg)
	}
}

func TestLoadFromPathRejectsSymlink(t *testing.T) {
	testutil.SkipIfWindows(t, testutil.DetectPlatform(t), "symlinks need privileges")
	dir := t.TempDir()
	target := filepath.Join(dir, "real")
	require.NoError(t, os.WriteFile(target, []byte("planner bfs\n"), 0600))
	link := filepath.Join(dir, "config")
	require.NoError(t, os.Symlink(target, link))

	_, err := LoadFromPath(link)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "symlink not allowed")
}

func TestLoadFromPathUnreadable(t *testing.T) {
	platform := testutil.DetectPlatform(t)
	testutil.SkipIfWindows(t, platform, "chmod does not restrict reads")
	testutil.SkipIfRoot(t, platform, "root bypasses chmod")
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte("seed 1\n"), 0o000))

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open config file")
}

func TestLoadUsesConfigPathEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte("episodes 7"), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv(ConfigEnv, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected load success, got %v", err)
	}
	assert.Equal(t, 7, cfg.GetInt("episodes"))
}

func TestGetConfigPathDefault(t *testing.T) {
	dir := t.TempDir()
	homeVar := "HOME"
	if runtime.GOOS == "windows" {
		homeVar = "USERPROFILE"
	}
	t.Setenv(homeVar, dir)
	t.Setenv(ConfigEnv, "")

	got, err := GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".ttmp", "config"), got)

	require.NoError(t, EnsureConfigDir())
	info, err := os.Stat(filepath.Join(dir, ".ttmp"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestValidateType(t *testing.T) {
	tests := []struct {
		typ     OptionType
		value   string
		wantErr bool
	}{
		{TypeString, "anything at all", false},
		{"", "untyped", false},
		{TypeBool, "on", false},
		{TypeBool, "maybe", true},
		{TypeInt, "12", false},
		{TypeInt, "twelve", true},
		{TypeDuration, "1m30s", false},
		{TypeDuration, "90", true},
		{"path-list", "/a:/b", true},
	}
	for _, tt := range tests {
		err := validateType(tt.typ, tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateType(%q, %q) = %v, wantErr %v", tt.typ, tt.value, err, tt.wantErr)
		}
	}
}
