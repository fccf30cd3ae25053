package command

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joeycumines/task-then-motion-planning/internal/config"
)

// logConfig holds resolved logging configuration for commands that plan.
type logConfig struct {
	level   slog.Level
	logFile io.WriteCloser // nil if no file logging
}

// resolveLogConfig resolves log configuration from flags and config defaults.
// Flag values take precedence; config values (environment first, then the
// file) are used when flags are empty. verbose lowers an info level to
// debug. The caller must Close the returned logConfig.
func resolveLogConfig(flagPath, flagLevel string, verbose bool, cfg *config.Config) (logConfig, error) {
	schema := config.DefaultSchema()
	var lc logConfig

	resolveStr := func(key string) string {
		if cfg == nil {
			return ""
		}
		return schema.Resolve(cfg, key)
	}

	// flag → config → "info"
	levelStr := flagLevel
	if levelStr == "" {
		levelStr = resolveStr("log.level")
	}
	switch strings.ToLower(levelStr) {
	case "debug":
		lc.level = slog.LevelDebug
	case "info", "":
		lc.level = slog.LevelInfo
	case "warn":
		lc.level = slog.LevelWarn
	case "error":
		lc.level = slog.LevelError
	default:
		return lc, fmt.Errorf("invalid log level: %s", levelStr)
	}
	if verbose && lc.level > slog.LevelDebug {
		lc.level = slog.LevelDebug
	}

	logPath := flagPath
	if logPath == "" {
		logPath = resolveStr("log.file")
	}
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return lc, fmt.Errorf("failed to open log file %s: %w", logPath, err)
		}
		lc.logFile = f
	}

	return lc, nil
}

// logger returns a JSON logger writing to the log file if one is
// configured, otherwise a text logger writing to stderr.
func (lc logConfig) logger(stderr io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: lc.level}
	if lc.logFile != nil {
		return slog.New(slog.NewJSONHandler(lc.logFile, opts))
	}
	return slog.New(slog.NewTextHandler(stderr, opts))
}

func (lc logConfig) Close() error {
	if lc.logFile == nil {
		return nil
	}
	return lc.logFile.Close()
}

// settings resolves a command's option defaults from the config: the
// command section, then global options, then the schema default.
type settings struct {
	cfg     *config.Config
	command string
	schema  *config.ConfigSchema
}

func newSettings(cfg *config.Config, command string) settings {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return settings{cfg: cfg, command: command, schema: config.DefaultSchema()}
}

func (s settings) getString(key string) string {
	return s.schema.ResolveCommand(s.cfg, s.command, key)
}

// getInt falls back to the schema default when the configured value is not an
// integer; the config loader has already warned about it.
func (s settings) getInt(key string) int {
	if v, err := strconv.Atoi(s.getString(key)); err == nil {
		return v
	}
	if opt := s.schema.Lookup("", key); opt != nil {
		v, _ := strconv.Atoi(opt.Default)
		return v
	}
	return 0
}

func (s settings) getBool(key string) bool {
	switch strings.ToLower(s.getString(key)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

func (s settings) getDuration(key string) time.Duration {
	d, _ := time.ParseDuration(s.getString(key))
	return d
}
