// Package testutil provides cross-platform testing utilities: platform
// detection, and executable stand-ins for external programs.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// Platform captures the current test execution environment.
type Platform struct {
	IsUnix    bool
	IsWindows bool
	IsRoot    bool
	UID       int
}

// DetectPlatform inspects the current runtime environment.
//
// Example usage:
//
//	platform := DetectPlatform(t)
//	SkipIfWindows(t, platform, "needs a POSIX shell")
func DetectPlatform(t testing.TB) Platform {
	uid := os.Geteuid()

	platform := Platform{
		IsUnix:    runtime.GOOS != "windows",
		IsWindows: runtime.GOOS == "windows",
		IsRoot:    uid == 0,
		UID:       uid,
	}

	t.Logf("Platform detection: OS=%s, UID=%d, IsRoot=%v", runtime.GOOS, uid, platform.IsRoot)

	return platform
}

// SkipIfRoot marks the test as skipped if running as root user.
// Root bypasses chmod, so permission failures cannot be simulated.
func SkipIfRoot(t testing.TB, platform Platform, reason string) {
	if platform.IsRoot {
		t.Skipf("Skipping test - %s (requires non-root user, running as UID 0)", reason)
	}
}

// SkipIfWindows marks the test as skipped on Windows platforms.
func SkipIfWindows(t testing.TB, platform Platform, reason string) {
	if platform.IsWindows {
		t.Skipf("Skipping test - %s (Windows platform detected)", reason)
	}
}

// WriteScript writes an executable POSIX shell script with the given body
// into a fresh temporary directory, and returns its path. The test is
// skipped on Windows.
func WriteScript(t testing.TB, name, body string) string {
	t.Helper()
	SkipIfWindows(t, DetectPlatform(t), "shell scripts need a POSIX shell")
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("failed to write script %s: %v", path, err)
	}
	return path
}
