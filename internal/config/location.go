package config

import (
	"os"
	"path/filepath"
)

// ConfigEnv overrides the configuration file location.
const ConfigEnv = "TTMP_CONFIG"

// GetConfigPath returns the configuration file path using kubectl-style behavior.
// It first checks the TTMP_CONFIG environment variable, then falls back
// to the default location (~/.ttmp/config).
func GetConfigPath() (string, error) {
	if configPath := os.Getenv(ConfigEnv); configPath != "" {
		return configPath, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".ttmp", "config"), nil
}

// EnsureConfigDir ensures that the configuration directory exists.
func EnsureConfigDir() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	return os.MkdirAll(filepath.Dir(configPath), 0755)
}
