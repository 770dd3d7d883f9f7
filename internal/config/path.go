package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// appDir is the directory name under the user config home.
const appDir = "planner"

var (
	getEnv      = os.Getenv
	userHomeDir = os.UserHomeDir
)

// GlobalConfigDir returns $XDG_CONFIG_HOME/planner, or ~/.config/planner
// when XDG_CONFIG_HOME is unset.
func GlobalConfigDir() (string, error) {
	if xdgHome := getEnv("XDG_CONFIG_HOME"); xdgHome != "" {
		return filepath.Join(xdgHome, appDir), nil
	}

	homeDir, err := userHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home dir: %w", err)
	}
	return filepath.Join(homeDir, ".config", appDir), nil
}

// GlobalConfigPath returns the user-wide planner.yaml.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configName+".yaml"), nil
}
