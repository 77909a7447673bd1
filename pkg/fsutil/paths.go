package fsutil

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppName is the directory name used below the platform base directories.
const AppName = "updflow"

// getAppDataDir returns the platform-specific base data directory
// On Linux: ~/.local/share
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
// XDG_DATA_HOME is read on every call so it can change after start-up.
func getAppDataDir() (string, error) {
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return xdgDataHome, nil
	}
	if xdg.DataHome == "" {
		return "", os.ErrNotExist
	}
	return xdg.DataHome, nil
}

// GetDataDir returns <data_dir>/updflow.
func GetDataDir() (string, error) {
	baseDir, err := getAppDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(baseDir, AppName), nil
}

// GetStateDir returns the directory holding the installed-package database.
// Format: <data_dir>/updflow/state/
func GetStateDir() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "state"), nil
}

// GetConfigDir returns <user_config_dir>/updflow.
func GetConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, AppName), nil
	}
	return filepath.Join(xdg.ConfigHome, AppName), nil
}
