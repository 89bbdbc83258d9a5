package config

import (
	"os"
	"path/filepath"
)

// DefaultDataDir returns the default directory for the embedded pebble
// store based on the host OS. The pipeline runs inside a user-facing
// application, so per-user locations are preferred; system directories
// are never used. Falls back to a dotdir in the user's home directory.
func DefaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return "./data"
	}

	// XDG (Linux) override
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "subasha")
	}

	// macOS: ~/Library/Application Support/Subasha
	if isDir(filepath.Join(homeDir, "Library")) {
		return filepath.Join(homeDir, "Library", "Application Support", "Subasha")
	}

	// Windows: %USERPROFILE%/AppData/Local/Subasha
	if isDir(filepath.Join(homeDir, "AppData")) {
		return filepath.Join(homeDir, "AppData", "Local", "Subasha")
	}

	// Fallback: ~/.subasha
	return filepath.Join(homeDir, ".subasha")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
