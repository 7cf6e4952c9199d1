package config

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.wxbak.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".wxbak")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// LogDir returns the log directory.
func LogDir() string {
	return filepath.Join(BaseDir(), "logs")
}

// LogPath returns the daemon log file path.
func LogPath() string {
	return filepath.Join(LogDir(), "wxbakd.log")
}

// ResolvePath picks the config file: the flag value when set, then
// $WXBAK_CONFIG, then ConfigPath.
func ResolvePath(flagOverride string) string {
	if flagOverride != "" {
		return flagOverride
	}
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}
	return ConfigPath()
}
