package settings

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	appName = "mdwiki"

	// DataDirEnv overrides the data directory on every platform.
	DataDirEnv = "MDWIKI_DATA_DIR"
)

// DefaultDataDir returns where mdwiki keeps its settings, config and log.
//
//   - macOS:   ~/Library/Application Support/mdwiki
//   - Linux:   $XDG_DATA_HOME/mdwiki (fallback ~/.local/share/mdwiki)
//   - Windows: %LOCALAPPDATA%\mdwiki (fallback %APPDATA%\mdwiki)
//
// $MDWIKI_DATA_DIR wins over all of these.
func DefaultDataDir() string {
	if dir := os.Getenv(DataDirEnv); dir != "" {
		return dir
	}
	return dataDirForOS(runtime.GOOS)
}

// SettingsPath is the recent-folders file inside dataDir.
func SettingsPath(dataDir string) string {
	return filepath.Join(dataDir, "settings.yaml")
}

// ConfigPath is the user config file inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config.yaml")
}

// LogPath is the default log file inside dataDir.
func LogPath(dataDir string) string {
	return filepath.Join(dataDir, "mdwiki.log")
}

func dataDirForOS(goos string) string {
	home, _ := os.UserHomeDir()

	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", appName)
	case "windows":
		for _, env := range []string{"LOCALAPPDATA", "APPDATA"} {
			if dir := os.Getenv(env); dir != "" {
				return filepath.Join(dir, appName)
			}
		}
		return filepath.Join(home, appName)
	default:
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
			return filepath.Join(dir, appName)
		}
		return filepath.Join(home, ".local", "share", appName)
	}
}
