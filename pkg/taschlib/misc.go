package taschlib

import (
	"errors"
	"os"
	"path/filepath"
)

// ConfigDirEnv overrides the default configuration directory.
const ConfigDirEnv = "TASCHED_CONFIG_DIR"

const (
	settingsFileName = "settings.json"
	databaseFileName = "tasched.db"
	logFileName      = "tasched.log"
)

var (
	// ConfigDir is the absolute path of the tasched configuration directory.
	ConfigDir string
	// HooksDir holds the JavaScript hook files loaded by the daemon.
	HooksDir string
)

func init() {
	dir := os.Getenv(ConfigDirEnv)
	if dir == "" {
		dir = defaultConfigDir()
	}
	if err := setConfigDir(dir); err != nil {
		panic(err)
	}
}

func defaultConfigDir() string {
	cdr, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "tasched")
	}
	return filepath.Join(cdr, "tasched")
}

func setConfigDir(dir string) error {
	if dir == "" {
		return errors.New("config dir is empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return err
	}
	ConfigDir = abs
	HooksDir = filepath.Join(abs, "hooks")
	return nil
}

// SetConfigDir points ConfigDir at dir, creating it when missing.
func SetConfigDir(dir string) error {
	return setConfigDir(dir)
}

func SettingsPath() string { return filepath.Join(ConfigDir, settingsFileName) }

func DatabasePath() string { return filepath.Join(ConfigDir, databaseFileName) }

func LogPath() string { return filepath.Join(ConfigDir, logFileName) }
