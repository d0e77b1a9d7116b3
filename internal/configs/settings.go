package configs

import (
	"log"
	"os"
	"path/filepath"
)

type UserSettings struct {
	UserConfigsPath string
	UserDataPath    string
}

// UserCleanroomSettings holds the resolved filesystem locations for the
// current user. Tests override it to redirect config and journal files.
var UserCleanroomSettings *UserSettings

func init() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("error getting home directory: %s", err)
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		log.Fatalf("error getting config directory: %s", err)
	}

	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	UserCleanroomSettings = &UserSettings{
		UserConfigsPath: filepath.Join(configDir, "cleanroom"),
		UserDataPath:    filepath.Join(dataDir, "cleanroom"),
	}
}
