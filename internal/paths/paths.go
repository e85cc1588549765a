// Package paths provides sudo-aware path resolution.
//
// When running with sudo, these functions resolve paths to the original
// user's directories (via SUDO_USER) instead of root's, so plans, logs and
// the rename journal stay with the user who owns the media.
package paths

import (
	"os"
	"os/user"
	"path/filepath"
)

// UserHomeDir returns the home directory of the actual user.
// If running with sudo, returns the SUDO_USER's home directory, not root's.
func UserHomeDir() (string, error) {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" && sudoUser != "root" {
		u, err := user.Lookup(sudoUser)
		if err == nil {
			return u.HomeDir, nil
		}
		// Fall through if lookup fails
	}

	return os.UserHomeDir()
}

// UserConfigDir returns the config directory of the actual user.
// On Linux this is typically ~/.config
func UserConfigDir() (string, error) {
	homeDir, err := UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config"), nil
}

// AppDir returns the episodic config directory.
// This is ~/.config/episodic for the actual user.
func AppDir() (string, error) {
	configDir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "episodic"), nil
}

// ConfigPath returns the path to the config file.
// This is ~/.config/episodic/config.toml for the actual user.
func ConfigPath() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// JournalPath returns the path to the rename journal database.
// This is ~/.config/episodic/journal.db for the actual user.
func JournalPath() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "journal.db"), nil
}

// PlansDir returns the directory for saved plan files.
// This is ~/.config/episodic/plans for the actual user.
func PlansDir() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "plans"), nil
}

// LogsDir returns the directory for log files.
// This is ~/.config/episodic/logs for the actual user.
func LogsDir() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs"), nil
}

// ActualUser returns the actual username (not root when using sudo).
func ActualUser() string {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" && sudoUser != "root" {
		return sudoUser
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "unknown"
}
