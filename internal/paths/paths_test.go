package paths

import (
	"os"
	"os/user"
	"path/filepath"
	"testing"
)

func TestUserHomeDir_NoSudo(t *testing.T) {
	os.Unsetenv("SUDO_USER")

	got, err := UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir() error = %v", err)
	}

	expected, _ := os.UserHomeDir()
	if got != expected {
		t.Errorf("UserHomeDir() = %q, want %q", got, expected)
	}
}

func TestUserHomeDir_WithSudoUser(t *testing.T) {
	currentUser, err := user.Current()
	if err != nil {
		t.Skip("Cannot get current user")
	}

	os.Setenv("SUDO_USER", currentUser.Username)
	defer os.Unsetenv("SUDO_USER")

	got, err := UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir() error = %v", err)
	}

	if got != currentUser.HomeDir {
		t.Errorf("UserHomeDir() = %q, want %q", got, currentUser.HomeDir)
	}
}

func TestUserHomeDir_SudoUserRoot(t *testing.T) {
	// SUDO_USER=root should be ignored
	os.Setenv("SUDO_USER", "root")
	defer os.Unsetenv("SUDO_USER")

	got, err := UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir() error = %v", err)
	}

	expected, _ := os.UserHomeDir()
	if got != expected {
		t.Errorf("UserHomeDir() = %q, want %q", got, expected)
	}
}

func TestUserHomeDir_NonexistentUser(t *testing.T) {
	// A SUDO_USER that cannot be looked up falls back to the current user
	os.Setenv("SUDO_USER", "nonexistent_user_12345")
	defer os.Unsetenv("SUDO_USER")

	got, err := UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir() error = %v", err)
	}

	expected, _ := os.UserHomeDir()
	if got != expected {
		t.Errorf("UserHomeDir() = %q, want %q", got, expected)
	}
}

func TestAppPaths(t *testing.T) {
	os.Unsetenv("SUDO_USER")

	home, err := UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir() error = %v", err)
	}
	appDir := filepath.Join(home, ".config", "episodic")

	tests := []struct {
		name string
		fn   func() (string, error)
		want string
	}{
		{"AppDir", AppDir, appDir},
		{"ConfigPath", ConfigPath, filepath.Join(appDir, "config.toml")},
		{"JournalPath", JournalPath, filepath.Join(appDir, "journal.db")},
		{"PlansDir", PlansDir, filepath.Join(appDir, "plans")},
		{"LogsDir", LogsDir, filepath.Join(appDir, "logs")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn()
			if err != nil {
				t.Fatalf("%s() error = %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("%s() = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}
