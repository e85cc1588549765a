package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func writeLog(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestRotateFiles(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "episodic.log")
	writeLog(t, base, "current")
	writeLog(t, filepath.Join(dir, "episodic.1.log"), "one")
	writeLog(t, filepath.Join(dir, "episodic.2.log"), "two")

	if err := rotateFiles(base, 5); err != nil {
		t.Fatalf("rotateFiles failed: %v", err)
	}

	if _, err := os.Stat(base); !os.IsNotExist(err) {
		t.Error("current log should have been moved aside")
	}
	for num, want := range map[string]string{"1": "current", "2": "one", "3": "two"} {
		data, err := os.ReadFile(filepath.Join(dir, "episodic."+num+".log"))
		if err != nil {
			t.Fatalf("backup %s missing: %v", num, err)
		}
		if string(data) != want {
			t.Errorf("backup %s = %q, want %q", num, data, want)
		}
	}
}

func TestRotateFilesDropsOldest(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "episodic.log")
	writeLog(t, base, "current")
	writeLog(t, filepath.Join(dir, "episodic.1.log"), "one")
	writeLog(t, filepath.Join(dir, "episodic.2.log"), "two")

	if err := rotateFiles(base, 2); err != nil {
		t.Fatalf("rotateFiles failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "episodic.3.log")); !os.IsNotExist(err) {
		t.Error("backup past the cap should have been removed")
	}
	data, err := os.ReadFile(filepath.Join(dir, "episodic.2.log"))
	if err != nil {
		t.Fatalf("backup 2 missing: %v", err)
	}
	if string(data) != "one" {
		t.Errorf("backup 2 = %q, want %q", data, "one")
	}
}

func TestRotateFilesIgnoresUnrelated(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "episodic.log")
	writeLog(t, base, "current")
	other := filepath.Join(dir, "episodic.old.log")
	writeLog(t, other, "keep")

	if err := rotateFiles(base, 5); err != nil {
		t.Fatalf("rotateFiles failed: %v", err)
	}

	data, err := os.ReadFile(other)
	if err != nil || string(data) != "keep" {
		t.Errorf("non-numbered sibling disturbed: %q, %v", data, err)
	}
}
