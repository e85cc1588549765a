package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// rotateFiles shifts numbered backups up by one ("episodic.1.log" becomes
// "episodic.2.log"), drops anything past maxBackups, then moves the current
// file into the ".1" slot. Shifting runs highest-first so no rename lands on
// an occupied name.
func rotateFiles(basePath string, maxBackups int) error {
	dir := filepath.Dir(basePath)
	ext := filepath.Ext(basePath)
	name := strings.TrimSuffix(filepath.Base(basePath), ext)
	prefix := name + "."

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var backups []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fname := entry.Name()
		if !strings.HasPrefix(fname, prefix) || !strings.HasSuffix(fname, ext) {
			continue
		}
		num, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(fname, prefix), ext))
		if err != nil {
			// Unrelated file that happens to share the prefix.
			continue
		}
		backups = append(backups, num)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(backups)))

	backupPath := func(num int) string {
		return filepath.Join(dir, fmt.Sprintf("%s.%d%s", name, num, ext))
	}
	for _, num := range backups {
		if num >= maxBackups {
			os.Remove(backupPath(num))
			continue
		}
		if err := os.Rename(backupPath(num), backupPath(num+1)); err != nil {
			return fmt.Errorf("rotating backup %d: %w", num, err)
		}
	}

	if _, err := os.Stat(basePath); err == nil {
		if err := os.Rename(basePath, backupPath(1)); err != nil {
			return fmt.Errorf("rotating current log: %w", err)
		}
	}

	return nil
}
