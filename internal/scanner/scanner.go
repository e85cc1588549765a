// Package scanner collects the video files a plan will cover.
package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// defaultSkipPatterns matches samples, trailers and other extras that must
// never be renamed as episodes.
var defaultSkipPatterns = []string{
	"sample",
	"trailer",
	"featurette",
	"behind-the-scenes",
	"deleted-scenes",
	"extras/",
}

// Options controls one scan.
type Options struct {
	// Extensions lists accepted video extensions, dot included. Empty means
	// the stock set.
	Extensions []string
	Recursive  bool
	// MinSize filters out stubs and partial downloads, in bytes.
	MinSize int64
}

// DefaultOptions returns the stock scan options.
func DefaultOptions() Options {
	return Options{
		Extensions: []string{".mkv", ".mp4", ".avi", ".m4v", ".mov", ".wmv", ".ts"},
		Recursive:  true,
	}
}

// Result is the outcome of one scan.
type Result struct {
	// Files holds the accepted paths in lexical order.
	Files        []string
	FilesScanned int
	FilesSkipped int
	// TotalBytes sums the sizes of the accepted files.
	TotalBytes int64
	Errors     []error
	Duration   time.Duration
}

// Scan walks root and returns the video files eligible for renaming.
// Unreadable entries are recorded and skipped; the walk keeps going.
func Scan(ctx context.Context, root string, opts Options) (*Result, error) {
	start := time.Now()

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", root)
	}

	exts := make(map[string]bool, len(opts.Extensions))
	for _, e := range opts.Extensions {
		exts[strings.ToLower(e)] = true
	}
	if len(exts) == 0 {
		for _, e := range DefaultOptions().Extensions {
			exts[e] = true
		}
	}

	result := &Result{}
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("walk error %s: %w", path, err))
			return nil
		}

		if info.IsDir() {
			if path == root {
				return nil
			}
			if !opts.Recursive || strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if !exts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		result.FilesScanned++

		if isExtraContent(path) || info.Size() < opts.MinSize {
			result.FilesSkipped++
			return nil
		}

		result.Files = append(result.Files, path)
		result.TotalBytes += info.Size()
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(result.Files)
	result.Duration = time.Since(start)
	return result, nil
}

// isExtraContent checks if file is a sample, trailer, or other extra
func isExtraContent(path string) bool {
	lowerPath := strings.ToLower(path)
	for _, pattern := range defaultSkipPatterns {
		if strings.Contains(lowerPath, pattern) {
			return true
		}
	}
	return false
}
