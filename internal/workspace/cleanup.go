package workspace

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"unmix/internal/logging"
)

// CleanStaleResult contains the outcome of a stale workspace sweep.
type CleanStaleResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanStale removes workspaces left behind by crashed or killed runs. Only
// directories carrying the workspace prefix and older than maxAge are
// touched, so unrelated temp files and live runs survive the sweep.
func CleanStale(parent string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	result := CleanStaleResult{}

	parent = strings.TrimSpace(parent)
	if parent == "" {
		parent = os.TempDir()
	}

	entries, err := os.ReadDir(parent)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: parent, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), Prefix) {
			continue
		}

		dirPath := filepath.Join(parent, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.RemoveAll(dirPath); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			if logger != nil {
				logger.Warn("failed to remove stale workspace",
					logging.String(logging.FieldPath, dirPath),
					logging.Error(err),
				)
			}
			continue
		}
		result.Removed = append(result.Removed, dirPath)
		if logger != nil {
			logger.Debug("removed stale workspace",
				logging.String(logging.FieldPath, dirPath),
				logging.Duration("age", time.Since(info.ModTime())),
			)
		}
	}

	return result
}
