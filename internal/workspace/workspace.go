// Package workspace manages the temporary directory a single extraction run
// works inside: the decoded intermediate, the separator output tree, the
// rewritten stem files, and the encoded MP3s awaiting publish.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"unmix/internal/logging"
)

// Prefix marks every workspace directory so stale ones are recognizable.
const Prefix = "unmix-"

// Workspace is the on-disk scratch area for one run. All intermediate
// artifacts live under Root; nothing here survives a successful run unless
// retention was requested.
type Workspace struct {
	Root string

	keep    bool
	logger  *slog.Logger
	cleanup sync.Once
}

// Create allocates a fresh workspace under parent (the system temp directory
// when parent is empty) and lays out its subdirectories.
func Create(parent string, keep bool, logger *slog.Logger) (*Workspace, error) {
	root, err := os.MkdirTemp(strings.TrimSpace(parent), Prefix)
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	ws := &Workspace{Root: root, keep: keep, logger: logging.NewComponentLogger(logger, "workspace")}
	for _, dir := range []string{ws.audioDir(), ws.SeparatedRoot(), ws.stemsDir(), ws.encodeDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			os.RemoveAll(root)
			return nil, fmt.Errorf("layout workspace: %w", err)
		}
	}
	return ws, nil
}

// IntermediatePath is the decoded WAV the separator consumes.
func (w *Workspace) IntermediatePath(slug string) string {
	return filepath.Join(w.audioDir(), slug+".wav")
}

// SeparatedRoot is handed to the separator as its output root; the tool
// creates <model>/<track>/ underneath it.
func (w *Workspace) SeparatedRoot() string {
	return filepath.Join(w.Root, "separated")
}

// StemPath is where the stem writer serializes a named stem buffer.
func (w *Workspace) StemPath(name string) string {
	return filepath.Join(w.stemsDir(), name+".wav")
}

// EncodePath is the staging location for an encoded MP3 before publish.
func (w *Workspace) EncodePath(finalName string) string {
	return filepath.Join(w.encodeDir(), finalName)
}

func (w *Workspace) audioDir() string  { return filepath.Join(w.Root, "audio") }
func (w *Workspace) stemsDir() string  { return filepath.Join(w.Root, "stems") }
func (w *Workspace) encodeDir() string { return filepath.Join(w.Root, "encode") }

// Cleanup removes the workspace. It is safe to call any number of times and
// on any exit path; failures are logged rather than surfaced because a
// leftover temp directory must not fail an otherwise finished job. With
// retention enabled it only logs where the workspace was kept.
func (w *Workspace) Cleanup() {
	if w == nil {
		return
	}
	w.cleanup.Do(func() {
		logger := w.logger
		if logger == nil {
			logger = logging.NewNop()
		}
		if w.keep {
			logger.Info("kept temp workspace", logging.String(logging.FieldPath, w.Root))
			return
		}
		if err := os.RemoveAll(w.Root); err != nil {
			logger.Warn("failed to remove temp workspace",
				logging.String(logging.FieldPath, w.Root),
				logging.Error(err),
			)
			return
		}
		logger.Debug("removed temp workspace", logging.String(logging.FieldPath, w.Root))
	})
}
