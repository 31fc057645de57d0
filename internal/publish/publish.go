// Package publish moves finished outputs from the workspace into the output
// directory. Both stems of a job are published under one directory lock so
// they appear together and concurrent jobs cannot interleave partial pairs.
package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"log/slog"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"unmix/internal/fileutil"
	"unmix/internal/logging"
)

// LockFileName is the per-directory lock file guarding publishes.
const LockFileName = ".unmix.lock"

const lockRetryDelay = 250 * time.Millisecond

// renameFile is swapped in tests to exercise the cross-filesystem fallback
// and rename failure paths.
var renameFile = os.Rename

// Request names one staged file and its final path in the output directory.
type Request struct {
	Source string
	Target string
}

// Publisher performs locked, atomic moves into an output directory.
type Publisher struct {
	logger *slog.Logger
}

// New constructs a publisher. A nil logger disables logging.
func New(logger *slog.Logger) *Publisher {
	return &Publisher{logger: logging.NewComponentLogger(logger, "publish")}
}

// Publish moves the staged outputs into outputDir. All requests are staged
// as hidden temp files inside outputDir first, so the final renames never
// cross filesystems and either every output lands or none does. Existing
// files at the target paths are overwritten atomically.
func (p *Publisher) Publish(ctx context.Context, outputDir string, requests ...Request) error {
	if strings.TrimSpace(outputDir) == "" {
		return errors.New("output directory required")
	}
	if len(requests) == 0 {
		return errors.New("nothing to publish")
	}
	for _, req := range requests {
		if strings.TrimSpace(req.Source) == "" || strings.TrimSpace(req.Target) == "" {
			return errors.New("publish request requires source and target")
		}
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	lock := flock.New(filepath.Join(outputDir, LockFileName))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire output dir lock: %w", err)
	}
	if !locked {
		return errors.New("output dir lock unavailable")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			p.logger.Warn("failed to release output dir lock",
				logging.Error(err),
				logging.String(logging.FieldPath, lock.Path()))
		}
	}()

	// Refuse targets that cannot be renamed over before anything moves, so
	// the common failure mode never strands a half-published pair.
	for _, req := range requests {
		if info, err := os.Stat(req.Target); err == nil && info.IsDir() {
			return fmt.Errorf("publish target %s: a directory is in the way", req.Target)
		}
	}

	staged := make([]string, 0, len(requests))
	cleanupStaged := func() {
		for _, path := range staged {
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				p.logger.Warn("failed to remove staged publish file",
					logging.Error(err),
					logging.String(logging.FieldPath, path))
			}
		}
	}

	for _, req := range requests {
		tmp := filepath.Join(outputDir, ".unmix-"+uuid.NewString()+".tmp")
		if err := p.moveInto(req.Source, tmp); err != nil {
			cleanupStaged()
			return fmt.Errorf("stage %s: %w", filepath.Base(req.Target), err)
		}
		staged = append(staged, tmp)
	}

	for i, req := range requests {
		if err := renameFile(staged[i], req.Target); err != nil {
			// Withdraw the outputs already placed so the caller never sees a
			// partial pair in the output directory.
			for j := 0; j < i; j++ {
				if rbErr := renameFile(requests[j].Target, staged[j]); rbErr != nil {
					p.logger.Warn("failed to withdraw published file",
						logging.Error(rbErr),
						logging.String(logging.FieldPath, requests[j].Target))
				}
			}
			cleanupStaged()
			return fmt.Errorf("publish %s: %w", filepath.Base(req.Target), err)
		}
	}
	return nil
}

// moveInto renames source to dest, falling back to a verified copy when the
// rename crosses filesystems.
func (p *Publisher) moveInto(source, dest string) error {
	renameErr := renameFile(source, dest)
	if renameErr == nil {
		return nil
	}
	var linkErr *os.LinkError
	if errors.As(renameErr, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		if err := fileutil.CopyFileVerified(source, dest); err != nil {
			return fmt.Errorf("copy across filesystems: %w", err)
		}
		if err := os.Remove(source); err != nil && !errors.Is(err, os.ErrNotExist) {
			// Leftover source sits in the workspace and gets swept with it.
			p.logger.Warn("failed to remove source file after copy",
				logging.Error(err),
				logging.String(logging.FieldPath, source))
		}
		return nil
	}
	return renameErr
}
