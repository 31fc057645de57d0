package testsupport

import (
	"path/filepath"
	"testing"

	"unmix/internal/config"
	"unmix/internal/job"
)

// NewJob creates a job backed by a real input fixture under the config's
// base directory. name becomes the input filename, e.g. "My Song.flac".
func NewJob(t testing.TB, cfg *config.Config, name string) *job.Job {
	t.Helper()

	if name == "" {
		name = "test-track.flac"
	}
	input := filepath.Join(BaseDir(cfg), "media", name)
	WriteFile(t, input, 64*1024)

	j, err := job.New(job.Params{
		InputPath: input,
		OutputDir: cfg.Output.Dir,
		Model:     cfg.Separation.Model,
		Device:    cfg.Separation.Device,
		Bitrate:   cfg.Output.Bitrate,
	})
	if err != nil {
		t.Fatalf("job.New: %v", err)
	}
	return j
}
