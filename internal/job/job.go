// Package job defines the per-run context object threaded through the
// extraction pipeline, from input validation to published stem names.
package job

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"unmix/internal/services"
	"unmix/internal/textutil"
)

// Stem names used for published outputs.
const (
	StemVocals       = "vocals"
	StemInstrumental = "instrumental"
)

// minInputBytes rejects obviously truncated files before ffmpeg sees them.
const minInputBytes = 1024

// Params are the knobs a single extraction run needs.
type Params struct {
	InputPath string
	OutputDir string
	Model     string
	Device    string
	Bitrate   string
	KeepTemp  bool
}

// Job carries the identity and derived names for one extraction run. It is
// immutable once created; stages receive it by pointer but only read it.
type Job struct {
	ID        string
	StartedAt time.Time
	Slug      string
	InputSize int64
	Params    Params
}

// New validates the input file, derives the filename slug, and stamps the job
// with a fresh identifier and start time. Validation failures carry the input
// error marker so the CLI reports them distinctly from tool failures.
func New(params Params) (*Job, error) {
	input, err := resolveInput(params.InputPath)
	if err != nil {
		return nil, err
	}

	info, err := validateInput(input)
	if err != nil {
		return nil, err
	}

	params.InputPath = input
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))

	return &Job{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Slug:      textutil.Slug(stem),
		InputSize: info.Size(),
		Params:    params,
	}, nil
}

// OutputName builds the published filename for a stem, shaped as
// <slug>_<yyyymmdd>_<stem>.mp3. The date comes from the job start so both
// stems of a run always share it.
func (j *Job) OutputName(stem string) string {
	return fmt.Sprintf("%s_%s_%s.mp3", j.Slug, j.StartedAt.Format("20060102"), stem)
}

// VocalsPath returns the destination path for the vocals stem.
func (j *Job) VocalsPath() string {
	return filepath.Join(j.Params.OutputDir, j.OutputName(StemVocals))
}

// InstrumentalPath returns the destination path for the instrumental stem.
func (j *Job) InstrumentalPath() string {
	return filepath.Join(j.Params.OutputDir, j.OutputName(StemInstrumental))
}

func resolveInput(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", services.Wrap(services.ErrInput, "validate", "resolve", "no input file given", nil)
	}
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			if path == "~" {
				path = home
			} else if len(path) > 1 && path[1] == '/' {
				path = filepath.Join(home, path[2:])
			}
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", services.Wrap(services.ErrInput, "validate", "resolve", fmt.Sprintf("cannot resolve input path %q", path), err)
	}
	return abs, nil
}

func validateInput(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrInput, "validate", "stat", fmt.Sprintf("input file not found: %s", path), nil)
		}
		return nil, services.Wrap(services.ErrInput, "validate", "stat", fmt.Sprintf("unable to read input file: %s", path), err)
	}
	if info.IsDir() {
		return nil, services.Wrap(services.ErrInput, "validate", "stat", fmt.Sprintf("input path is a directory, expected a media file: %s", path), nil)
	}
	if info.Size() < minInputBytes {
		return nil, services.Wrap(services.ErrInput, "validate", "size", fmt.Sprintf("input file looks too small to be a valid media file: %s", path), nil)
	}
	return info, nil
}
