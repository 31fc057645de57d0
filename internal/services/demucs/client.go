package demucs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"unmix/internal/services"
)

// Stems points at the files a completed separation produced.
type Stems struct {
	Vocals        string
	Accompaniment string
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onLine func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps demucs CLI interactions.
type Client struct {
	binary string
	exec   Executor
}

// New constructs a demucs client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("demucs binary required")
	}
	client := &Client{
		binary: binary,
		exec:   commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Separate runs demucs on wavPath in two-stems mode and returns the stem
// files it wrote under outRoot. device must already be resolved, not "auto".
func (c *Client) Separate(ctx context.Context, wavPath, outRoot, model, device string, progress func(ProgressUpdate)) (Stems, error) {
	if strings.TrimSpace(wavPath) == "" {
		return Stems{}, errors.New("separation input path required")
	}
	if strings.TrimSpace(outRoot) == "" {
		return Stems{}, errors.New("separation output root required")
	}
	if strings.TrimSpace(model) == "" {
		return Stems{}, errors.New("separation model required")
	}
	if strings.TrimSpace(device) == "" {
		return Stems{}, errors.New("separation device required")
	}
	if err := os.MkdirAll(outRoot, 0o755); err != nil {
		return Stems{}, fmt.Errorf("create separation root: %w", err)
	}

	tail := tailBuffer{max: maxTailLines}
	args := separateArgs(model, device, outRoot, wavPath)
	err := c.exec.Run(ctx, c.binary, args, func(line string) {
		if update, ok := parseProgress(line); ok {
			if progress != nil {
				progress(update)
			}
			return
		}
		tail.Add(line)
	})
	if err != nil {
		if ctx.Err() != nil {
			return Stems{}, ctx.Err()
		}
		return Stems{}, services.Wrap(classify(tail.String()), "separate", "run demucs", tail.String(), err)
	}

	return collectStems(outRoot, model, trackName(wavPath))
}

// separateArgs builds the demucs argument list for a two-stems vocals run.
func separateArgs(model, device, outRoot, wavPath string) []string {
	return []string{
		"-n", model,
		"--two-stems", "vocals",
		"--device", device,
		"-o", outRoot,
		wavPath,
	}
}

// collectStems locates the stem files demucs wrote for track. Older demucs
// releases name the accompaniment other.wav, newer two-stems runs use
// no_vocals.wav; both are accepted.
func collectStems(outRoot, model, track string) (Stems, error) {
	stemDir := filepath.Join(outRoot, model, track)
	missing := func() error {
		return services.Wrap(services.ErrStemsMissing, "separate", "collect stems",
			fmt.Sprintf("expected stems not found under %s (want vocals.wav plus other.wav or no_vocals.wav)", stemDir), nil)
	}

	vocals := filepath.Join(stemDir, "vocals.wav")
	if !fileExists(vocals) {
		return Stems{}, missing()
	}
	for _, name := range []string{"other.wav", "no_vocals.wav"} {
		candidate := filepath.Join(stemDir, name)
		if fileExists(candidate) {
			return Stems{Vocals: vocals, Accompaniment: candidate}, nil
		}
	}
	return Stems{}, missing()
}

// classify maps demucs output to a pipeline error marker. Matching is loose
// on purpose: demucs surfaces torch errors with different framing across
// versions.
func classify(output string) error {
	lowered := strings.ToLower(output)
	switch {
	case strings.Contains(lowered, "pretrained model"),
		strings.Contains(lowered, "modelloadingerror"):
		return services.ErrModelNotFound
	case strings.Contains(lowered, "out of memory"),
		strings.Contains(lowered, "memoryerror"):
		return services.ErrOutOfMemory
	case strings.Contains(lowered, "cuda is not available"),
		strings.Contains(lowered, "no cuda gpus are available"),
		strings.Contains(lowered, "torch not compiled with cuda"),
		strings.Contains(lowered, "mps backend"),
		strings.Contains(lowered, "invalid device"):
		return services.ErrDeviceUnavailable
	default:
		return services.ErrSeparation
	}
}

func trackName(wavPath string) string {
	base := filepath.Base(wavPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

const maxTailLines = 12

// tailBuffer retains the last few diagnostic lines so a failed run can
// report what demucs printed.
type tailBuffer struct {
	lines []string
	max   int
}

func (t *tailBuffer) Add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if len(t.lines) >= t.max {
		t.lines = t.lines[1:]
	}
	t.lines = append(t.lines, line)
}

func (t *tailBuffer) String() string {
	return strings.Join(t.lines, "; ")
}
