package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Progress captures one ffmpeg progress report.
type Progress struct {
	// Percent is 0-100 when the total duration is known, -1 otherwise.
	Percent float64
	// OutTime is how much media time ffmpeg has processed so far.
	OutTime time.Duration
	// Speed is ffmpeg's realtime multiplier, e.g. "12.4x".
	Speed string
	// Done reports that ffmpeg finished writing the output.
	Done bool
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

// Client wraps ffmpeg CLI interactions.
type Client struct {
	binary string
	exec   Executor
}

// New constructs an ffmpeg client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
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

// Decode converts input into a stereo 44.1 kHz 16-bit PCM WAV at output.
// total is the source duration used to derive percentages; pass zero when
// unknown and updates will carry Percent -1.
func (c *Client) Decode(ctx context.Context, input, output string, total time.Duration, progress func(Progress)) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("decode input path required")
	}
	if strings.TrimSpace(output) == "" {
		return errors.New("decode output path required")
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("create decode output dir: %w", err)
	}
	if err := c.run(ctx, decodeArgs(input, output, progress != nil), total, progress); err != nil {
		return fmt.Errorf("ffmpeg decode: %w", err)
	}
	return verifyOutput(output)
}

// Encode compresses a WAV at input into an MP3 at output using libmp3lame
// at the given bitrate (e.g. "192k").
func (c *Client) Encode(ctx context.Context, input, output, bitrate string, total time.Duration, progress func(Progress)) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("encode input path required")
	}
	if strings.TrimSpace(output) == "" {
		return errors.New("encode output path required")
	}
	if strings.TrimSpace(bitrate) == "" {
		return errors.New("encode bitrate required")
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("create encode output dir: %w", err)
	}
	if err := c.run(ctx, encodeArgs(input, output, bitrate, progress != nil), total, progress); err != nil {
		return fmt.Errorf("ffmpeg encode: %w", err)
	}
	return verifyOutput(output)
}

func (c *Client) run(ctx context.Context, args []string, total time.Duration, progress func(Progress)) error {
	parser := newProgressParser(total)
	tail := tailBuffer{max: maxTailLines}
	err := c.exec.Run(ctx, c.binary, args, func(line string) {
		if parser.Feed(line, progress) {
			return
		}
		tail.Add(line)
	})
	if err != nil {
		if detail := tail.String(); detail != "" {
			return fmt.Errorf("%w: %s", err, detail)
		}
		return err
	}
	return nil
}

// decodeArgs builds the argument list for the media-to-WAV conversion. -vn
// is an output option, as on the encode path, so only audio lands in the WAV.
func decodeArgs(input, output string, withProgress bool) []string {
	args := []string{"-y", "-hide_banner", "-nostdin", "-loglevel", "error"}
	if withProgress {
		args = append(args, "-progress", "pipe:1")
	}
	return append(args, "-i", input, "-vn", "-ac", "2", "-ar", "44100", "-c:a", "pcm_s16le", output)
}

// encodeArgs builds the argument list for the WAV-to-MP3 conversion.
func encodeArgs(input, output, bitrate string, withProgress bool) []string {
	args := []string{"-y", "-hide_banner", "-nostdin", "-loglevel", "error"}
	if withProgress {
		args = append(args, "-progress", "pipe:1")
	}
	return append(args, "-i", input, "-vn", "-codec:a", "libmp3lame", "-b:a", bitrate, output)
}

func verifyOutput(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("ffmpeg produced no output at %s", path)
	}
	if err != nil {
		return fmt.Errorf("inspect ffmpeg output: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("ffmpeg produced an empty file at %s", path)
	}
	return nil
}

const maxTailLines = 12

// tailBuffer retains the last few diagnostic lines so a failed run can
// report what ffmpeg printed.
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
