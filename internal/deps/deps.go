// Package deps inventories the external binaries the pipeline shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"unmix/internal/config"
	"unmix/internal/services"
)

// Requirement defines an external dependency unmix relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Default returns the requirements for a full extraction run. ffprobe is
// optional: without it the run proceeds but progress reporting loses the
// input duration.
func Default(cfg *config.Config) []Requirement {
	if cfg == nil {
		c := config.Default()
		cfg = &c
	}
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Decodes input media and encodes MP3 stems",
		},
		{
			Name:        "Demucs",
			Command:     cfg.SeparatorBinary(),
			Description: "Separates vocals from accompaniment (pip install demucs)",
		},
		{
			Name:        "ffprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Reads input duration for progress reporting",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// VerifyRequired checks every non-optional requirement and returns an
// environment error naming the first missing binary. Called before any
// workspace is created so a missing tool fails fast.
func VerifyRequired(requirements []Requirement) error {
	for _, status := range CheckBinaries(requirements) {
		if status.Optional || status.Available {
			continue
		}
		msg := fmt.Sprintf("missing dependency %q: install it and ensure it is in PATH", status.Command)
		return services.Wrap(services.ErrEnvironment, "preflight", "check binaries", msg, nil)
	}
	return nil
}
