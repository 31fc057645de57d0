package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEnvironment marks a missing external tool detected before any work starts.
	ErrEnvironment = errors.New("environment error")
	// ErrInput marks an unusable input file (missing, directory, truncated).
	ErrInput = errors.New("input error")
	// ErrDecode marks a failed conversion of the input into the intermediate format.
	ErrDecode = errors.New("decode error")
	// ErrModelNotFound marks a separation model the registry does not know.
	ErrModelNotFound = errors.New("model not found")
	// ErrDeviceUnavailable marks an explicitly requested compute device that is absent.
	ErrDeviceUnavailable = errors.New("device unavailable")
	// ErrOutOfMemory marks a separation run that exhausted device or host memory.
	ErrOutOfMemory = errors.New("out of memory")
	// ErrSeparation marks any other failure during model inference.
	ErrSeparation = errors.New("separation error")
	// ErrStemsMissing marks a separation run that exited cleanly but produced no stems.
	ErrStemsMissing = errors.New("stem files missing")
	// ErrStemWrite marks a failure to serialize a stem buffer to disk.
	ErrStemWrite = errors.New("stem write error")
	// ErrEncode marks a failed compression of a stem file into the delivery format.
	ErrEncode = errors.New("encode error")
	// ErrPublish marks a failure to move a finished output into the output directory.
	ErrPublish = errors.New("publish error")
)

// Process exit codes, matched to the error taxonomy. Anything unclassified
// exits with ExitFailure.
const (
	ExitFailure      = 2
	ExitEnvironment  = 3
	ExitInput        = 4
	ExitExternalTool = 10
	ExitStemsMissing = 11
	ExitUnexpected   = 99
	ExitInterrupted  = 130
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrSeparation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitCode maps a pipeline error to the process exit code the CLI should
// report. A nil error maps to zero.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, ErrEnvironment):
		return ExitEnvironment
	case errors.Is(err, ErrInput):
		return ExitInput
	case errors.Is(err, ErrStemsMissing):
		return ExitStemsMissing
	case errors.Is(err, ErrDecode),
		errors.Is(err, ErrModelNotFound),
		errors.Is(err, ErrDeviceUnavailable),
		errors.Is(err, ErrOutOfMemory),
		errors.Is(err, ErrSeparation),
		errors.Is(err, ErrStemWrite),
		errors.Is(err, ErrEncode),
		errors.Is(err, ErrPublish):
		return ExitExternalTool
	default:
		return ExitFailure
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
