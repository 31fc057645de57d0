package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"unmix/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrEncode, "encode", "vocals", "ffmpeg failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrEncode) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"encode", "vocals", "ffmpeg failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "separate", "run", "model crashed", nil)
	if !errors.Is(err, services.ErrSeparation) {
		t.Fatalf("expected separation marker by default, got %v", err)
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := services.Wrap(services.ErrInput, "", "", "", nil)
	if !strings.Contains(err.Error(), "pipeline failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"environment", services.Wrap(services.ErrEnvironment, "preflight", "probe", "ffmpeg missing", nil), services.ExitEnvironment},
		{"input", services.Wrap(services.ErrInput, "validate", "stat", "no such file", nil), services.ExitInput},
		{"decode", services.Wrap(services.ErrDecode, "decode", "run", "exit 1", nil), services.ExitExternalTool},
		{"model", services.Wrap(services.ErrModelNotFound, "separate", "run", "unknown model", nil), services.ExitExternalTool},
		{"device", services.Wrap(services.ErrDeviceUnavailable, "separate", "resolve", "cuda absent", nil), services.ExitExternalTool},
		{"oom", services.Wrap(services.ErrOutOfMemory, "separate", "run", "CUDA out of memory", nil), services.ExitExternalTool},
		{"separation", services.Wrap(services.ErrSeparation, "separate", "run", "exit 1", nil), services.ExitExternalTool},
		{"stems", services.Wrap(services.ErrStemsMissing, "separate", "collect", "vocals.wav absent", nil), services.ExitStemsMissing},
		{"stemwrite", services.Wrap(services.ErrStemWrite, "write", "vocals", "disk full", nil), services.ExitExternalTool},
		{"encode", services.Wrap(services.ErrEncode, "encode", "run", "exit 1", nil), services.ExitExternalTool},
		{"publish", services.Wrap(services.ErrPublish, "publish", "rename", "cross-device", nil), services.ExitExternalTool},
		{"canceled", context.Canceled, services.ExitInterrupted},
		{"unclassified", errors.New("boom"), services.ExitFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.ExitCode(tc.err); got != tc.want {
				t.Fatalf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestExitCodeWrappedCancellation(t *testing.T) {
	err := services.Wrap(services.ErrSeparation, "separate", "run", "interrupted", context.Canceled)
	if got := services.ExitCode(err); got != services.ExitInterrupted {
		t.Fatalf("expected cancellation to win, got %d", got)
	}
}
