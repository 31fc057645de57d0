package demucs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeNoisyTool(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "noisy")
	script := `#!/bin/sh
(i=0; while [ $i -lt 300 ]; do echo "log line $i"; i=$((i+1)); done) &
i=0
while [ $i -lt 300 ]; do echo " $((i % 100))%|bar| $i/300" 1>&2; i=$((i+1)); done
wait
`
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write tool: %v", err)
	}
	return path
}

// Stdout and stderr are pumped simultaneously; every line must reach the
// callback exactly once and shared client state must stay consistent.
func TestCommandExecutorSerializesStreams(t *testing.T) {
	tool := writeNoisyTool(t)

	tail := tailBuffer{max: maxTailLines}
	lines := 0
	err := commandExecutor{}.Run(context.Background(), tool, nil, func(line string) {
		lines++
		if update, ok := parseProgress(line); ok {
			_ = update
			return
		}
		tail.Add(line)
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if lines != 600 {
		t.Fatalf("expected 600 delivered lines, got %d", lines)
	}
	if !strings.Contains(tail.String(), "log line") {
		t.Fatalf("expected tail to retain stdout diagnostics, got %q", tail.String())
	}
}

func TestCommandExecutorReportsExitFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken")
	script := "#!/bin/sh\necho 'Traceback: boom' 1>&2\nexit 1\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write tool: %v", err)
	}

	var got []string
	err := commandExecutor{}.Run(context.Background(), path, nil, func(line string) {
		got = append(got, line)
	})
	if err == nil {
		t.Fatal("expected error for failing tool")
	}
	if len(got) != 1 || !strings.Contains(got[0], "Traceback") {
		t.Fatalf("expected stderr captured before failure, got %v", got)
	}
}
