package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"unmix/internal/testsupport"
)

// cliEnv is a hermetic home for one CLI test: its own config file, output and
// workspace parents that do not exist until a run creates them, and a bin
// directory for stub tools.
type cliEnv struct {
	base       string
	configPath string
	outputDir  string
	workRoot   string
	mediaDir   string
	binDir     string
}

func setupCLIEnv(t *testing.T) *cliEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	env := &cliEnv{
		base:       base,
		configPath: filepath.Join(base, "config.toml"),
		outputDir:  filepath.Join(base, "outputs"),
		workRoot:   filepath.Join(base, "work"),
		mediaDir:   filepath.Join(base, "media"),
		binDir:     filepath.Join(base, "bin"),
	}
	for _, dir := range []string{env.mediaDir, env.binDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	writeCLIConfig(t, env)
	return env
}

func writeCLIConfig(t *testing.T, env *cliEnv) {
	t.Helper()
	content := fmt.Sprintf(`[output]
dir = %q
bitrate = "192k"

[separation]
model = "htdemucs"
device = "cpu"

[workspace]
root = %q

[logging]
level = "error"
format = "console"
`, env.outputDir, env.workRoot)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, env *cliEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeStub(t *testing.T, dir, name, script string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
}

// installStubTools puts working ffmpeg/ffprobe/demucs substitutes on PATH.
// The ffmpeg stub writes placeholder bytes to its final argument, the demucs
// stub copies a real sine WAV into the expected stem layout, so a run
// exercises the whole pipeline without the real tools installed.
func installStubTools(t *testing.T, env *cliEnv) {
	t.Helper()

	fixture := filepath.Join(env.base, "fixture.wav")
	testsupport.WriteSineWAV(t, fixture, 44100, 2, 4410)

	writeStub(t, env.binDir, "ffmpeg", `#!/bin/sh
for last; do :; done
printf 'stub-audio-data' > "$last"
`)
	writeStub(t, env.binDir, "ffprobe", `#!/bin/sh
printf '{"streams":[{"codec_type":"audio"}],"format":{"duration":"1.0"}}'
`)
	writeStub(t, env.binDir, "demucs", fmt.Sprintf(`#!/bin/sh
root=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-o" ]; then root="$a"; fi
  prev="$a"
done
track=$(basename "$prev")
track="${track%%.*}"
mkdir -p "$root/htdemucs/$track"
cp %q "$root/htdemucs/$track/vocals.wav"
cp %q "$root/htdemucs/$track/other.wav"
`, fixture, fixture))

	t.Setenv("PATH", env.binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
