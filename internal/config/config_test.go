package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"unmix/internal/config"
)

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	chdir(t, t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if want := filepath.Join(wd, "outputs"); cfg.Output.Dir != want {
		t.Fatalf("unexpected output dir: got %q want %q", cfg.Output.Dir, want)
	}
	if cfg.Output.Bitrate != "192k" {
		t.Fatalf("unexpected bitrate: %q", cfg.Output.Bitrate)
	}
	if cfg.Separation.Model != "htdemucs" {
		t.Fatalf("unexpected model: %q", cfg.Separation.Model)
	}
	if cfg.Separation.Device != "auto" {
		t.Fatalf("unexpected device: %q", cfg.Separation.Device)
	}
	if cfg.Workspace.KeepTemp {
		t.Fatal("expected keep_temp disabled by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadParsesAndNormalizesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[output]
dir = "` + filepath.Join(dir, "stems") + `"
bitrate = "320K"

[separation]
model = "  mdx_extra  "
device = "CUDA"

[workspace]
keep_temp = true

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Output.Bitrate != "320k" {
		t.Fatalf("expected lowercased bitrate, got %q", cfg.Output.Bitrate)
	}
	if cfg.Separation.Model != "mdx_extra" {
		t.Fatalf("expected trimmed model, got %q", cfg.Separation.Model)
	}
	if cfg.Separation.Device != "cuda" {
		t.Fatalf("expected lowercased device, got %q", cfg.Separation.Device)
	}
	if !cfg.Workspace.KeepTemp {
		t.Fatal("expected keep_temp true")
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging: %+v", cfg.Logging)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "bad device",
			content: "[separation]\ndevice = \"tpu\"\n",
			wantErr: "separation.device",
		},
		{
			name:    "bad bitrate",
			content: "[output]\nbitrate = \"fast\"\n",
			wantErr: "output.bitrate",
		},
		{
			name:    "bad log format",
			content: "[logging]\nformat = \"yaml\"\n",
			wantErr: "logging.format",
		},
		{
			name:    "bad log level",
			content: "[logging]\nlevel = \"verbose\"\n",
			wantErr: "logging.level",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadMissingExplicitPathUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected missing file to report exists=false")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Separation.Model != "htdemucs" {
		t.Fatalf("expected defaults, got model %q", cfg.Separation.Model)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load of sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	def := config.Default()
	if cfg.Separation.Model != def.Separation.Model {
		t.Fatalf("sample model %q differs from default %q", cfg.Separation.Model, def.Separation.Model)
	}
	if cfg.Output.Bitrate != def.Output.Bitrate {
		t.Fatalf("sample bitrate %q differs from default %q", cfg.Output.Bitrate, def.Output.Bitrate)
	}
}

func TestExpandPathTilde(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	got, err := config.ExpandPath("~/music/out")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	want := filepath.Join(tempHome, "music", "out")
	if got != want {
		t.Fatalf("ExpandPath = %q, want %q", got, want)
	}
}

// chdir changes the working directory for the duration of the test,
// matching the behavior of t.Chdir from newer Go releases.
func chdir(t *testing.T, dir string) {
	t.Helper()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			t.Fatalf("restore wd: %v", err)
		}
	})
}
