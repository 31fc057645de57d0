package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

type fakeExecutor struct {
	binary string
	args   []string
	lines  []string
	err    error
}

func (f *fakeExecutor) Run(_ context.Context, binary string, args []string, onLine func(string)) error {
	f.binary = binary
	f.args = append([]string(nil), args...)
	for _, line := range f.lines {
		onLine(line)
	}
	return f.err
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty binary")
	}
	if _, err := New("   "); err == nil {
		t.Fatal("expected error for blank binary")
	}
}

func TestDecodeArgs(t *testing.T) {
	got := decodeArgs("/in/song.mp4", "/ws/audio/song.wav", false)
	want := []string{
		"-y", "-hide_banner", "-nostdin", "-loglevel", "error",
		"-i", "/in/song.mp4",
		"-vn", "-ac", "2", "-ar", "44100", "-c:a", "pcm_s16le",
		"/ws/audio/song.wav",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("decode args mismatch:\n got %v\nwant %v", got, want)
	}

	withProgress := decodeArgs("/in/song.mp4", "/ws/audio/song.wav", true)
	wantProgress := []string{
		"-y", "-hide_banner", "-nostdin", "-loglevel", "error",
		"-progress", "pipe:1",
		"-i", "/in/song.mp4",
		"-vn", "-ac", "2", "-ar", "44100", "-c:a", "pcm_s16le",
		"/ws/audio/song.wav",
	}
	if !reflect.DeepEqual(withProgress, wantProgress) {
		t.Fatalf("decode args with progress mismatch:\n got %v\nwant %v", withProgress, wantProgress)
	}
}

func TestEncodeArgs(t *testing.T) {
	got := encodeArgs("/ws/stems/vocals.wav", "/ws/encode/out.mp3", "192k", false)
	want := []string{
		"-y", "-hide_banner", "-nostdin", "-loglevel", "error",
		"-i", "/ws/stems/vocals.wav",
		"-vn", "-codec:a", "libmp3lame", "-b:a", "192k",
		"/ws/encode/out.mp3",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("encode args mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestDecodeValidatesPaths(t *testing.T) {
	exec := &fakeExecutor{}
	client, err := New("ffmpeg", WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := client.Decode(context.Background(), "", "/tmp/out.wav", 0, nil); err == nil {
		t.Fatal("expected error for empty input")
	}
	if err := client.Decode(context.Background(), "/tmp/in.mp4", "", 0, nil); err == nil {
		t.Fatal("expected error for empty output")
	}
	if exec.binary != "" {
		t.Fatal("executor should not run when validation fails")
	}
}

func TestEncodeValidatesBitrate(t *testing.T) {
	client, err := New("ffmpeg", WithExecutor(&fakeExecutor{}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := client.Encode(context.Background(), "/tmp/in.wav", "/tmp/out.mp3", "", 0, nil); err == nil {
		t.Fatal("expected error for empty bitrate")
	}
}

func TestDecodeReportsProgress(t *testing.T) {
	tempDir := t.TempDir()
	output := filepath.Join(tempDir, "audio", "song.wav")
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		t.Fatalf("prepare output dir: %v", err)
	}
	if err := os.WriteFile(output, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("prepare output file: %v", err)
	}

	exec := &fakeExecutor{lines: []string{
		"frame=1",
		"out_time_us=2500000",
		"speed=25x",
		"progress=continue",
		"out_time_us=10000000",
		"speed=24x",
		"progress=end",
	}}
	client, err := New("ffmpeg", WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	var updates []Progress
	err = client.Decode(context.Background(), "/in/song.mp4", output, 10*time.Second, func(p Progress) {
		updates = append(updates, p)
	})
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}

	if exec.binary != "ffmpeg" {
		t.Fatalf("expected ffmpeg binary, got %q", exec.binary)
	}
	if len(updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(updates))
	}
	if updates[0].Percent != 25 {
		t.Fatalf("expected first update at 25%%, got %f", updates[0].Percent)
	}
	if updates[0].OutTime != 2500*time.Millisecond {
		t.Fatalf("expected out time 2.5s, got %s", updates[0].OutTime)
	}
	if updates[0].Speed != "25x" {
		t.Fatalf("expected speed 25x, got %q", updates[0].Speed)
	}
	if updates[0].Done {
		t.Fatal("first update should not be done")
	}
	if !updates[1].Done || updates[1].Percent != 100 {
		t.Fatalf("expected final update done at 100%%, got %+v", updates[1])
	}
}

func TestDecodeRequestsProgressOnlyWithCallback(t *testing.T) {
	tempDir := t.TempDir()
	output := filepath.Join(tempDir, "song.wav")
	if err := os.WriteFile(output, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("prepare output file: %v", err)
	}

	exec := &fakeExecutor{}
	client, err := New("ffmpeg", WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := client.Decode(context.Background(), "/in/song.mp4", output, 0, nil); err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	for _, arg := range exec.args {
		if arg == "-progress" {
			t.Fatalf("expected no -progress flag without callback, got %v", exec.args)
		}
	}
}

func TestDecodeMissingOutputFails(t *testing.T) {
	tempDir := t.TempDir()
	output := filepath.Join(tempDir, "never-written.wav")

	client, err := New("ffmpeg", WithExecutor(&fakeExecutor{}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	err = client.Decode(context.Background(), "/in/song.mp4", output, 0, nil)
	if err == nil {
		t.Fatal("expected error when output file missing")
	}
	if !strings.Contains(err.Error(), "no output") {
		t.Fatalf("expected missing-output error, got %v", err)
	}
}

func TestDecodeEmptyOutputFails(t *testing.T) {
	tempDir := t.TempDir()
	output := filepath.Join(tempDir, "empty.wav")
	if err := os.WriteFile(output, nil, 0o644); err != nil {
		t.Fatalf("prepare output file: %v", err)
	}

	client, err := New("ffmpeg", WithExecutor(&fakeExecutor{}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	err = client.Decode(context.Background(), "/in/song.mp4", output, 0, nil)
	if err == nil || !strings.Contains(err.Error(), "empty file") {
		t.Fatalf("expected empty-output error, got %v", err)
	}
}

func TestDecodeFailureIncludesDiagnostics(t *testing.T) {
	exec := &fakeExecutor{
		lines: []string{
			"out_time_us=1000000",
			"progress=continue",
			"/in/song.mp4: Invalid data found when processing input",
		},
		err: errors.New("wait command: exit status 1"),
	}
	client, err := New("ffmpeg", WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	err = client.Decode(context.Background(), "/in/song.mp4", "/tmp/out.wav", 0, nil)
	if err == nil {
		t.Fatal("expected decode failure")
	}
	if !strings.Contains(err.Error(), "ffmpeg decode") {
		t.Fatalf("expected decode context in error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid data found") {
		t.Fatalf("expected diagnostic tail in error, got %v", err)
	}
	if strings.Contains(err.Error(), "out_time_us") {
		t.Fatalf("progress chatter should not reach the error, got %v", err)
	}
}

func TestEncodeWritesThroughExecutor(t *testing.T) {
	tempDir := t.TempDir()
	output := filepath.Join(tempDir, "encode", "song_vocals.mp3")
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		t.Fatalf("prepare output dir: %v", err)
	}
	if err := os.WriteFile(output, []byte("ID3"), 0o644); err != nil {
		t.Fatalf("prepare output file: %v", err)
	}

	exec := &fakeExecutor{}
	client, err := New("/usr/bin/ffmpeg", WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := client.Encode(context.Background(), "/ws/stems/vocals.wav", output, "320k", 0, nil); err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if exec.binary != "/usr/bin/ffmpeg" {
		t.Fatalf("expected configured binary, got %q", exec.binary)
	}
	found := false
	for i, arg := range exec.args {
		if arg == "-b:a" && i+1 < len(exec.args) && exec.args[i+1] == "320k" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected bitrate in args, got %v", exec.args)
	}
}

func TestTailBufferKeepsRecentLines(t *testing.T) {
	tail := tailBuffer{max: 3}
	for _, line := range []string{"one", "", "two", "three", "four"} {
		tail.Add(line)
	}
	if got := tail.String(); got != "two; three; four" {
		t.Fatalf("expected last three lines, got %q", got)
	}
}
