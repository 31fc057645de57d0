package ffprobe

import (
	"encoding/json"
	"testing"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video"},
			{CodecType: "audio"},
			{CodecType: "audio"},
		},
		Format: Format{
			Duration: "123.45",
		},
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	if !result.HasAudio() {
		t.Fatal("expected HasAudio to be true")
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Format: Format{Duration: "not-a-number"},
	}
	if got := result.DurationSeconds(); got != 0 {
		t.Fatalf("expected 0 for invalid duration, got %v", got)
	}
	if result.HasAudio() {
		t.Fatal("expected no audio streams")
	}
}

func TestResultDecodesFFprobeJSON(t *testing.T) {
	payload := `{
		"streams": [
			{"index": 0, "codec_name": "aac", "codec_type": "audio", "sample_rate": "44100", "channels": 2}
		],
		"format": {
			"filename": "song.m4a",
			"nb_streams": 1,
			"duration": "215.300000",
			"size": "3456789",
			"format_name": "mov,mp4,m4a,3gp,3g2,mj2"
		}
	}`

	var result Result
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(result.Streams) != 1 {
		t.Fatalf("expected 1 stream, got %d", len(result.Streams))
	}
	if result.Streams[0].Channels != 2 {
		t.Fatalf("unexpected channels: %d", result.Streams[0].Channels)
	}
	if result.Streams[0].SampleRate != "44100" {
		t.Fatalf("unexpected sample rate: %q", result.Streams[0].SampleRate)
	}
	if result.DurationSeconds() != 215.3 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
}
