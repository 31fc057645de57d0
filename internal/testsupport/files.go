package testsupport

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"

	"unmix/internal/media/wavio"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// WriteSineWAV writes a 16-bit PCM WAV containing a 440 Hz tone with the
// given format, so stem fixtures are real decodable audio.
func WriteSineWAV(t testing.TB, path string, sampleRate, channels, frames int) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	data := make([]int, frames*channels)
	for frame := 0; frame < frames; frame++ {
		sample := int(2000 * math.Sin(2*math.Pi*440*float64(frame)/float64(sampleRate)))
		for ch := 0; ch < channels; ch++ {
			data[frame*channels+ch] = sample
		}
	}
	buf := &wavio.Buffer{
		PCM: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
			Data:           data,
			SourceBitDepth: 16,
		},
		BitDepth: 16,
	}
	if err := wavio.WriteFile(path, buf); err != nil {
		t.Fatalf("write wav %s: %v", path, err)
	}
}
