// Package wavio reads and writes PCM WAV files for stem buffers.
package wavio

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const defaultBitDepth = 16

// Buffer holds the decoded PCM samples for a single stem, interleaved by
// channel, along with the bit depth the source file used.
type Buffer struct {
	PCM      *audio.IntBuffer
	BitDepth int
}

// Frames returns the number of sample frames in the buffer.
func (b *Buffer) Frames() int {
	if b == nil || b.PCM == nil {
		return 0
	}
	return b.PCM.NumFrames()
}

// Channels returns the channel count, or 0 for an empty buffer.
func (b *Buffer) Channels() int {
	if b == nil || b.PCM == nil || b.PCM.Format == nil {
		return 0
	}
	return b.PCM.Format.NumChannels
}

// SampleRate returns the sample rate in Hz, or 0 for an empty buffer.
func (b *Buffer) SampleRate() int {
	if b == nil || b.PCM == nil || b.PCM.Format == nil {
		return 0
	}
	return b.PCM.Format.SampleRate
}

// Duration returns the playing time represented by the buffer.
func (b *Buffer) Duration() time.Duration {
	rate := b.SampleRate()
	if rate <= 0 {
		return 0
	}
	frames := b.Frames()
	return time.Duration(float64(frames) / float64(rate) * float64(time.Second))
}

// ReadFile decodes an entire WAV file into memory.
func ReadFile(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("read wav %s: not a valid wav file", path)
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav %s: %w", path, err)
	}
	if pcm == nil || pcm.Format == nil {
		return nil, fmt.Errorf("decode wav %s: empty buffer", path)
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth == 0 {
		bitDepth = defaultBitDepth
	}
	if pcm.SourceBitDepth == 0 {
		pcm.SourceBitDepth = bitDepth
	}
	return &Buffer{PCM: pcm, BitDepth: bitDepth}, nil
}

// WriteFile serializes the buffer to path as linear PCM WAV, preserving the
// source sample rate, channel count, and bit depth.
func WriteFile(path string, b *Buffer) error {
	if b == nil || b.PCM == nil || b.PCM.Format == nil {
		return errors.New("write wav: empty buffer")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}

	bitDepth := b.BitDepth
	if bitDepth == 0 {
		bitDepth = defaultBitDepth
	}

	encoder := wav.NewEncoder(f, b.PCM.Format.SampleRate, bitDepth, b.PCM.Format.NumChannels, 1)
	if err := encoder.Write(b.PCM); err != nil {
		f.Close()
		return fmt.Errorf("write wav %s: %w", path, err)
	}
	if err := encoder.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finalize wav %s: %w", path, err)
	}
	return f.Close()
}
