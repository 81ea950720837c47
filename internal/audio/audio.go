// Package audio holds the decoded mono PCM buffer a pipeline run works
// on, plus WAV decode/encode and ffmpeg-based extraction from source
// recordings.
package audio

import (
	"fmt"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Buffer is an immutable mono PCM buffer. Samples are normalized
// float64 in [-1, 1]. Safe for concurrent reads.
type Buffer struct {
	Samples    []float64
	SampleRate int
}

// DurationMs returns the buffer length in milliseconds.
func (b *Buffer) DurationMs() float64 {
	if b.SampleRate == 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate) * 1000
}

// Slice returns the sub-buffer covering [startMs, endMs), clamped to
// the buffer bounds. The returned buffer shares the underlying samples.
func (b *Buffer) Slice(startMs, endMs float64) *Buffer {
	lo := int(startMs * float64(b.SampleRate) / 1000)
	hi := int(endMs * float64(b.SampleRate) / 1000)
	if lo < 0 {
		lo = 0
	}
	if hi > len(b.Samples) {
		hi = len(b.Samples)
	}
	if lo > hi {
		lo = hi
	}
	return &Buffer{Samples: b.Samples[lo:hi], SampleRate: b.SampleRate}
}

// ReadWAV decodes a mono WAV file into a Buffer.
func ReadWAV(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wav file: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode wav file %s: %v", path, err)
	}
	if buf.Format.NumChannels != 1 {
		return nil, fmt.Errorf("expected mono audio, got %d channels", buf.Format.NumChannels)
	}

	scale := math.Pow(2, float64(dec.BitDepth-1))
	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float64(v) / scale
	}

	return &Buffer{Samples: samples, SampleRate: buf.Format.SampleRate}, nil
}

// WriteWAV encodes the buffer as a 16-bit mono WAV file.
func WriteWAV(path string, b *Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create wav file: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, b.SampleRate, 16, 1, 1)
	data := make([]int, len(b.Samples))
	for i, s := range b.Samples {
		v := int(math.Round(s * 32767))
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		data[i] = v
	}
	pcm := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: b.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(pcm); err != nil {
		return fmt.Errorf("failed to write wav data: %v", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize wav file: %v", err)
	}
	return nil
}
