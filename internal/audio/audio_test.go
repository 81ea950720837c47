package audio

import (
	"math"
	"path/filepath"
	"testing"
)

func TestBufferDurationMs(t *testing.T) {
	b := &Buffer{Samples: make([]float64, 16000*3), SampleRate: 16000}
	if got := b.DurationMs(); got != 3000 {
		t.Errorf("DurationMs = %v, want 3000", got)
	}
}

func TestSlice(t *testing.T) {
	b := &Buffer{Samples: make([]float64, 16000), SampleRate: 16000} // 1s

	tests := []struct {
		name             string
		startMs, endMs   float64
		expectedSamples  int
	}{
		{"middle", 250, 750, 8000},
		{"clamped end", 500, 5000, 8000},
		{"clamped start", -100, 500, 8000},
		{"empty when inverted after clamp", 2000, 3000, 0},
		{"full", 0, 1000, 16000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := b.Slice(tt.startMs, tt.endMs)
			if len(s.Samples) != tt.expectedSamples {
				t.Errorf("Slice(%v, %v) has %d samples, want %d",
					tt.startMs, tt.endMs, len(s.Samples), tt.expectedSamples)
			}
			if s.SampleRate != b.SampleRate {
				t.Errorf("slice sample rate %d, want %d", s.SampleRate, b.SampleRate)
			}
		})
	}
}

func TestWAVRoundTrip(t *testing.T) {
	// 100ms of a 440Hz tone at 16kHz.
	src := &Buffer{SampleRate: 16000, Samples: make([]float64, 1600)}
	for i := range src.Samples {
		src.Samples[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/16000)
	}

	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := WriteWAV(path, src); err != nil {
		t.Fatalf("WriteWAV failed: %v", err)
	}

	got, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV failed: %v", err)
	}
	if got.SampleRate != src.SampleRate {
		t.Errorf("sample rate %d, want %d", got.SampleRate, src.SampleRate)
	}
	if len(got.Samples) != len(src.Samples) {
		t.Fatalf("got %d samples, want %d", len(got.Samples), len(src.Samples))
	}
	for i := range got.Samples {
		if math.Abs(got.Samples[i]-src.Samples[i]) > 1.0/16384 {
			t.Fatalf("sample %d = %v, want ~%v", i, got.Samples[i], src.Samples[i])
		}
	}
}

func TestValidateRecordingFormat(t *testing.T) {
	for _, name := range []string{"bridge.mp4", "run.MKV", "audio.wav", "session.mp3"} {
		if !ValidateRecordingFormat(name) {
			t.Errorf("ValidateRecordingFormat(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"notes.txt", "archive.zip", "noext"} {
		if ValidateRecordingFormat(name) {
			t.Errorf("ValidateRecordingFormat(%q) = true, want false", name)
		}
	}
}
