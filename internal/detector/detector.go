// Package detector defines the external model collaborators the
// pipeline depends on: voice-activity detection, speaker diarization
// and speech-to-text. The models themselves are black boxes; this
// package holds the interfaces plus HTTP clients for the hosted
// detector services.
package detector

import (
	"context"

	"github.com/maritimetraining/speech-pipeline/internal/audio"
)

// Range is one detector-reported time range, in seconds from the start
// of the analyzed window.
type Range struct {
	StartS float64 `json:"start"`
	EndS   float64 `json:"end"`
}

// SpeakerRange is one diarization-reported range with its raw speaker
// tag (e.g. "SPEAKER_00"). Ranges are not necessarily time-sorted
// across tags.
type SpeakerRange struct {
	StartS float64 `json:"start"`
	EndS   float64 `json:"end"`
	Tag    string  `json:"speaker"`
}

// VoiceActivityDetector reports the speech-present ranges of a window.
type VoiceActivityDetector interface {
	DetectVoiceActivity(ctx context.Context, buf *audio.Buffer) ([]Range, error)
}

// Diarizer assigns speech to distinct unnamed speaker identities.
type Diarizer interface {
	Diarize(ctx context.Context, buf *audio.Buffer) ([]SpeakerRange, error)
}

// Transcriber converts one audio slice to text. An empty string is a
// valid result for silence or noise.
type Transcriber interface {
	Transcribe(ctx context.Context, buf *audio.Buffer) (string, error)
}
