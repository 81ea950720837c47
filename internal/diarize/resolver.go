package diarize

import (
	"fmt"

	"github.com/maritimetraining/speech-pipeline/internal/artifacts"
	"github.com/maritimetraining/speech-pipeline/internal/interval"
	"github.com/maritimetraining/speech-pipeline/internal/types"
)

// SpeakerSource supplies a per-role span table. The in-memory
// SpeakerMap and the artifact-backed ArtifactSource both satisfy it,
// so resolution can run inside a live pipeline or be re-run later from
// the persisted table alone.
type SpeakerSource interface {
	SpeakerSpans() (map[string][]types.Span, error)
}

// ArtifactSource loads the speaker map persisted for one window.
type ArtifactSource struct {
	Store       *artifacts.Store
	WindowLabel string
}

// SpeakerSpans rebuilds the per-role span table from the CSV artifact.
func (a *ArtifactSource) SpeakerSpans() (map[string][]types.Span, error) {
	spans, err := a.Store.LoadSpeakerMap(a.WindowLabel)
	if err != nil {
		return nil, fmt.Errorf("load speaker map for window %s: %v", a.WindowLabel, err)
	}
	return spans, nil
}

// Resolve returns the speaker-attributed sub-segments of one VAD
// segment, each clipped to the segment bounds, keeping only strictly
// positive-duration intersections. Roles are visited by earliest span
// start ascending, which fixes the emit order when two roles' spans
// intersect the segment at the same start. Deterministic: the same
// (segment, source) pair always yields identical output.
func Resolve(segment types.VADSegment, src SpeakerSource) ([]types.ResolvedSubSegment, error) {
	spans, err := src.SpeakerSpans()
	if err != nil {
		return nil, err
	}

	var out []types.ResolvedSubSegment
	for _, role := range rolesByFirstAppearance(spans) {
		for _, span := range spans[role] {
			if span.StartMs >= segment.EndMs {
				// Spans are sorted; nothing later can intersect.
				break
			}
			if span.EndMs <= segment.StartMs {
				continue
			}
			clipped, ok := interval.Clip(span, segment.StartMs, segment.EndMs)
			if !ok || clipped.Duration() <= 0 {
				continue
			}
			out = append(out, types.ResolvedSubSegment{
				StartMs: clipped.StartMs,
				EndMs:   clipped.EndMs,
				Speaker: role,
			})
		}
	}
	return out, nil
}
