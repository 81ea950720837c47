// Package interval provides the pure span-algebra primitives shared by
// voice-activity chunking and speaker-map construction: coalescing
// near-adjacent speech runs, clipping against segment boundaries, and
// capping segment length.
package interval

import "github.com/maritimetraining/speech-pipeline/internal/types"

// MinSpanDurationMs is the floor below which a merged speech run is
// treated as an isolated vocalization rather than a speech turn and
// dropped from the output.
const MinSpanDurationMs = 1000

// MergeClose coalesces consecutive spans whose gap is below
// gapThresholdMs. Input spans must already be sorted ascending by start
// within one group (one speaker, one detector pass). Merged runs whose
// final duration does not exceed MinSpanDurationMs are dropped.
func MergeClose(spans []types.Span, gapThresholdMs float64) []types.Span {
	if len(spans) == 0 {
		return nil
	}

	var out []types.Span
	current := spans[0]
	for _, s := range spans[1:] {
		if s.StartMs-current.EndMs < gapThresholdMs {
			if s.EndMs > current.EndMs {
				current.EndMs = s.EndMs
			}
			continue
		}
		if current.Duration() > MinSpanDurationMs {
			out = append(out, current)
		}
		current = s
	}
	if current.Duration() > MinSpanDurationMs {
		out = append(out, current)
	}
	return out
}

// Clip returns the intersection of s with the half-open range
// [lowerBound, upperBound). ok is false when they do not overlap.
func Clip(s types.Span, lowerBound, upperBound float64) (types.Span, bool) {
	if s.StartMs >= upperBound || s.EndMs <= lowerBound {
		return types.Span{}, false
	}
	clipped := s
	if clipped.StartMs < lowerBound {
		clipped.StartMs = lowerBound
	}
	if clipped.EndMs > upperBound {
		clipped.EndMs = upperBound
	}
	return clipped, true
}

// CapLength splits s into consecutive pieces of at most maxLenMs each.
// The pieces cover s exactly, with no gap or overlap; the final piece
// may be shorter than maxLenMs.
func CapLength(s types.Span, maxLenMs float64) []types.Span {
	if s.Duration() <= maxLenMs {
		return []types.Span{s}
	}

	var out []types.Span
	for start := s.StartMs; start < s.EndMs; start += maxLenMs {
		end := start + maxLenMs
		if end > s.EndMs {
			end = s.EndMs
		}
		out = append(out, types.Span{StartMs: start, EndMs: end})
	}
	return out
}
