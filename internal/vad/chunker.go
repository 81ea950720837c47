// Package vad converts raw voice-activity detector output into the
// bounded, ordered speech segments the rest of the pipeline works on.
package vad

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/maritimetraining/speech-pipeline/internal/artifacts"
	"github.com/maritimetraining/speech-pipeline/internal/audio"
	"github.com/maritimetraining/speech-pipeline/internal/detector"
	"github.com/maritimetraining/speech-pipeline/internal/interval"
	"github.com/maritimetraining/speech-pipeline/internal/types"
)

const (
	// MaxSegmentMs caps each speech segment; longer detector runs are
	// split into consecutive capped pieces.
	MaxSegmentMs = 10000

	// mergeGapMs coalesces detector runs separated by less silence
	// than one segment length, so one speech turn is not fragmented.
	mergeGapMs = 10000
)

// Chunker builds VAD segments for one window at a time.
type Chunker struct {
	det       detector.VoiceActivityDetector
	artifacts *artifacts.Store
	log       *logrus.Logger
}

// NewChunker creates a chunker over the given detector. artifacts may
// be nil to skip the timestamp side table.
func NewChunker(det detector.VoiceActivityDetector, art *artifacts.Store, log *logrus.Logger) *Chunker {
	return &Chunker{det: det, artifacts: art, log: log}
}

// BuildSegments runs the voice-activity detector over one window and
// returns its speech segments in ascending time order with 0-based
// ids. This blocks for the full detector runtime; no internal timeout
// is imposed.
func (c *Chunker) BuildSegments(ctx context.Context, buf *audio.Buffer, windowLabel string) ([]types.VADSegment, error) {
	ranges, err := c.det.DetectVoiceActivity(ctx, buf)
	if err != nil {
		return nil, fmt.Errorf("voice activity detection for window %s: %v", windowLabel, err)
	}

	spans := make([]types.Span, 0, len(ranges))
	for _, r := range ranges {
		spans = append(spans, types.Span{StartMs: r.StartS * 1000, EndMs: r.EndS * 1000})
	}

	var segments []types.VADSegment
	for _, span := range interval.MergeClose(spans, mergeGapMs) {
		for _, piece := range interval.CapLength(span, MaxSegmentMs) {
			segments = append(segments, types.VADSegment{ID: len(segments), Span: piece})
		}
	}

	c.log.WithFields(logrus.Fields{
		"window":   windowLabel,
		"ranges":   len(ranges),
		"segments": len(segments),
	}).Info("Voice activity chunking complete")

	// Traceability table; its failure must not abort the pipeline.
	if c.artifacts != nil {
		if err := c.artifacts.WriteChunkTimestamps(windowLabel, segments); err != nil {
			c.log.WithField("window", windowLabel).Warnf("Failed to write chunk timestamps: %v", err)
		}
	}

	return segments, nil
}
