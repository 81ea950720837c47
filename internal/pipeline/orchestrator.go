// Package pipeline drives the per-window processing sequence: run the
// voice-activity and diarization detectors concurrently, resolve
// speaker-attributed sub-segments, transcribe each one and stream the
// results into the persistent Segment → SpeakerDiarization →
// Transcript chain.
package pipeline

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/maritimetraining/speech-pipeline/internal/artifacts"
	"github.com/maritimetraining/speech-pipeline/internal/audio"
	"github.com/maritimetraining/speech-pipeline/internal/detector"
	"github.com/maritimetraining/speech-pipeline/internal/diarize"
	"github.com/maritimetraining/speech-pipeline/internal/types"
	"github.com/maritimetraining/speech-pipeline/internal/vad"
)

// Store is the persistence surface the orchestrator drives. Creation
// order is Segment → SpeakerDiarization → Transcript; a child is never
// created before its parent id is known.
type Store interface {
	CreateSegment(sessionID, eventID int64, startMs, endMs float64) (int64, error)
	CreateSpeakerDiarization(segmentID int64, speaker string, startMs, endMs float64) (int64, error)
	CreateTranscript(segmentID, speakerDiarizationID int64, text string) (int64, error)
}

// Orchestrator processes demanding-event windows sequentially. Only
// the calling goroutine touches the store; the two detectors are the
// only concurrent branch.
type Orchestrator struct {
	chunker     *vad.Chunker
	mapBuilder  *diarize.MapBuilder
	transcriber detector.Transcriber
	store       Store
	artifacts   *artifacts.Store
	log         *logrus.Logger
}

// New creates an orchestrator. artifacts may be nil to skip transcript
// side tables.
func New(chunker *vad.Chunker, mapBuilder *diarize.MapBuilder, transcriber detector.Transcriber, st Store, art *artifacts.Store, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		chunker:     chunker,
		mapBuilder:  mapBuilder,
		transcriber: transcriber,
		store:       st,
		artifacts:   art,
		log:         log,
	}
}

// ProcessSession runs every demanding-event window of a session in
// order and returns the concatenated transcript table. A window
// failure aborts the remaining windows; rows already persisted stay in
// storage.
func (o *Orchestrator) ProcessSession(ctx context.Context, rec *audio.Buffer, windows []types.TimeWindow, sess types.SessionContext) (types.AggregatedTranscript, error) {
	var full types.AggregatedTranscript
	for _, window := range windows {
		rows, err := o.ProcessWindow(ctx, rec, window, sess)
		if err != nil {
			return nil, fmt.Errorf("window %s: %v", window.Label, err)
		}
		full = append(full, rows...)
	}

	if o.artifacts != nil {
		if err := o.artifacts.WriteTranscript("", full); err != nil {
			o.log.Warnf("Failed to write session transcript artifact: %v", err)
		}
	}
	return full, nil
}

// ProcessWindow processes one demanding-event window: both detectors
// run concurrently over the window's audio slice, then every VAD
// segment is resolved, transcribed per speaker and persisted.
func (o *Orchestrator) ProcessWindow(ctx context.Context, rec *audio.Buffer, window types.TimeWindow, sess types.SessionContext) ([]types.TranscriptRow, error) {
	if err := validateWindow(rec, window); err != nil {
		return nil, err
	}

	log := o.log.WithFields(logrus.Fields{
		"window":  window.Label,
		"session": sess.SessionID,
	})
	log.Info("Processing demanding event window")

	slice := rec.Slice(window.StartMs, window.EndMs)

	// The two detector calls are independent pure functions of the
	// read-only slice; this join is the only synchronization point.
	var (
		segments   []types.VADSegment
		speakerMap *diarize.SpeakerMap
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		segments, err = o.chunker.BuildSegments(gctx, slice, window.Label)
		return err
	})
	g.Go(func() error {
		var err error
		speakerMap, err = o.mapBuilder.BuildSpeakerMap(gctx, slice, window.Label)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var rows []types.TranscriptRow
	for _, segment := range segments {
		segmentID, err := o.store.CreateSegment(sess.SessionID, window.EventID, segment.StartMs, segment.EndMs)
		if err != nil {
			return nil, err
		}

		subSegments, err := diarize.Resolve(segment, speakerMap)
		if err != nil {
			return nil, err
		}

		for _, sub := range subSegments {
			diarizationID, err := o.store.CreateSpeakerDiarization(segmentID, sub.Speaker, sub.StartMs, sub.EndMs)
			if err != nil {
				return nil, err
			}

			text, err := o.transcriber.Transcribe(ctx, slice.Slice(sub.StartMs, sub.EndMs))
			if err != nil {
				// Isolated failure: skip this sub-segment, keep the window.
				log.WithFields(logrus.Fields{
					"segment": segmentID,
					"speaker": sub.Speaker,
				}).Warnf("Transcription failed, skipping sub-segment: %v", err)
				continue
			}
			if text == "" {
				continue
			}

			if _, err := o.store.CreateTranscript(segmentID, diarizationID, text); err != nil {
				return nil, err
			}
			rows = append(rows, types.TranscriptRow{
				SegmentID: segmentID,
				StartMs:   sub.StartMs,
				EndMs:     sub.EndMs,
				Speaker:   sub.Speaker,
				Text:      text,
			})
		}
	}

	if o.artifacts != nil {
		if err := o.artifacts.WriteTranscript(window.Label, rows); err != nil {
			log.Warnf("Failed to write window transcript artifact: %v", err)
		}
	}

	log.WithField("rows", len(rows)).Info("Window processing complete")
	return rows, nil
}

// validateWindow rejects malformed windows before any detector call.
func validateWindow(rec *audio.Buffer, w types.TimeWindow) error {
	if w.StartMs >= w.EndMs {
		return fmt.Errorf("malformed window %s: start %.0fms >= end %.0fms", w.Label, w.StartMs, w.EndMs)
	}
	if w.StartMs < 0 {
		return fmt.Errorf("malformed window %s: negative start %.0fms", w.Label, w.StartMs)
	}
	if w.EndMs > rec.DurationMs() {
		return fmt.Errorf("malformed window %s: end %.0fms beyond recording end %.0fms", w.Label, w.EndMs, rec.DurationMs())
	}
	return nil
}
