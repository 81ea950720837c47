// Package diarize turns raw speaker-diarization output into a
// role-labeled speaker map and resolves which speaker talks when
// inside each voice-activity segment.
package diarize

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/maritimetraining/speech-pipeline/internal/artifacts"
	"github.com/maritimetraining/speech-pipeline/internal/audio"
	"github.com/maritimetraining/speech-pipeline/internal/detector"
	"github.com/maritimetraining/speech-pipeline/internal/interval"
	"github.com/maritimetraining/speech-pipeline/internal/types"
)

// roleMergeGapMs coalesces same-speaker runs separated by less than a
// second of silence into one span.
const roleMergeGapMs = 1000

// SpeakerMap maps role labels to sorted, disjoint speech spans. Built
// once per window, read-only afterward.
type SpeakerMap struct {
	spans map[string][]types.Span
}

// NewSpeakerMap wraps an already-built per-role span table.
func NewSpeakerMap(spans map[string][]types.Span) *SpeakerMap {
	return &SpeakerMap{spans: spans}
}

// SpeakerSpans returns the per-role span table.
func (m *SpeakerMap) SpeakerSpans() (map[string][]types.Span, error) {
	return m.spans, nil
}

// Roles returns the role labels ordered by each role's earliest span
// start.
func (m *SpeakerMap) Roles() []string {
	return rolesByFirstAppearance(m.spans)
}

func rolesByFirstAppearance(spans map[string][]types.Span) []string {
	roles := make([]string, 0, len(spans))
	for role, s := range spans {
		if len(s) > 0 {
			roles = append(roles, role)
		}
	}
	sort.Slice(roles, func(i, j int) bool {
		a, b := spans[roles[i]][0].StartMs, spans[roles[j]][0].StartMs
		if a != b {
			return a < b
		}
		return roles[i] < roles[j]
	})
	return roles
}

// MapBuilder builds the speaker map for one window at a time.
type MapBuilder struct {
	det       detector.Diarizer
	artifacts *artifacts.Store
	log       *logrus.Logger
}

// NewMapBuilder creates a builder over the given diarizer. artifacts
// may be nil to skip the persisted speaker-map table.
func NewMapBuilder(det detector.Diarizer, art *artifacts.Store, log *logrus.Logger) *MapBuilder {
	return &MapBuilder{det: det, artifacts: art, log: log}
}

// BuildSpeakerMap runs the diarization detector over one window,
// ranks the raw speaker tags by total talk time, assigns role labels
// in fixed priority order and coalesces each role's runs. At most
// three tags receive labels; any further tags are dropped. This blocks
// for the full detector runtime.
func (b *MapBuilder) BuildSpeakerMap(ctx context.Context, buf *audio.Buffer, windowLabel string) (*SpeakerMap, error) {
	ranges, err := b.det.Diarize(ctx, buf)
	if err != nil {
		return nil, fmt.Errorf("speaker diarization for window %s: %v", windowLabel, err)
	}

	rawSpans := make(map[string][]types.Span)
	talkTime := make(map[string]float64)
	for _, r := range ranges {
		span := types.Span{StartMs: r.StartS * 1000, EndMs: r.EndS * 1000}
		rawSpans[r.Tag] = append(rawSpans[r.Tag], span)
		talkTime[r.Tag] += span.Duration()
	}

	tags := make([]string, 0, len(rawSpans))
	for tag := range rawSpans {
		tags = append(tags, tag)
	}
	// Rank by total talk time descending, tag name breaking ties so
	// role assignment is reproducible.
	sort.Slice(tags, func(i, j int) bool {
		if talkTime[tags[i]] != talkTime[tags[j]] {
			return talkTime[tags[i]] > talkTime[tags[j]]
		}
		return tags[i] < tags[j]
	})

	priority := types.RolePriority()
	spans := make(map[string][]types.Span)
	for rank, tag := range tags {
		if rank >= len(priority) {
			b.log.WithFields(logrus.Fields{
				"window": windowLabel,
				"tag":    tag,
			}).Warn("Dropping surplus diarization speaker")
			continue
		}
		role := priority[rank]
		raw := rawSpans[tag]
		sort.Slice(raw, func(i, j int) bool { return raw[i].StartMs < raw[j].StartMs })
		merged := interval.MergeClose(raw, roleMergeGapMs)
		if len(merged) > 0 {
			spans[role] = merged
		}
	}

	b.log.WithFields(logrus.Fields{
		"window":   windowLabel,
		"speakers": len(tags),
		"roles":    len(spans),
	}).Info("Speaker map built")

	// Persisted copy for re-entrant resolution; best-effort write.
	if b.artifacts != nil {
		if err := b.artifacts.WriteSpeakerMap(windowLabel, rolesByFirstAppearance(spans), spans); err != nil {
			b.log.WithField("window", windowLabel).Warnf("Failed to write speaker map artifact: %v", err)
		}
	}

	return NewSpeakerMap(spans), nil
}
