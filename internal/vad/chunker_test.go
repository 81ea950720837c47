package vad

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/maritimetraining/speech-pipeline/internal/artifacts"
	"github.com/maritimetraining/speech-pipeline/internal/audio"
	"github.com/maritimetraining/speech-pipeline/internal/detector"
	"github.com/maritimetraining/speech-pipeline/internal/types"
)

type fakeVAD struct {
	ranges []detector.Range
	err    error
}

func (f *fakeVAD) DetectVoiceActivity(ctx context.Context, buf *audio.Buffer) ([]detector.Range, error) {
	return f.ranges, f.err
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testBuffer() *audio.Buffer {
	return &audio.Buffer{Samples: make([]float64, 16000), SampleRate: 16000}
}

func TestBuildSegments_CapsLongRuns(t *testing.T) {
	// One 25s detector run becomes three capped segments.
	c := NewChunker(&fakeVAD{ranges: []detector.Range{{StartS: 0, EndS: 25}}}, nil, testLogger())

	got, err := c.BuildSegments(context.Background(), testBuffer(), "engine_failure")
	if err != nil {
		t.Fatalf("BuildSegments failed: %v", err)
	}

	expected := []types.VADSegment{
		{ID: 0, Span: types.Span{StartMs: 0, EndMs: 10000}},
		{ID: 1, Span: types.Span{StartMs: 10000, EndMs: 20000}},
		{ID: 2, Span: types.Span{StartMs: 20000, EndMs: 25000}},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("BuildSegments = %v, want %v", got, expected)
	}
}

func TestBuildSegments_MergesCloseRuns(t *testing.T) {
	// Runs separated by less than 10s of silence are one speech turn.
	c := NewChunker(&fakeVAD{ranges: []detector.Range{
		{StartS: 0, EndS: 3},
		{StartS: 8, EndS: 9},
		{StartS: 30, EndS: 34},
	}}, nil, testLogger())

	got, err := c.BuildSegments(context.Background(), testBuffer(), "grounding")
	if err != nil {
		t.Fatalf("BuildSegments failed: %v", err)
	}

	expected := []types.VADSegment{
		{ID: 0, Span: types.Span{StartMs: 0, EndMs: 9000}},
		{ID: 1, Span: types.Span{StartMs: 30000, EndMs: 34000}},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("BuildSegments = %v, want %v", got, expected)
	}
}

func TestBuildSegments_DetectorFailure(t *testing.T) {
	c := NewChunker(&fakeVAD{err: errors.New("model not loaded")}, nil, testLogger())

	if _, err := c.BuildSegments(context.Background(), testBuffer(), "fire"); err == nil {
		t.Fatal("expected error from failing detector")
	}
}

func TestBuildSegments_WritesChunkTimestamps(t *testing.T) {
	dir := t.TempDir()
	c := NewChunker(
		&fakeVAD{ranges: []detector.Range{{StartS: 0, EndS: 12}}},
		artifacts.NewStore(dir),
		testLogger(),
	)

	if _, err := c.BuildSegments(context.Background(), testBuffer(), "collision"); err != nil {
		t.Fatalf("BuildSegments failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "collision", "chunk_timestamps.csv"))
	if err != nil {
		t.Fatalf("chunk timestamps artifact missing: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 { // header + two capped segments
		t.Errorf("artifact has %d lines, want 3:\n%s", len(lines), data)
	}
	if lines[0] != "chunk_id,start,end" {
		t.Errorf("unexpected header %q", lines[0])
	}
}
