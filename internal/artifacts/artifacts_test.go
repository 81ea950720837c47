package artifacts

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/maritimetraining/speech-pipeline/internal/types"
)

func TestSpeakerMapRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	spans := map[string][]types.Span{
		types.RoleTrainee: {{StartMs: 0, EndMs: 2500.5}, {StartMs: 4000, EndMs: 9000}},
		types.RoleTrainer: {{StartMs: 1200, EndMs: 3300}},
	}
	roles := []string{types.RoleTrainee, types.RoleTrainer}

	if err := s.WriteSpeakerMap("engine_failure", roles, spans); err != nil {
		t.Fatalf("WriteSpeakerMap failed: %v", err)
	}

	loaded, err := s.LoadSpeakerMap("engine_failure")
	if err != nil {
		t.Fatalf("LoadSpeakerMap failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, spans) {
		t.Errorf("loaded map %v != written map %v", loaded, spans)
	}
}

func TestLoadSpeakerMapMissing(t *testing.T) {
	s := NewStore(t.TempDir())
	if _, err := s.LoadSpeakerMap("nonexistent"); err == nil {
		t.Fatal("expected error for missing artifact")
	}
}

func TestWriteChunkTimestamps(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	segments := []types.VADSegment{
		{ID: 0, Span: types.Span{StartMs: 0, EndMs: 10000}},
		{ID: 1, Span: types.Span{StartMs: 10000, EndMs: 14500}},
	}
	if err := s.WriteChunkTimestamps("grounding", segments); err != nil {
		t.Fatalf("WriteChunkTimestamps failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "grounding", "chunk_timestamps.csv"))
	if err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
	want := "chunk_id,start,end\n0,0,10000\n1,10000,14500"
	if got := strings.TrimSpace(string(data)); got != want {
		t.Errorf("artifact = %q, want %q", got, want)
	}
}

func TestWriteTranscriptWindowAndSession(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	rows := []types.TranscriptRow{
		{SegmentID: 3, StartMs: 0, EndMs: 1500, Speaker: types.RoleTrainee, Text: "slow ahead"},
	}
	if err := s.WriteTranscript("fire", rows); err != nil {
		t.Fatalf("window transcript write failed: %v", err)
	}
	if err := s.WriteTranscript("", rows); err != nil {
		t.Fatalf("session transcript write failed: %v", err)
	}

	for _, path := range []string{
		filepath.Join(dir, "fire", "transcript.csv"),
		filepath.Join(dir, "transcript.csv"),
	} {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("transcript artifact missing at %s: %v", path, err)
		}
		if !strings.Contains(string(data), "slow ahead") {
			t.Errorf("transcript %s does not contain row text:\n%s", path, data)
		}
	}
}
