package diarize

import (
	"reflect"
	"testing"

	"github.com/maritimetraining/speech-pipeline/internal/artifacts"
	"github.com/maritimetraining/speech-pipeline/internal/types"
)

func segment(id int, start, end float64) types.VADSegment {
	return types.VADSegment{ID: id, Span: types.Span{StartMs: start, EndMs: end}}
}

func TestResolve_OverlappingRoles(t *testing.T) {
	m := NewSpeakerMap(map[string][]types.Span{
		types.RoleTrainee: {{StartMs: 0, EndMs: 2000}},
		types.RoleTrainer: {{StartMs: 1500, EndMs: 6000}},
	})

	got, err := Resolve(segment(0, 1000, 5000), m)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	expected := []types.ResolvedSubSegment{
		{StartMs: 1000, EndMs: 2000, Speaker: types.RoleTrainee},
		{StartMs: 1500, EndMs: 5000, Speaker: types.RoleTrainer},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Resolve = %v, want %v", got, expected)
	}
}

func TestResolve_SkipsAndStops(t *testing.T) {
	m := NewSpeakerMap(map[string][]types.Span{
		types.RoleTrainee: {
			{StartMs: 0, EndMs: 900},     // ends before segment: skipped
			{StartMs: 2000, EndMs: 3000}, // inside: emitted
			{StartMs: 5000, EndMs: 7000}, // starts at segment end: scan stops
			{StartMs: 8000, EndMs: 9000},
		},
	})

	got, err := Resolve(segment(1, 1000, 5000), m)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	expected := []types.ResolvedSubSegment{
		{StartMs: 2000, EndMs: 3000, Speaker: types.RoleTrainee},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Resolve = %v, want %v", got, expected)
	}
}

func TestResolve_NoOverlap(t *testing.T) {
	m := NewSpeakerMap(map[string][]types.Span{
		types.RoleTrainee: {{StartMs: 6000, EndMs: 8000}},
	})

	got, err := Resolve(segment(0, 1000, 5000), m)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Resolve = %v, want empty", got)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	m := NewSpeakerMap(map[string][]types.Span{
		types.RoleTrainee:  {{StartMs: 0, EndMs: 2500}, {StartMs: 4000, EndMs: 6000}},
		types.RoleTrainer:  {{StartMs: 2000, EndMs: 4500}},
		types.RoleHelmsman: {{StartMs: 100, EndMs: 1200}},
	})
	seg := segment(2, 500, 5500)

	first, err := Resolve(seg, m)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	second, err := Resolve(seg, m)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated Resolve differs: %v vs %v", first, second)
	}
}

func TestResolve_ArtifactFallbackMatchesInMemory(t *testing.T) {
	spans := map[string][]types.Span{
		types.RoleTrainee: {{StartMs: 0, EndMs: 2000}, {StartMs: 3000, EndMs: 8000}},
		types.RoleTrainer: {{StartMs: 1500, EndMs: 6000}},
	}
	m := NewSpeakerMap(spans)

	art := artifacts.NewStore(t.TempDir())
	if err := art.WriteSpeakerMap("engine_failure", m.Roles(), spans); err != nil {
		t.Fatalf("WriteSpeakerMap failed: %v", err)
	}

	seg := segment(0, 1000, 5000)
	inMemory, err := Resolve(seg, m)
	if err != nil {
		t.Fatalf("in-memory Resolve failed: %v", err)
	}

	fromArtifact, err := Resolve(seg, &ArtifactSource{Store: art, WindowLabel: "engine_failure"})
	if err != nil {
		t.Fatalf("artifact Resolve failed: %v", err)
	}

	if !reflect.DeepEqual(inMemory, fromArtifact) {
		t.Errorf("artifact resolution %v differs from in-memory %v", fromArtifact, inMemory)
	}
}

func TestResolve_ArtifactMissing(t *testing.T) {
	src := &ArtifactSource{Store: artifacts.NewStore(t.TempDir()), WindowLabel: "nonexistent"}
	if _, err := Resolve(segment(0, 0, 1000), src); err == nil {
		t.Fatal("expected error for missing speaker map artifact")
	}
}
