package store

import (
	"path/filepath"
	"testing"

	"github.com/maritimetraining/speech-pipeline/internal/types"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "pipeline.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSessionWindowMapping(t *testing.T) {
	db := openTestDB(t)

	sessionID, err := db.CreateSession("subject_01", "/recordings/run1.mp4")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	engineID, err := db.CreateDemandingEvent("engine_failure")
	if err != nil {
		t.Fatalf("CreateDemandingEvent failed: %v", err)
	}
	fireID, err := db.CreateDemandingEvent("fire")
	if err != nil {
		t.Fatalf("CreateDemandingEvent failed: %v", err)
	}

	// Registered out of recording order; listing sorts by start.
	if _, err := db.CreateEventMapping(sessionID, fireID, 300000, 420000); err != nil {
		t.Fatalf("CreateEventMapping failed: %v", err)
	}
	if _, err := db.CreateEventMapping(sessionID, engineID, 60000, 180000); err != nil {
		t.Fatalf("CreateEventMapping failed: %v", err)
	}

	windows, err := db.WindowsForSession(sessionID)
	if err != nil {
		t.Fatalf("WindowsForSession failed: %v", err)
	}
	if len(windows) != 2 {
		t.Fatalf("got %d windows, want 2", len(windows))
	}
	if windows[0].Label != "engine_failure" || windows[0].StartMs != 60000 {
		t.Errorf("first window = %+v, want engine_failure at 60000", windows[0])
	}
	if windows[1].Label != "fire" || windows[1].EventID != fireID {
		t.Errorf("second window = %+v, want fire", windows[1])
	}
}

func TestCreateDemandingEventIdempotent(t *testing.T) {
	db := openTestDB(t)

	first, err := db.CreateDemandingEvent("grounding")
	if err != nil {
		t.Fatalf("CreateDemandingEvent failed: %v", err)
	}
	second, err := db.CreateDemandingEvent("grounding")
	if err != nil {
		t.Fatalf("CreateDemandingEvent failed: %v", err)
	}
	if first != second {
		t.Errorf("same event name got ids %d and %d", first, second)
	}
}

func TestOwnershipChain(t *testing.T) {
	db := openTestDB(t)

	sessionID, err := db.CreateSession("subject_02", "/recordings/run2.mp4")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	eventID, err := db.CreateDemandingEvent("collision")
	if err != nil {
		t.Fatalf("CreateDemandingEvent failed: %v", err)
	}

	segmentID, err := db.CreateSegment(sessionID, eventID, 1000, 5000)
	if err != nil {
		t.Fatalf("CreateSegment failed: %v", err)
	}

	d1, err := db.CreateSpeakerDiarization(segmentID, types.RoleTrainee, 1000, 2000)
	if err != nil {
		t.Fatalf("CreateSpeakerDiarization failed: %v", err)
	}
	d2, err := db.CreateSpeakerDiarization(segmentID, types.RoleTrainer, 1500, 5000)
	if err != nil {
		t.Fatalf("CreateSpeakerDiarization failed: %v", err)
	}
	if d1 == d2 {
		t.Fatalf("diarization ids not unique: %d", d1)
	}

	if _, err := db.CreateTranscript(segmentID, d1, "hard to starboard"); err != nil {
		t.Fatalf("CreateTranscript failed: %v", err)
	}
	// d2 deliberately gets no transcript (empty-text case).

	subs, err := db.DiarizationsForSegment(segmentID)
	if err != nil {
		t.Fatalf("DiarizationsForSegment failed: %v", err)
	}
	if len(subs) != 2 || subs[0].Speaker != types.RoleTrainee || subs[1].Speaker != types.RoleTrainer {
		t.Errorf("diarizations = %+v, want trainee then trainer in creation order", subs)
	}

	rows, err := db.TranscriptRows(sessionID)
	if err != nil {
		t.Fatalf("TranscriptRows failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d transcript rows, want 1", len(rows))
	}
	if rows[0].SegmentID != segmentID || rows[0].Text != "hard to starboard" || rows[0].Speaker != types.RoleTrainee {
		t.Errorf("transcript row = %+v", rows[0])
	}
}

func TestTranscriptRowsEmptySession(t *testing.T) {
	db := openTestDB(t)

	rows, err := db.TranscriptRows(42)
	if err != nil {
		t.Fatalf("TranscriptRows failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %v, want empty", rows)
	}
}
