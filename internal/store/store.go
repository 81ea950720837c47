// Package store persists the session/demanding-event catalog and the
// Segment → SpeakerDiarization → Transcript ownership chain in SQLite.
// The client is not safe for concurrent writers; callers serialize.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/maritimetraining/speech-pipeline/internal/types"
)

// DB wraps the SQLite database used by the pipeline.
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) the pipeline database.
func Open(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS session (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		subject_id TEXT NOT NULL,
		recording_path TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS demanding_event (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS demanding_event_session_mapping (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER NOT NULL,
		demanding_event_id INTEGER NOT NULL,
		start_ms REAL NOT NULL,
		end_ms REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS segment (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER NOT NULL,
		demanding_event_id INTEGER NOT NULL,
		segment_start REAL NOT NULL,
		segment_end REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS speaker_diarization (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		segment_id INTEGER NOT NULL,
		speaker TEXT NOT NULL,
		speaker_diarization_start REAL NOT NULL,
		speaker_diarization_end REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transcript (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		segment_id INTEGER NOT NULL,
		speaker_diarization_id INTEGER NOT NULL,
		text TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_mapping_session ON demanding_event_session_mapping(session_id);
	CREATE INDEX IF NOT EXISTS idx_segment_session ON segment(session_id);
	CREATE INDEX IF NOT EXISTS idx_diarization_segment ON speaker_diarization(segment_id);
	CREATE INDEX IF NOT EXISTS idx_transcript_segment ON transcript(segment_id);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	return &DB{db: db}, nil
}

// CreateSession registers a training session recording.
func (d *DB) CreateSession(subjectID, recordingPath string) (int64, error) {
	res, err := d.db.Exec(
		`INSERT INTO session (subject_id, recording_path, created_at) VALUES (?, ?, ?)`,
		subjectID, recordingPath, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to create session: %v", err)
	}
	return res.LastInsertId()
}

// CreateDemandingEvent registers a named demanding event, returning
// the existing id if the name is already known.
func (d *DB) CreateDemandingEvent(name string) (int64, error) {
	var id int64
	err := d.db.QueryRow(`SELECT id FROM demanding_event WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to look up demanding event: %v", err)
	}
	res, err := d.db.Exec(`INSERT INTO demanding_event (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("failed to create demanding event: %v", err)
	}
	return res.LastInsertId()
}

// CreateEventMapping records where one demanding event sits inside a
// session's recording.
func (d *DB) CreateEventMapping(sessionID, eventID int64, startMs, endMs float64) (int64, error) {
	res, err := d.db.Exec(
		`INSERT INTO demanding_event_session_mapping (session_id, demanding_event_id, start_ms, end_ms)
		 VALUES (?, ?, ?, ?)`,
		sessionID, eventID, startMs, endMs)
	if err != nil {
		return 0, fmt.Errorf("failed to create event mapping: %v", err)
	}
	return res.LastInsertId()
}

// WindowsForSession returns the session's demanding-event windows in
// recording order.
func (d *DB) WindowsForSession(sessionID int64) ([]types.TimeWindow, error) {
	rows, err := d.db.Query(
		`SELECT de.name, m.demanding_event_id, m.start_ms, m.end_ms
		 FROM demanding_event_session_mapping m
		 JOIN demanding_event de ON de.id = m.demanding_event_id
		 WHERE m.session_id = ?
		 ORDER BY m.start_ms`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list windows: %v", err)
	}
	defer rows.Close()

	var windows []types.TimeWindow
	for rows.Next() {
		var w types.TimeWindow
		if err := rows.Scan(&w.Label, &w.EventID, &w.StartMs, &w.EndMs); err != nil {
			return nil, fmt.Errorf("failed to scan window: %v", err)
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

// CreateSegment persists one VAD segment under (session, event).
func (d *DB) CreateSegment(sessionID, eventID int64, startMs, endMs float64) (int64, error) {
	res, err := d.db.Exec(
		`INSERT INTO segment (session_id, demanding_event_id, segment_start, segment_end)
		 VALUES (?, ?, ?, ?)`,
		sessionID, eventID, startMs, endMs)
	if err != nil {
		return 0, fmt.Errorf("failed to create segment: %v", err)
	}
	return res.LastInsertId()
}

// CreateSpeakerDiarization persists one speaker-attributed sub-segment
// under its parent segment.
func (d *DB) CreateSpeakerDiarization(segmentID int64, speaker string, startMs, endMs float64) (int64, error) {
	res, err := d.db.Exec(
		`INSERT INTO speaker_diarization (segment_id, speaker, speaker_diarization_start, speaker_diarization_end)
		 VALUES (?, ?, ?, ?)`,
		segmentID, speaker, startMs, endMs)
	if err != nil {
		return 0, fmt.Errorf("failed to create speaker diarization: %v", err)
	}
	return res.LastInsertId()
}

// CreateTranscript persists transcript text under its parent
// speaker-diarization row.
func (d *DB) CreateTranscript(segmentID, speakerDiarizationID int64, text string) (int64, error) {
	res, err := d.db.Exec(
		`INSERT INTO transcript (segment_id, speaker_diarization_id, text)
		 VALUES (?, ?, ?)`,
		segmentID, speakerDiarizationID, text)
	if err != nil {
		return 0, fmt.Errorf("failed to create transcript: %v", err)
	}
	return res.LastInsertId()
}

// TranscriptRows returns the session's transcript table ordered by
// segment then sub-segment start, the shape consumed by the
// communication-analysis collaborators.
func (d *DB) TranscriptRows(sessionID int64) ([]types.TranscriptRow, error) {
	rows, err := d.db.Query(
		`SELECT t.segment_id, sd.speaker_diarization_start, sd.speaker_diarization_end, sd.speaker, t.text
		 FROM transcript t
		 JOIN speaker_diarization sd ON sd.id = t.speaker_diarization_id
		 JOIN segment s ON s.id = t.segment_id
		 WHERE s.session_id = ?
		 ORDER BY t.segment_id, sd.speaker_diarization_start, sd.id`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcript rows: %v", err)
	}
	defer rows.Close()

	var out []types.TranscriptRow
	for rows.Next() {
		var r types.TranscriptRow
		if err := rows.Scan(&r.SegmentID, &r.StartMs, &r.EndMs, &r.Speaker, &r.Text); err != nil {
			return nil, fmt.Errorf("failed to scan transcript row: %v", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DiarizationsForSegment returns a segment's speaker rows in creation
// order.
func (d *DB) DiarizationsForSegment(segmentID int64) ([]types.ResolvedSubSegment, error) {
	rows, err := d.db.Query(
		`SELECT speaker_diarization_start, speaker_diarization_end, speaker
		 FROM speaker_diarization WHERE segment_id = ? ORDER BY id`,
		segmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list speaker diarizations: %v", err)
	}
	defer rows.Close()

	var out []types.ResolvedSubSegment
	for rows.Next() {
		var r types.ResolvedSubSegment
		if err := rows.Scan(&r.StartMs, &r.EndMs, &r.Speaker); err != nil {
			return nil, fmt.Errorf("failed to scan speaker diarization: %v", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}
