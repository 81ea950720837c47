// Package artifacts writes the CSV side tables the pipeline leaves
// behind for traceability: per-window chunk timestamps, the per-window
// speaker map, and transcript tables. The speaker-map table doubles as
// the re-entrant source for speaker resolution after the original
// process has ended.
package artifacts

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/maritimetraining/speech-pipeline/internal/types"
)

// Store writes and reads pipeline side artifacts under one root
// directory, one subdirectory per demanding-event window.
type Store struct {
	root string
}

// NewStore creates an artifact store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// windowDir returns (and creates) the directory for one window.
func (s *Store) windowDir(windowLabel string) (string, error) {
	dir := filepath.Join(s.root, windowLabel)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create artifact dir: %v", err)
	}
	return dir, nil
}

// WriteChunkTimestamps records the (chunk_id, start, end) table for one
// window's VAD segments.
func (s *Store) WriteChunkTimestamps(windowLabel string, segments []types.VADSegment) error {
	dir, err := s.windowDir(windowLabel)
	if err != nil {
		return err
	}

	rows := [][]string{{"chunk_id", "start", "end"}}
	for _, seg := range segments {
		rows = append(rows, []string{
			strconv.Itoa(seg.ID),
			formatMs(seg.StartMs),
			formatMs(seg.EndMs),
		})
	}
	return writeCSV(filepath.Join(dir, "chunk_timestamps.csv"), rows)
}

// WriteSpeakerMap records the (speaker, start, end) table for one
// window's speaker map. Rows are grouped per role in the given order,
// each role's spans ascending by start.
func (s *Store) WriteSpeakerMap(windowLabel string, roles []string, spans map[string][]types.Span) error {
	dir, err := s.windowDir(windowLabel)
	if err != nil {
		return err
	}

	rows := [][]string{{"speaker", "start", "end"}}
	for _, role := range roles {
		for _, sp := range spans[role] {
			rows = append(rows, []string{role, formatMs(sp.StartMs), formatMs(sp.EndMs)})
		}
	}
	return writeCSV(filepath.Join(dir, "speaker_map.csv"), rows)
}

// LoadSpeakerMap rebuilds the per-role span table written by
// WriteSpeakerMap.
func (s *Store) LoadSpeakerMap(windowLabel string) (map[string][]types.Span, error) {
	path := filepath.Join(s.root, windowLabel, "speaker_map.csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open speaker map artifact: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read speaker map artifact: %v", err)
	}

	spans := make(map[string][]types.Span)
	for i, rec := range records {
		if i == 0 {
			continue // header
		}
		if len(rec) != 3 {
			return nil, fmt.Errorf("malformed speaker map row %d in %s", i, path)
		}
		start, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("malformed start in speaker map row %d: %v", i, err)
		}
		end, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("malformed end in speaker map row %d: %v", i, err)
		}
		spans[rec[0]] = append(spans[rec[0]], types.Span{StartMs: start, EndMs: end})
	}
	return spans, nil
}

// WriteTranscript records a transcript table. windowLabel may be empty
// for the session-level table, which is written at the store root.
func (s *Store) WriteTranscript(windowLabel string, rows []types.TranscriptRow) error {
	dir := s.root
	if windowLabel != "" {
		var err error
		if dir, err = s.windowDir(windowLabel); err != nil {
			return err
		}
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create artifact dir: %v", err)
	}

	records := [][]string{{"segment_id", "start", "end", "speaker", "text"}}
	for _, row := range rows {
		records = append(records, []string{
			strconv.FormatInt(row.SegmentID, 10),
			formatMs(row.StartMs),
			formatMs(row.EndMs),
			row.Speaker,
			row.Text,
		})
	}
	return writeCSV(filepath.Join(dir, "transcript.csv"), records)
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %v", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write %s: %v", path, err)
	}
	w.Flush()
	return w.Error()
}

func formatMs(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
