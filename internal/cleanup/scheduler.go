// Package cleanup removes stale temp files left behind by audio
// extraction, detector staging and whisper work directories.
package cleanup

import (
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Scheduler periodically deletes old files under the temp directory.
type Scheduler struct {
	tempDir         string
	intervalMinutes int
	maxAgeHours     int
	stopChan        chan struct{}
	log             *logrus.Logger
}

// NewScheduler creates a cleanup scheduler.
func NewScheduler(tempDir string, intervalMinutes, maxAgeHours int, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		tempDir:         tempDir,
		intervalMinutes: intervalMinutes,
		maxAgeHours:     maxAgeHours,
		stopChan:        make(chan struct{}),
		log:             log,
	}
}

// Start runs one cleanup pass immediately, then schedules periodic
// passes until Stop.
func (s *Scheduler) Start() {
	s.cleanOldFiles()

	ticker := time.NewTicker(time.Duration(s.intervalMinutes) * time.Minute)
	go func() {
		for {
			select {
			case <-ticker.C:
				s.cleanOldFiles()
			case <-s.stopChan:
				ticker.Stop()
				return
			}
		}
	}()

	s.log.Infof("Cleanup scheduler started (interval: %dm, max age: %dh)",
		s.intervalMinutes, s.maxAgeHours)
}

// Stop halts the scheduler.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.log.Info("Cleanup scheduler stopped")
}

func (s *Scheduler) cleanOldFiles() {
	now := time.Now()
	maxAge := time.Duration(s.maxAgeHours) * time.Hour

	var deletedCount int
	err := filepath.Walk(s.tempDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if now.Sub(info.ModTime()) > maxAge {
			if err := os.Remove(path); err != nil {
				s.log.Warnf("Failed to delete old temp file %s: %v", path, err)
			} else {
				deletedCount++
			}
		}
		return nil
	})
	if err != nil {
		s.log.Warnf("Error during temp cleanup: %v", err)
	}
	if deletedCount > 0 {
		s.log.Infof("Temp cleanup complete: %d files deleted", deletedCount)
	}
}

// EnsureTempDirExists creates the temp directory if needed.
func EnsureTempDirExists(tempDir string) error {
	return os.MkdirAll(tempDir, 0755)
}
