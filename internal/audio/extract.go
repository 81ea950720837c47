package audio

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ExtractAudio pulls the audio track out of a source recording (video
// or compressed audio) and normalizes it to a 16kHz mono WAV file in
// tempDir. Returns the path of the extracted file.
func ExtractAudio(inputPath, tempDir string) (string, error) {
	outputPath := filepath.Join(tempDir, fmt.Sprintf("extracted_%s.wav", uuid.New().String()))

	// FFmpeg: drop video, convert to 16kHz mono 16-bit PCM
	cmd := exec.Command("ffmpeg",
		"-i", inputPath,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-y",
		outputPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg failed: %v\nOutput: %s", err, string(output))
	}

	return outputPath, nil
}

// ValidateRecordingFormat checks if the source file format is supported.
func ValidateRecordingFormat(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	supportedFormats := []string{".mp4", ".mkv", ".avi", ".mov", ".mp3", ".wav", ".m4a", ".ogg", ".flac", ".aac"}

	for _, format := range supportedFormats {
		if ext == format {
			return true
		}
	}
	return false
}
