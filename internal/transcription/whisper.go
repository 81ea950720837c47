// Package transcription provides the speech-to-text collaborator,
// backed by OpenAI Whisper invoked through its Python CLI.
package transcription

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/maritimetraining/speech-pipeline/internal/audio"
)

// WhisperTranscriber runs Whisper once per sub-segment slice. The
// underlying CLI is not safe to run concurrently against one model
// directory, so calls are serialized.
type WhisperTranscriber struct {
	modelName string
	language  string
	tempDir   string
	log       *logrus.Logger
	mu        sync.Mutex
}

// NewWhisperTranscriber creates a transcriber for the given Whisper
// model name (tiny/base/small/medium/large).
func NewWhisperTranscriber(modelName, language, tempDir string, log *logrus.Logger) *WhisperTranscriber {
	if modelName == "" {
		modelName = "small"
	}
	if language == "" {
		language = "en"
	}
	log.WithField("model", modelName).Info("Initializing Whisper transcriber")
	return &WhisperTranscriber{
		modelName: modelName,
		language:  language,
		tempDir:   tempDir,
		log:       log,
	}
}

// Transcribe writes the slice to a temp WAV file, runs Whisper on it
// and returns the transcript text. Empty text is a valid result for
// silence or noise.
func (wt *WhisperTranscriber) Transcribe(ctx context.Context, buf *audio.Buffer) (string, error) {
	wt.mu.Lock()
	defer wt.mu.Unlock()

	workDir := filepath.Join(wt.tempDir, fmt.Sprintf("whisper_%s", uuid.New().String()))
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create whisper work dir: %v", err)
	}
	defer os.RemoveAll(workDir)

	wavPath := filepath.Join(workDir, "slice.wav")
	if err := audio.WriteWAV(wavPath, buf); err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, "python", "-m", "whisper",
		wavPath,
		"--model", wt.modelName,
		"--output_dir", workDir,
		"--output_format", "json",
		"--language", wt.language,
		"--fp16", "False",
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("whisper transcription failed: %v\nOutput: %s", err, string(output))
	}

	jsonPath := filepath.Join(workDir, "slice.json")
	jsonData, err := os.ReadFile(jsonPath)
	if err != nil {
		return "", fmt.Errorf("failed to read whisper output: %v", err)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(jsonData, &result); err != nil {
		return "", fmt.Errorf("failed to parse whisper JSON: %v", err)
	}

	return strings.TrimSpace(result.Text), nil
}
