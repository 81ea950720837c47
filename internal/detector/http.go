package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/maritimetraining/speech-pipeline/internal/audio"
)

// HTTPClient calls the hosted VAD and diarization services. Both
// endpoints accept a multipart WAV upload and return JSON span lists.
type HTTPClient struct {
	vadURL     string
	diarizeURL string
	tempDir    string
	c          *http.Client
}

// NewHTTPClient creates a detector client for the configured service
// URLs. tempDir holds the WAV files staged for upload.
func NewHTTPClient(vadURL, diarizeURL, tempDir string) *HTTPClient {
	return &HTTPClient{
		vadURL:     vadURL,
		diarizeURL: diarizeURL,
		tempDir:    tempDir,
		c:          &http.Client{Timeout: 30 * time.Minute},
	}
}

// DetectVoiceActivity uploads the window audio to the VAD service and
// returns its speech-present ranges in seconds.
func (h *HTTPClient) DetectVoiceActivity(ctx context.Context, buf *audio.Buffer) ([]Range, error) {
	var out struct {
		Segments []Range `json:"segments"`
	}
	if err := h.post(ctx, h.vadURL+"/detect", buf, &out); err != nil {
		return nil, fmt.Errorf("voice activity detection failed: %v", err)
	}
	return out.Segments, nil
}

// Diarize uploads the window audio to the diarization service and
// returns its raw speaker-tagged ranges in seconds.
func (h *HTTPClient) Diarize(ctx context.Context, buf *audio.Buffer) ([]SpeakerRange, error) {
	var out struct {
		Segments []SpeakerRange `json:"segments"`
	}
	if err := h.post(ctx, h.diarizeURL+"/diarize", buf, &out); err != nil {
		return nil, fmt.Errorf("speaker diarization failed: %v", err)
	}
	return out.Segments, nil
}

// post stages buf as a WAV file, uploads it as multipart form data and
// decodes the JSON response into result.
func (h *HTTPClient) post(ctx context.Context, url string, buf *audio.Buffer, result interface{}) error {
	wavPath := filepath.Join(h.tempDir, fmt.Sprintf("detector_%s.wav", uuid.New().String()))
	if err := audio.WriteWAV(wavPath, buf); err != nil {
		return err
	}
	defer os.Remove(wavPath)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	fw, err := w.CreateFormFile("file", filepath.Base(wavPath))
	if err != nil {
		return err
	}
	fd, err := os.Open(wavPath)
	if err != nil {
		return err
	}
	defer fd.Close()

	if _, err = io.Copy(fw, fd); err != nil {
		return err
	}
	if err = w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := h.c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s: %s", resp.Status, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %v", err)
	}
	return nil
}
