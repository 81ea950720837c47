// Package handlers holds the fiber HTTP handlers of the API server.
package handlers

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/maritimetraining/speech-pipeline/internal/audio"
	"github.com/maritimetraining/speech-pipeline/internal/queue"
)

// ProcessRequest is the body of POST /process.
type ProcessRequest struct {
	RecordingPath string `json:"recording_path"`
	SessionID     int64  `json:"session_id"`
	SubjectID     string `json:"subject_id"`
}

// ProcessHandler accepts pipeline processing requests.
type ProcessHandler struct {
	workerPool *queue.WorkerPool
}

// NewProcessHandler creates a process handler.
func NewProcessHandler(workerPool *queue.WorkerPool) *ProcessHandler {
	return &ProcessHandler{workerPool: workerPool}
}

// Handle validates the request and queues a background job.
func (h *ProcessHandler) Handle(c *fiber.Ctx) error {
	var req ProcessRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
			"code":  "ERR_BAD_REQUEST",
		})
	}

	if req.RecordingPath == "" || req.SessionID == 0 {
		return c.Status(400).JSON(fiber.Map{
			"error": "recording_path and session_id are required",
			"code":  "ERR_MISSING_FIELDS",
		})
	}

	if !audio.ValidateRecordingFormat(req.RecordingPath) {
		return c.Status(400).JSON(fiber.Map{
			"error": "Unsupported recording format",
			"code":  "ERR_INVALID_FORMAT",
		})
	}

	if _, err := os.Stat(req.RecordingPath); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Recording file not found",
			"code":  "ERR_FILE_NOT_FOUND",
		})
	}

	job := queue.NewJob(uuid.New().String(), req.SessionID, req.SubjectID, req.RecordingPath)
	h.workerPool.Enqueue(job)

	return c.JSON(fiber.Map{
		"job_id":  job.ID,
		"status":  job.Status,
		"message": "Processing started",
	})
}
