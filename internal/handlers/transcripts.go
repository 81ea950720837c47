package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/maritimetraining/speech-pipeline/internal/store"
)

// TranscriptsHandler serves persisted transcript tables.
type TranscriptsHandler struct {
	db *store.DB
}

// NewTranscriptsHandler creates a transcripts handler.
func NewTranscriptsHandler(db *store.DB) *TranscriptsHandler {
	return &TranscriptsHandler{db: db}
}

// Handle serves GET /sessions/:id/transcript.
func (h *TranscriptsHandler) Handle(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid session id",
			"code":  "ERR_BAD_SESSION_ID",
		})
	}

	rows, err := h.db.TranscriptRows(sessionID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "ERR_STORE",
		})
	}
	return c.JSON(fiber.Map{
		"session_id": sessionID,
		"rows":       rows,
	})
}
