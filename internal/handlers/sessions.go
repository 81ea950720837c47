package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/maritimetraining/speech-pipeline/internal/store"
)

// SessionsHandler registers sessions and their demanding-event windows.
type SessionsHandler struct {
	db *store.DB
}

// NewSessionsHandler creates a sessions handler.
func NewSessionsHandler(db *store.DB) *SessionsHandler {
	return &SessionsHandler{db: db}
}

// HandleCreate serves POST /sessions.
func (h *SessionsHandler) HandleCreate(c *fiber.Ctx) error {
	var req struct {
		SubjectID     string `json:"subject_id"`
		RecordingPath string `json:"recording_path"`
	}
	if err := c.BodyParser(&req); err != nil || req.SubjectID == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "subject_id is required",
			"code":  "ERR_MISSING_FIELDS",
		})
	}

	sessionID, err := h.db.CreateSession(req.SubjectID, req.RecordingPath)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "ERR_STORE",
		})
	}
	return c.JSON(fiber.Map{"session_id": sessionID})
}

// HandleMapEvent serves POST /sessions/:id/events, mapping one named
// demanding event onto a time window of the session's recording.
func (h *SessionsHandler) HandleMapEvent(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid session id",
			"code":  "ERR_BAD_SESSION_ID",
		})
	}

	var req struct {
		Name    string  `json:"name"`
		StartMs float64 `json:"start_ms"`
		EndMs   float64 `json:"end_ms"`
	}
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "name is required",
			"code":  "ERR_MISSING_FIELDS",
		})
	}
	if req.StartMs >= req.EndMs {
		return c.Status(400).JSON(fiber.Map{
			"error": "start_ms must be before end_ms",
			"code":  "ERR_BAD_WINDOW",
		})
	}

	eventID, err := h.db.CreateDemandingEvent(req.Name)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "ERR_STORE",
		})
	}
	mappingID, err := h.db.CreateEventMapping(sessionID, eventID, req.StartMs, req.EndMs)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "ERR_STORE",
		})
	}

	return c.JSON(fiber.Map{
		"mapping_id":         mappingID,
		"demanding_event_id": eventID,
	})
}
