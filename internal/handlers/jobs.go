package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/maritimetraining/speech-pipeline/internal/queue"
	"github.com/maritimetraining/speech-pipeline/internal/types"
)

// JobsHandler serves job status lookups and the live status stream.
type JobsHandler struct {
	registry *queue.Registry
}

// NewJobsHandler creates a jobs handler.
func NewJobsHandler(registry *queue.Registry) *JobsHandler {
	return &JobsHandler{registry: registry}
}

// HandleGet serves GET /jobs/:id.
func (h *JobsHandler) HandleGet(c *fiber.Ctx) error {
	job, ok := h.registry.Get(c.Params("id"))
	if !ok {
		return c.Status(404).JSON(fiber.Map{
			"error": "Job not found",
			"code":  "ERR_JOB_NOT_FOUND",
		})
	}
	return c.JSON(job)
}

// HandleList serves GET /jobs.
func (h *JobsHandler) HandleList(c *fiber.Ctx) error {
	return c.JSON(h.registry.List())
}

// HandleStream pushes job status snapshots over a WebSocket until the
// job reaches a terminal state or the client disconnects.
func (h *JobsHandler) HandleStream(c *websocket.Conn) {
	defer c.Close()

	jobID := c.Params("id")
	for {
		job, ok := h.registry.Get(jobID)
		if !ok {
			c.WriteJSON(fiber.Map{"error": "Job not found"})
			return
		}
		if err := c.WriteJSON(job); err != nil {
			return
		}
		if job.Status == types.StatusCompleted || job.Status == types.StatusFailed {
			return
		}
		time.Sleep(time.Second)
	}
}
