package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/scopesentry/backend/internal/requests"
	"github.com/scopesentry/backend/internal/storage/models"
	"github.com/scopesentry/backend/internal/storage/sqlite"
	"github.com/scopesentry/backend/pkg/logger"
)

// PublicHandler serves the client-facing intake link. Everything here is
// token-gated and deliberately exposes the minimum: the project name so the
// client knows where they landed, and a way to submit a request. The
// classification verdict is never returned to the client.
type PublicHandler struct {
	db      *sqlite.Client
	service *requests.Service
}

func NewPublicHandler(db *sqlite.Client, service *requests.Service) *PublicHandler {
	return &PublicHandler{db: db, service: service}
}

func (h *PublicHandler) GetPublicProject(c *fiber.Ctx) error {
	project, err := h.db.GetProjectByToken(c.Params("token"))
	if err != nil || !project.PublicEnabled {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Not found",
		})
	}

	return c.JSON(fiber.Map{
		"project_name": project.Name,
	})
}

func (h *PublicHandler) SubmitRequest(c *fiber.Ctx) error {
	project, err := h.db.GetProjectByToken(c.Params("token"))
	if err != nil || !project.PublicEnabled {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Not found",
		})
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Content is required",
		})
	}

	request, _, err := h.service.LogRequest(c.Context(), project.ID, requests.LogInput{
		Title:   req.Title,
		Content: req.Content,
		Source:  models.SourceChat,
	})
	if err != nil {
		logger.Error("Failed to log public request",
			zap.String("project_id", project.ID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to submit request",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":      request.ID,
		"message": "Request received",
	})
}
