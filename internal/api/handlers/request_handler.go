package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/scopesentry/backend/internal/requests"
	"github.com/scopesentry/backend/internal/storage/models"
	"github.com/scopesentry/backend/internal/storage/sqlite"
	"github.com/scopesentry/backend/pkg/logger"
)

type RequestHandler struct {
	db      *sqlite.Client
	service *requests.Service
}

func NewRequestHandler(db *sqlite.Client, service *requests.Service) *RequestHandler {
	return &RequestHandler{db: db, service: service}
}

// CreateRequest logs a client communication and returns it with its analysis
// already applied.
func (h *RequestHandler) CreateRequest(c *fiber.Ctx) error {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Source  string `json:"source"`
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

	request, result, err := h.service.LogRequest(c.Context(), c.Params("id"), requests.LogInput{
		Title:   req.Title,
		Content: req.Content,
		Source:  models.RequestSource(req.Source),
	})
	if err != nil {
		logger.Error("Failed to log request", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to log request",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"request":  request,
		"analysis": result,
	})
}

func (h *RequestHandler) ListRequests(c *fiber.Ctx) error {
	list, err := h.db.ListRequests(c.Params("id"), c.Query("classification"))
	if err != nil {
		logger.Error("Failed to list requests", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list requests",
		})
	}

	return c.JSON(fiber.Map{
		"requests": list,
		"count":    len(list),
	})
}

func (h *RequestHandler) GetRequest(c *fiber.Ctx) error {
	request, err := h.db.GetRequest(c.Params("requestId"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Request not found",
		})
	}

	return c.JSON(request)
}

// OverrideClassification records the freelancer's manual verdict. Subsequent
// automatic analysis will not touch it.
func (h *RequestHandler) OverrideClassification(c *fiber.Ctx) error {
	var req struct {
		Classification    string `json:"classification"`
		LinkedScopeItemID string `json:"linked_scope_item_id"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	request, err := h.service.Override(c.Context(), c.Params("requestId"), req.Classification, req.LinkedScopeItemID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(request)
}

func (h *RequestHandler) Reanalyze(c *fiber.Ctx) error {
	request, result, err := h.service.Reanalyze(c.Context(), c.Params("requestId"))
	if err != nil {
		logger.Error("Failed to reanalyze request", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to reanalyze request",
		})
	}

	return c.JSON(fiber.Map{
		"request":  request,
		"analysis": result,
	})
}

func (h *RequestHandler) BulkAnalyze(c *fiber.Ctx) error {
	processed, err := h.service.BulkAnalyzePending(c.Context(), c.Params("id"))
	if err != nil {
		logger.Error("Bulk analysis failed",
			zap.String("project_id", c.Params("id")),
			zap.Int("processed", processed),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":     "Bulk analysis failed",
			"processed": processed,
		})
	}

	return c.JSON(fiber.Map{
		"processed": processed,
	})
}

func (h *RequestHandler) GetAnalysisHistory(c *fiber.Ctx) error {
	history, err := h.db.ListAnalysisHistory(c.Params("requestId"))
	if err != nil {
		logger.Error("Failed to load analysis history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load analysis history",
		})
	}

	return c.JSON(fiber.Map{
		"history": history,
		"count":   len(history),
	})
}

func (h *RequestHandler) UpdateStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	status := models.RequestStatus(req.Status)
	switch status {
	case models.RequestNew, models.RequestAnalyzed, models.RequestAddressed,
		models.RequestProposalSent, models.RequestDeclined:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown status",
		})
	}

	if err := h.db.SetRequestStatus(c.Params("requestId"), status); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Request not found",
		})
	}

	request, err := h.db.GetRequest(c.Params("requestId"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Request not found",
		})
	}

	return c.JSON(request)
}
