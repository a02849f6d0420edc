package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scopesentry/backend/internal/requests"
	"github.com/scopesentry/backend/internal/storage/models"
	"github.com/scopesentry/backend/internal/storage/sqlite"
	"github.com/scopesentry/backend/pkg/logger"
)

// ScopeItemHandler mutates the agreed scope, which invalidates any cached
// analysis verdicts for the project.
type ScopeItemHandler struct {
	db      *sqlite.Client
	service *requests.Service
}

func NewScopeItemHandler(db *sqlite.Client, service *requests.Service) *ScopeItemHandler {
	return &ScopeItemHandler{db: db, service: service}
}

func (h *ScopeItemHandler) AddScopeItem(c *fiber.Ctx) error {
	var req struct {
		Title          string  `json:"title"`
		Description    string  `json:"description"`
		Category       string  `json:"category"`
		EstimatedHours float64 `json:"estimated_hours"`
		Order          *int    `json:"order"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Title) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title is required",
		})
	}

	projectID := c.Params("id")
	if _, err := h.db.GetProject(projectID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Project not found",
		})
	}

	order := 0
	if req.Order != nil {
		order = *req.Order
	} else {
		existing, err := h.db.ListScopeItems(projectID)
		if err == nil {
			for _, item := range existing {
				if item.Order >= order {
					order = item.Order + 1
				}
			}
		}
	}

	now := time.Now()
	item := &models.ScopeItem{
		ID:             uuid.New().String(),
		ProjectID:      projectID,
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		Category:       req.Category,
		EstimatedHours: req.EstimatedHours,
		Order:          order,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.db.InsertScopeItem(item); err != nil {
		logger.Error("Failed to add scope item", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to add scope item",
		})
	}

	h.service.InvalidateScopeCache(c.Context(), projectID)

	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *ScopeItemHandler) ListScopeItems(c *fiber.Ctx) error {
	items, err := h.db.ListScopeItems(c.Params("id"))
	if err != nil {
		logger.Error("Failed to list scope items", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list scope items",
		})
	}

	return c.JSON(fiber.Map{
		"scope_items": items,
		"count":       len(items),
	})
}

func (h *ScopeItemHandler) SetCompleted(c *fiber.Ctx) error {
	var req struct {
		Completed bool `json:"completed"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.db.SetScopeItemCompleted(c.Params("itemId"), req.Completed); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Scope item not found",
		})
	}

	return c.JSON(fiber.Map{
		"id":        c.Params("itemId"),
		"completed": req.Completed,
	})
}

func (h *ScopeItemHandler) DeleteScopeItem(c *fiber.Ctx) error {
	projectID := c.Params("id")

	if err := h.db.DeleteScopeItem(c.Params("itemId")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Scope item not found",
		})
	}

	h.service.InvalidateScopeCache(c.Context(), projectID)

	return c.SendStatus(fiber.StatusNoContent)
}
