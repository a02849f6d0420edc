package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/scopesentry/backend/internal/storage/sqlite"
	"github.com/scopesentry/backend/pkg/logger"
)

type DashboardHandler struct {
	db *sqlite.Client
}

func NewDashboardHandler(db *sqlite.Client) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// GetProjectDashboard summarizes scope health for one project: how requests
// classified, how much out-of-scope work has been quoted, and how far the
// scope checklist has come.
func (h *DashboardHandler) GetProjectDashboard(c *fiber.Ctx) error {
	projectID := c.Params("id")

	project, err := h.db.GetProject(projectID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Project not found",
		})
	}

	counts, err := h.db.CountRequestsByClassification(projectID)
	if err != nil {
		logger.Error("Failed to count requests", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build dashboard",
		})
	}

	quoted, err := h.db.SumProposalAmounts(projectID)
	if err != nil {
		logger.Error("Failed to sum proposals", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build dashboard",
		})
	}

	items, err := h.db.ListScopeItems(projectID)
	if err != nil {
		logger.Error("Failed to list scope items", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build dashboard",
		})
	}

	completed := 0
	for _, item := range items {
		if item.IsCompleted {
			completed++
		}
	}

	total := 0
	byClassification := fiber.Map{}
	for _, cc := range counts {
		byClassification[cc.Classification] = cc.Count
		total += cc.Count
	}

	return c.JSON(fiber.Map{
		"project": fiber.Map{
			"id":     project.ID,
			"name":   project.Name,
			"status": project.Status,
			"budget": project.Budget,
		},
		"requests": fiber.Map{
			"total":             total,
			"by_classification": byClassification,
		},
		"proposals": fiber.Map{
			"quoted_amount": quoted,
		},
		"scope": fiber.Map{
			"total_items":     len(items),
			"completed_items": completed,
		},
	})
}
