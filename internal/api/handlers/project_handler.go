package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scopesentry/backend/internal/storage/models"
	"github.com/scopesentry/backend/internal/storage/sqlite"
	"github.com/scopesentry/backend/pkg/logger"
	"github.com/scopesentry/backend/pkg/utils"
)

type ProjectHandler struct {
	db *sqlite.Client
}

func NewProjectHandler(db *sqlite.Client) *ProjectHandler {
	return &ProjectHandler{db: db}
}

func (h *ProjectHandler) CreateProject(c *fiber.Ctx) error {
	var req struct {
		ClientID       string  `json:"client_id"`
		Name           string  `json:"name"`
		Description    string  `json:"description"`
		Budget         float64 `json:"budget"`
		HourlyRate     float64 `json:"hourly_rate"`
		EstimatedHours float64 `json:"estimated_hours"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name is required",
		})
	}

	if req.ClientID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "client_id is required",
		})
	}
	if _, err := h.db.GetClient(req.ClientID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Client not found",
		})
	}

	now := time.Now()
	project := &models.Project{
		ID:             uuid.New().String(),
		ClientID:       req.ClientID,
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		Status:         models.ProjectActive,
		Budget:         req.Budget,
		HourlyRate:     req.HourlyRate,
		EstimatedHours: req.EstimatedHours,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.db.InsertProject(project); err != nil {
		logger.Error("Failed to create project", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create project",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(project)
}

func (h *ProjectHandler) GetProject(c *fiber.Ctx) error {
	project, err := h.db.GetProject(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Project not found",
		})
	}

	return c.JSON(project)
}

func (h *ProjectHandler) ListProjects(c *fiber.Ctx) error {
	projects, err := h.db.ListProjects()
	if err != nil {
		logger.Error("Failed to list projects", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list projects",
		})
	}

	return c.JSON(fiber.Map{
		"projects": projects,
		"count":    len(projects),
	})
}

// UpdatePublicAccess toggles the shareable intake link. Enabling always
// mints a fresh token so a previously leaked link stops working.
func (h *ProjectHandler) UpdatePublicAccess(c *fiber.Ctx) error {
	var req struct {
		Enabled bool `json:"enabled"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	projectID := c.Params("id")
	project, err := h.db.GetProject(projectID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Project not found",
		})
	}

	token := ""
	if req.Enabled {
		token, err = utils.NewPublicToken()
		if err != nil {
			logger.Error("Failed to generate public token", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update public access",
			})
		}
	}

	if err := h.db.UpdateProjectPublicAccess(projectID, token, req.Enabled); err != nil {
		logger.Error("Failed to update public access", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update public access",
		})
	}

	logger.Info("Public access updated",
		zap.String("project_id", projectID),
		zap.Bool("enabled", req.Enabled),
	)

	project.PublicToken = token
	project.PublicEnabled = req.Enabled
	return c.JSON(project)
}
