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
)

type ClientHandler struct {
	db *sqlite.Client
}

func NewClientHandler(db *sqlite.Client) *ClientHandler {
	return &ClientHandler{db: db}
}

func (h *ClientHandler) CreateClient(c *fiber.Ctx) error {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Company string `json:"company"`
		Notes   string `json:"notes"`
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

	now := time.Now()
	client := &models.Client{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Company:   strings.TrimSpace(req.Company),
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.db.InsertClient(client); err != nil {
		logger.Error("Failed to create client", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create client",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(client)
}

func (h *ClientHandler) GetClient(c *fiber.Ctx) error {
	client, err := h.db.GetClient(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Client not found",
		})
	}

	return c.JSON(client)
}

func (h *ClientHandler) ListClients(c *fiber.Ctx) error {
	clients, err := h.db.ListClients()
	if err != nil {
		logger.Error("Failed to list clients", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list clients",
		})
	}

	return c.JSON(fiber.Map{
		"clients": clients,
		"count":   len(clients),
	})
}
