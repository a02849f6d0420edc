package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scopesentry/backend/internal/metrics"
	"github.com/scopesentry/backend/internal/storage/models"
	"github.com/scopesentry/backend/internal/storage/sqlite"
	"github.com/scopesentry/backend/pkg/logger"
)

type ProposalHandler struct {
	db *sqlite.Client
}

func NewProposalHandler(db *sqlite.Client) *ProposalHandler {
	return &ProposalHandler{db: db}
}

// CreateProposal drafts a change-order proposal, optionally from an
// out-of-scope request. Linking a request pulls its title and marks it
// proposal_sent once the proposal goes out.
func (h *ProposalHandler) CreateProposal(c *fiber.Ctx) error {
	var req struct {
		SourceRequestID string  `json:"source_request_id"`
		Title           string  `json:"title"`
		Description     string  `json:"description"`
		Amount          float64 `json:"amount"`
		EstimatedHours  float64 `json:"estimated_hours"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	projectID := c.Params("id")
	if _, err := h.db.GetProject(projectID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Project not found",
		})
	}

	title := strings.TrimSpace(req.Title)
	if req.SourceRequestID != "" {
		request, err := h.db.GetRequest(req.SourceRequestID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Source request not found",
			})
		}
		if title == "" {
			title = request.Title
		}
	}

	if title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title is required",
		})
	}

	proposal := &models.Proposal{
		ID:              uuid.New().String(),
		ProjectID:       projectID,
		SourceRequestID: req.SourceRequestID,
		Title:           title,
		Description:     req.Description,
		Status:          models.ProposalDraft,
		Amount:          req.Amount,
		EstimatedHours:  req.EstimatedHours,
		CreatedAt:       time.Now(),
	}

	if err := h.db.InsertProposal(proposal); err != nil {
		logger.Error("Failed to create proposal", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create proposal",
		})
	}

	metrics.ProposalsCreated.Inc()

	return c.Status(fiber.StatusCreated).JSON(proposal)
}

func (h *ProposalHandler) ListProposals(c *fiber.Ctx) error {
	proposals, err := h.db.ListProposals(c.Params("id"))
	if err != nil {
		logger.Error("Failed to list proposals", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list proposals",
		})
	}

	return c.JSON(fiber.Map{
		"proposals": proposals,
		"count":     len(proposals),
	})
}

func (h *ProposalHandler) UpdateStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	status := models.ProposalStatus(req.Status)
	switch status {
	case models.ProposalDraft, models.ProposalSent, models.ProposalAccepted,
		models.ProposalDeclined, models.ProposalExpired:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown status",
		})
	}

	proposalID := c.Params("proposalId")
	if err := h.db.UpdateProposalStatus(proposalID, status); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Proposal not found",
		})
	}

	// Sending a proposal closes the loop on the request that triggered it.
	if status == models.ProposalSent {
		proposals, err := h.db.ListProposals(c.Params("id"))
		if err == nil {
			for _, p := range proposals {
				if p.ID == proposalID && p.SourceRequestID != "" {
					if err := h.db.SetRequestStatus(p.SourceRequestID, models.RequestProposalSent); err != nil {
						logger.Warn("Failed to update source request status", zap.Error(err))
					}
					break
				}
			}
		}
	}

	return c.JSON(fiber.Map{
		"id":     proposalID,
		"status": status,
	})
}
