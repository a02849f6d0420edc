package handlers

import (
	"context"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/scopesentry/backend/internal/requests"
	"github.com/scopesentry/backend/pkg/logger"
)

// WebSocketHandler powers the live draft preview: the freelancer types a
// would-be client message and sees the classification verdict as they type.
// Nothing is persisted from this path.
type WebSocketHandler struct {
	service *requests.Service
}

func NewWebSocketHandler(service *requests.Service) *WebSocketHandler {
	return &WebSocketHandler{service: service}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("Preview connection established")

	defer func() {
		c.Close()
		logger.Info("Preview connection closed")
	}()

	for {
		var msg struct {
			Type      string `json:"type"`
			ProjectID string `json:"project_id"`
			Title     string `json:"title"`
			Content   string `json:"content"`
		}

		if err := c.ReadJSON(&msg); err != nil {
			break
		}

		if msg.Type != "preview" {
			continue
		}

		if msg.ProjectID == "" || msg.Content == "" {
			h.sendError(c, "project_id and content are required")
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		result, err := h.service.Preview(ctx, msg.ProjectID, msg.Title, msg.Content)
		cancel()

		if err != nil {
			logger.Error("Preview analysis failed",
				zap.String("project_id", msg.ProjectID),
				zap.Error(err),
			)
			h.sendError(c, "Analysis failed")
			continue
		}

		c.WriteJSON(map[string]interface{}{
			"type":     "result",
			"analysis": result,
		})
	}
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}
