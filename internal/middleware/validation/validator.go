package validation

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Config struct {
	MaxContentLength    int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

// Middleware enforces content-type and size limits on intake endpoints
// before the handlers ever parse the body. Request content arrives from
// untrusted clients (the public intake form especially), so the limit is
// checked here rather than trusting every handler to remember it.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxContentLength == 0 {
		cfg.MaxContentLength = 20000
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json"}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodPost || c.Method() == fiber.MethodPut || c.Method() == fiber.MethodPatch {
			contentType := c.Get("Content-Type")
			if contentType != "" {
				allowed := false
				for _, allowedType := range cfg.AllowedContentTypes {
					if strings.Contains(contentType, allowedType) {
						allowed = true
						break
					}
				}
				if !allowed {
					return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
						"error": "Unsupported content type",
					})
				}
			}
		}

		if isIntakePath(c.Path()) && c.Method() == fiber.MethodPost {
			var req map[string]interface{}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			content, ok := req["content"].(string)
			if !ok || strings.TrimSpace(content) == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Content is required and must be a string",
				})
			}

			if len(content) > cfg.MaxContentLength {
				cfg.Logger.Warn("Oversized request content rejected",
					zap.String("ip", c.IP()),
					zap.Int("length", len(content)),
				)
				return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
					"error": "Request content exceeds maximum length",
				})
			}
		}

		return c.Next()
	}
}

func isIntakePath(path string) bool {
	if strings.HasPrefix(path, "/public/requests/") {
		return true
	}
	return strings.HasPrefix(path, "/api/v1/projects/") && strings.HasSuffix(path, "/requests")
}
