package security

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type HeadersConfig struct {
	AllowedOrigins []string
	IsDevelopment  bool
}

// HeadersMiddleware sets the usual browser hardening headers. The CSP is
// strict because this backend serves JSON only; the dashboard frontend ships
// its own policy.
func HeadersMiddleware(cfg HeadersConfig) fiber.Handler {
	csp := "default-src 'none'; " +
		"frame-ancestors 'none'; " +
		"base-uri 'self'"
	if len(cfg.AllowedOrigins) > 0 {
		csp += "; connect-src 'self' " + strings.Join(cfg.AllowedOrigins, " ")
	}

	return func(c *fiber.Ctx) error {
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("Content-Security-Policy", csp)

		if !cfg.IsDevelopment {
			c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		return c.Next()
	}
}
