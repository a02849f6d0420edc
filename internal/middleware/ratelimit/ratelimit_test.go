package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllow_ExhaustsBudget(t *testing.T) {
	rl := New(Config{MaxRequestsPerMinute: 3, WindowDuration: time.Minute})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.allow("1.2.3.4"), "request %d should pass", i)
	}
	assert.False(t, rl.allow("1.2.3.4"))

	// Budgets are per caller.
	assert.True(t, rl.allow("5.6.7.8"))
}

func TestAllow_Refills(t *testing.T) {
	rl := New(Config{MaxRequestsPerMinute: 2, WindowDuration: 20 * time.Millisecond})
	defer rl.Stop()

	assert.True(t, rl.allow("1.2.3.4"))
	assert.True(t, rl.allow("1.2.3.4"))
	assert.False(t, rl.allow("1.2.3.4"))

	time.Sleep(30 * time.Millisecond)
	assert.True(t, rl.allow("1.2.3.4"))
}

func TestMiddleware_Returns429(t *testing.T) {
	rl := New(Config{MaxRequestsPerMinute: 1, WindowDuration: time.Minute})
	defer rl.Stop()

	app := fiber.New()
	app.Use(rl.Middleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}
