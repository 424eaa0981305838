package middleware

import (
	"edulearn/backend/config"
	"edulearn/backend/utils"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(cfg *config.Config, auth fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(LoggingMiddleware(utils.NewNopLogger()))
	app.Get("/who", auth, func(c *fiber.Ctx) error {
		identity := IdentityFrom(c)
		if identity == nil {
			return c.SendString("anonymous")
		}
		return c.SendString(identity.Email)
	})
	return app
}

func body(t *testing.T, app *fiber.App, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, "/who", nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	app := newApp(cfg, AuthMiddleware(cfg))

	status, _ := body(t, app, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = body(t, app, "garbage")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	token, err := utils.GenerateJWTToken(7, "t@example.com", cfg)
	require.NoError(t, err)
	status, text := body(t, app, token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "t@example.com", text)
}

func TestOptionalAuth(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	app := newApp(cfg, OptionalAuth(cfg))

	status, text := body(t, app, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "anonymous", text)

	status, text = body(t, app, "garbage")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "anonymous", text)

	token, err := utils.GenerateJWTToken(7, "t@example.com", cfg)
	require.NoError(t, err)
	_, text = body(t, app, token)
	assert.Equal(t, "t@example.com", text)
}
