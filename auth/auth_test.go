package auth

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T, token string) *fiber.App {
	t.Helper()
	mw, err := Middleware(token)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(mw)
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	return app
}

func status(t *testing.T, app *fiber.App, token string) int {
	t.Helper()
	req := httptest.NewRequest("GET", "/ping", nil)
	if token != "" {
		req.Header.Set(Header, token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestMiddlewareDisabled(t *testing.T) {
	app := newApp(t, "")
	assert.Equal(t, 200, status(t, app, ""))
	assert.Equal(t, 200, status(t, app, "anything"))
}

func TestMiddlewareChecksToken(t *testing.T) {
	app := newApp(t, "s3cret")
	assert.Equal(t, 401, status(t, app, ""))
	assert.Equal(t, 401, status(t, app, "wrong"))
	assert.Equal(t, 200, status(t, app, "s3cret"))
}

func TestMiddlewareTokenTooLong(t *testing.T) {
	_, err := Middleware(strings.Repeat("x", 100))
	assert.Error(t, err)
}
