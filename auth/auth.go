// server/auth/auth.go
package auth

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// Header carries the API token.
const Header = "X-Carnet-Token"

// Middleware rejects requests whose token header does not match token.
// An empty token disables the check. Tokens longer than 72 bytes are
// rejected by bcrypt.
func Middleware(token string) (fiber.Handler, error) {
	if token == "" {
		return func(c *fiber.Ctx) error { return c.Next() }, nil
	}

	// Only held in memory, so the minimum cost is enough.
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hash token: %w", err)
	}

	return func(c *fiber.Ctx) error {
		given := c.Get(Header)
		if given == "" || bcrypt.CompareHashAndPassword(hash, []byte(given)) != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
				"kind":  "unauthorized",
			})
		}
		return c.Next()
	}, nil
}
