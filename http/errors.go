// server/http/errors.go
package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ViniZap4/carnet-server/domain"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindInvalidName, domain.KindInvalidPath, domain.KindInvalidRoot:
		return fiber.StatusBadRequest
	case domain.KindPathEscapesRoot:
		return fiber.StatusForbidden
	case domain.KindRootNotFound:
		return fiber.StatusNotFound
	case domain.KindAlreadyExists:
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var derr *domain.Error
	if errors.As(err, &derr) {
		event := s.log.Error()
		if derr.Kind.UserError() {
			event = s.log.Warn()
		}
		event.Err(err).
			Str("request_id", requestID(c)).
			Str("op", derr.Op).
			Str("kind", string(derr.Kind)).
			Msg("operation failed")
		return c.Status(statusFor(derr.Kind)).JSON(fiber.Map{
			"error": derr.Error(),
			"kind":  string(derr.Kind),
		})
	}

	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return c.Status(ferr.Code).JSON(fiber.Map{
			"error": ferr.Message,
			"kind":  "request",
		})
	}

	s.log.Error().Err(err).Str("request_id", requestID(c)).Msg("request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
		"kind":  "internal",
	})
}
