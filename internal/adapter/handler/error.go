package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/supawitsnnrk/bluepi-backend/internal/core/domain"
)

// writeError maps a domain error kind to an HTTP status. Internal details are
// logged, never returned to the caller.
func writeError(c *fiber.Ctx, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		switch de.Kind {
		case domain.KindNotFound:
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": de.Message})
		case domain.KindInvalidArgument:
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": de.Message})
		case domain.KindConflict:
			return c.Status(http.StatusConflict).JSON(fiber.Map{"error": de.Message})
		}
	}

	slog.Error("request failed", "path", c.Path(), "error", err)
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}
