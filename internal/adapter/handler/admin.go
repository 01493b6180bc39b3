package handler

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/supawitsnnrk/bluepi-backend/internal/adapter/storage"
	"github.com/supawitsnnrk/bluepi-backend/internal/core/security"
)

type AdminHandler struct {
	Keys *storage.APIKeyRepository
}

type GenerateKeyRequest struct {
	Label string `json:"label"`
}

// GenerateKey mints an admin API key for the protected maintenance routes.
func (h *AdminHandler) GenerateKey(c *fiber.Ctx) error {
	var req GenerateKeyRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
	}

	realKey, keyHash, err := security.GenerateAPIKey()
	if err != nil {
		slog.Error("failed to generate api key", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Crypto error"})
	}

	if err := h.Keys.Save(c.Context(), keyHash, security.KeyPrefix, req.Label); err != nil {
		return writeError(c, err)
	}

	slog.Info("admin api key generated", "label", req.Label)

	// The key is shown once; only the hash is stored.
	return c.JSON(fiber.Map{
		"api_key": realKey,
		"warning": "Save this now! We won't show it again.",
	})
}
