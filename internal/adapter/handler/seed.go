package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/supawitsnnrk/bluepi-backend/internal/core/service"
)

type SeedHandler struct {
	Service *service.SeedService
}

// SeedProducts creates the demo product catalog. Idempotent: skips when
// products already exist.
func (h *SeedHandler) SeedProducts(c *fiber.Ctx) error {
	res, err := h.Service.SeedDemoProducts(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}
