package handler

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/supawitsnnrk/bluepi-backend/internal/core/domain"
	"github.com/supawitsnnrk/bluepi-backend/internal/core/service"
)

type ProductHandler struct {
	Service *service.ProductService
}

type AdjustProductStockRequest struct {
	DeltaQty int `json:"deltaQty"`
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req service.CreateProductInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	product, err := h.Service.Create(c.Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(product)
}

func (h *ProductHandler) ListActive(c *fiber.Ctx) error {
	products, err := h.Service.ListActive(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return c.JSON(products)
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	product, err := h.Service.Get(c.Context(), nil, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req service.UpdateProductInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	product, err := h.Service.Update(c.Context(), id, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(product)
}

// Delete deactivates the product. Rows referenced by order history are never
// removed.
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	if err := h.Service.Deactivate(c.Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// AdjustStock restocks or removes product inventory (admin).
func (h *ProductHandler) AdjustStock(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req AdjustProductStockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	stock, err := h.Service.Adjust(c.Context(), nil, id, req.DeltaQty)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(stock)
}
