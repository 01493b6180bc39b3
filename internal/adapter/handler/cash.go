package handler

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/supawitsnnrk/bluepi-backend/internal/core/domain"
	"github.com/supawitsnnrk/bluepi-backend/internal/core/service"
)

type CashHandler struct {
	Service *service.CashService
}

type ValidateDenominationRequest struct {
	DenominationID string `json:"denominationId"`
	Qty            int    `json:"qty"`
}

type AdjustCashStockRequest struct {
	DeltaQty int `json:"deltaQty"`
}

type CalculateChangeRequest struct {
	AmountToChange int64 `json:"amountToChange"`
}

func (h *CashHandler) ListDenominations(c *fiber.Ctx) error {
	denominations, err := h.Service.ListActiveDenominations(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	if denominations == nil {
		denominations = []domain.Denomination{}
	}
	return c.JSON(denominations)
}

func (h *CashHandler) ValidateDenomination(c *fiber.Ctx) error {
	var req ValidateDenominationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	denominationID, err := uuid.Parse(req.DenominationID)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid denomination ID"})
	}

	res, err := h.Service.ValidateDenomination(c.Context(), denominationID, req.Qty)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

func (h *CashHandler) GetStock(c *fiber.Ctx) error {
	stocks, err := h.Service.GetStock(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	if stocks == nil {
		stocks = []domain.CashStock{}
	}
	return c.JSON(stocks)
}

// AdjustStock refills or drains the float for one denomination (admin).
func (h *CashHandler) AdjustStock(c *fiber.Ctx) error {
	denominationID, err := uuid.Parse(c.Params("denominationId"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid denomination ID"})
	}

	var req AdjustCashStockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	stock, err := h.Service.Adjust(c.Context(), nil, denominationID, req.DeltaQty)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(stock)
}

func (h *CashHandler) CalculateChange(c *fiber.Ctx) error {
	var req CalculateChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	res, err := h.Service.CalculateChange(c.Context(), nil, req.AmountToChange)
	if err != nil {
		return writeError(c, err)
	}
	if res.Breakdown == nil {
		res.Breakdown = []domain.BreakdownLine{}
	}
	return c.JSON(res)
}
