package handler

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/supawitsnnrk/bluepi-backend/internal/core/domain"
	"github.com/supawitsnnrk/bluepi-backend/internal/core/service"
)

type OrderHandler struct {
	Service *service.OrderService
}

type DepositRequest struct {
	OrderID        string `json:"orderId"`
	DenominationID string `json:"denominationId"`
	Qty            int    `json:"qty"`
}

type SelectProductRequest struct {
	ProductID string `json:"productId"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// CreateOrder starts a new vending session.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	res, err := h.Service.CreateOrder(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(res)
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	order, err := h.Service.GetOrder(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(order)
}

func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	orders, err := h.Service.ListOrders(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return c.JSON(orders)
}

// Deposit records inserted money. Without an orderId a new order is created
// in the same transaction.
func (h *OrderHandler) Deposit(c *fiber.Ctx) error {
	var req DepositRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	denominationID, err := uuid.Parse(req.DenominationID)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid denomination ID"})
	}

	in := service.DepositInput{DenominationID: denominationID, Qty: req.Qty}
	if req.OrderID != "" {
		orderID, err := uuid.Parse(req.OrderID)
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID"})
		}
		in.OrderID = &orderID
	}

	res, err := h.Service.DepositMoney(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

func (h *OrderHandler) SelectProduct(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	var req SelectProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	res, err := h.Service.SelectProduct(c.Context(), orderID, productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

func (h *OrderHandler) Purchase(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	res, err := h.Service.Purchase(c.Context(), orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	var req CancelOrderRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
	}

	res, err := h.Service.CancelOrder(c.Context(), orderID, req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}
