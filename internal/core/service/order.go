package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/supawitsnnrk/bluepi-backend/internal/core/domain"
	"github.com/supawitsnnrk/bluepi-backend/internal/core/port"
)

// OrderService drives the order lifecycle: deposit, select, purchase, cancel.
// Every mutating operation runs inside one transaction from Txm; any failure
// rolls back all ledger and order writes made in that call.
type OrderService struct {
	Orders   port.OrderStore
	Cash     *CashService
	Products *ProductService
	Txm      port.TxManager

	// Outbox and WebhookURL are optional; when both are set, completed and
	// cancelled orders enqueue a webhook delivery in the same transaction.
	Outbox     port.EventOutbox
	WebhookURL string
}

type CreateOrderResult struct {
	OrderID uuid.UUID `json:"orderId"`
}

type DepositInput struct {
	OrderID        *uuid.UUID
	DenominationID uuid.UUID
	Qty            int
}

type DepositResult struct {
	Success       bool      `json:"success"`
	OrderID       uuid.UUID `json:"orderId"`
	DepositAmount int64     `json:"depositAmount"`
	TotalAmount   int64     `json:"totalAmount"`
}

type SelectProductResult struct {
	Success   bool      `json:"success"`
	OrderID   uuid.UUID `json:"orderId"`
	ProductID uuid.UUID `json:"productId"`
}

type ChangeEntry struct {
	Amount   int64 `json:"amount"`
	Quantity int   `json:"quantity"`
}

type PurchaseResult struct {
	Success      bool          `json:"success"`
	OrderID      uuid.UUID     `json:"orderId"`
	ChangeAmount int64         `json:"changeAmount"`
	Change       []ChangeEntry `json:"change"`
}

type CancelResult struct {
	Success      bool      `json:"success"`
	OrderID      uuid.UUID `json:"orderId"`
	RefundAmount int64     `json:"refundAmount"`
}

// CreateOrder starts a new customer session with all amounts at zero.
func (s *OrderService) CreateOrder(ctx context.Context) (CreateOrderResult, error) {
	var res CreateOrderResult
	err := s.Txm.WithinTx(ctx, func(tx port.Tx) error {
		order, err := s.Orders.Create(ctx, tx)
		if err != nil {
			return err
		}
		res = CreateOrderResult{OrderID: order.ID}
		return nil
	})
	return res, err
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	return s.Orders.Get(ctx, nil, id)
}

func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.Orders.List(ctx)
}

// DepositMoney records money inserted by the customer. With no order id a new
// order is created in the same transaction. The money is held outside the
// float: cash stock only changes when the purchase completes.
func (s *OrderService) DepositMoney(ctx context.Context, in DepositInput) (DepositResult, error) {
	if in.Qty <= 0 {
		return DepositResult{}, domain.InvalidArgument("quantity must be greater than 0")
	}

	var res DepositResult
	err := s.Txm.WithinTx(ctx, func(tx port.Tx) error {
		var order domain.Order
		var err error
		if in.OrderID != nil {
			order, err = s.Orders.Get(ctx, tx, *in.OrderID)
		} else {
			order, err = s.Orders.Create(ctx, tx)
		}
		if err != nil {
			return err
		}

		if order.Status != domain.OrderInProgress {
			return domain.Conflict("Order %s is not in progress (status: %s)", order.ID, order.Status)
		}

		den, err := s.Cash.Store.GetDenomination(ctx, tx, in.DenominationID)
		if err != nil {
			return err
		}
		if !den.Active {
			return domain.InvalidArgument("Denomination %d is not active", den.Amount)
		}

		if err := s.Orders.AddDeposit(ctx, tx, domain.Deposit{
			OrderID:        order.ID,
			DenominationID: den.ID,
			Quantity:       in.Qty,
		}); err != nil {
			return err
		}

		depositAmount := den.Amount * int64(in.Qty)
		order.PaidAmount += depositAmount
		if order.Product != nil {
			order.CreditAmount = order.PaidAmount - order.Product.Price
		} else {
			order.CreditAmount = order.PaidAmount
		}

		if err := s.Orders.Save(ctx, tx, order); err != nil {
			return err
		}

		res = DepositResult{
			Success:       true,
			OrderID:       order.ID,
			DepositAmount: depositAmount,
			TotalAmount:   order.PaidAmount,
		}
		return nil
	})
	return res, err
}

// SelectProduct links a product to the order and recomputes the credit.
// Stock is checked but not reserved; purchase re-checks under the row lock.
func (s *OrderService) SelectProduct(ctx context.Context, orderID, productID uuid.UUID) (SelectProductResult, error) {
	var res SelectProductResult
	err := s.Txm.WithinTx(ctx, func(tx port.Tx) error {
		order, err := s.Orders.Get(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.Status != domain.OrderInProgress {
			return domain.Conflict("Order %s is not in progress (status: %s)", order.ID, order.Status)
		}

		product, err := s.Products.Get(ctx, tx, productID)
		if err != nil {
			return err
		}
		if !product.Active {
			return domain.InvalidArgument("Product %s is not active", product.Name)
		}
		if product.Stock == nil || product.Stock.Quantity <= 0 {
			return domain.Conflict("Product %s is out of stock", product.Name)
		}

		order.ProductID = &product.ID
		order.Product = &product
		order.CreditAmount = order.PaidAmount - product.Price

		if err := s.Orders.Save(ctx, tx, order); err != nil {
			return err
		}

		res = SelectProductResult{Success: true, OrderID: orderID, ProductID: productID}
		return nil
	})
	return res, err
}

// Purchase completes the sale. In one transaction it verifies payment,
// computes change against the float, decrements product stock, moves the
// deposits into the float, pays out the change, and marks the order SUCCESS.
// Any failure leaves order and both ledgers untouched.
func (s *OrderService) Purchase(ctx context.Context, orderID uuid.UUID) (PurchaseResult, error) {
	var res PurchaseResult
	err := s.Txm.WithinTx(ctx, func(tx port.Tx) error {
		order, err := s.Orders.Get(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.Status != domain.OrderInProgress {
			return domain.Conflict("Order %s is not in progress (status: %s)", order.ID, order.Status)
		}
		if order.ProductID == nil || order.Product == nil {
			return domain.InvalidArgument("Cannot purchase without selecting a product")
		}
		if order.PaidAmount < order.Product.Price {
			return domain.InvalidArgument("Insufficient payment. Required: %d, Paid: %d",
				order.Product.Price, order.PaidAmount)
		}

		changeNeeded := order.PaidAmount - order.Product.Price

		var breakdown []domain.BreakdownLine
		if changeNeeded > 0 {
			changeResult, err := s.Cash.CalculateChange(ctx, tx, changeNeeded)
			if err != nil {
				return err
			}
			if !changeResult.Success {
				return domain.Conflict("Cannot make exact change: %s", changeResult.Message)
			}
			breakdown = changeResult.Breakdown
		}

		// Stock was only checked at selection time; the adjust below
		// re-checks under the row lock and fails the whole purchase if a
		// concurrent sale drained it.
		if _, err := s.Products.Adjust(ctx, tx, order.Product.ID, -1); err != nil {
			return err
		}

		// The customer's money enters the float here, not at deposit time.
		for _, dep := range order.Deposits {
			if _, err := s.Cash.Adjust(ctx, tx, dep.DenominationID, dep.Quantity); err != nil {
				return err
			}
		}

		for _, line := range breakdown {
			if _, err := s.Cash.Adjust(ctx, tx, line.DenominationID, -line.Qty); err != nil {
				return err
			}
			if err := s.Orders.AddChangeLine(ctx, tx, domain.ChangeLine{
				OrderID:        order.ID,
				DenominationID: line.DenominationID,
				Quantity:       line.Qty,
			}); err != nil {
				return err
			}
		}

		order.Status = domain.OrderSuccess
		order.ChangeAmount = changeNeeded
		order.CreditAmount = 0

		if err := s.Orders.Save(ctx, tx, order); err != nil {
			return err
		}

		if err := s.publish(ctx, tx, "order.completed", map[string]any{
			"order_id":      order.ID,
			"product_id":    order.Product.ID,
			"paid_amount":   order.PaidAmount,
			"change_amount": changeNeeded,
		}); err != nil {
			return err
		}

		change := make([]ChangeEntry, 0, len(breakdown))
		for _, line := range breakdown {
			change = append(change, ChangeEntry{Amount: line.Amount, Quantity: line.Qty})
		}
		res = PurchaseResult{
			Success:      true,
			OrderID:      orderID,
			ChangeAmount: changeNeeded,
			Change:       change,
		}
		return nil
	})
	if err != nil {
		return PurchaseResult{}, err
	}

	slog.Info("order completed", "order_id", orderID, "change_amount", res.ChangeAmount)
	return res, nil
}

// CancelOrder refunds every deposit as mirrored change lines. The float is
// not touched: deposited money never entered cash stock.
func (s *OrderService) CancelOrder(ctx context.Context, orderID uuid.UUID, reason string) (CancelResult, error) {
	var res CancelResult
	err := s.Txm.WithinTx(ctx, func(tx port.Tx) error {
		order, err := s.Orders.Get(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.Status != domain.OrderInProgress {
			return domain.Conflict("Order %s cannot be cancelled (status: %s)", order.ID, order.Status)
		}

		for _, dep := range order.Deposits {
			if err := s.Orders.AddChangeLine(ctx, tx, domain.ChangeLine{
				OrderID:        order.ID,
				DenominationID: dep.DenominationID,
				Quantity:       dep.Quantity,
			}); err != nil {
				return err
			}
		}

		order.Status = domain.OrderCancelled
		order.ChangeAmount = order.PaidAmount
		if reason != "" {
			order.Remark = reason
		} else {
			order.Remark = "Cancelled by customer"
		}

		if err := s.Orders.Save(ctx, tx, order); err != nil {
			return err
		}

		if err := s.publish(ctx, tx, "order.cancelled", map[string]any{
			"order_id":      order.ID,
			"refund_amount": order.PaidAmount,
			"reason":        order.Remark,
		}); err != nil {
			return err
		}

		res = CancelResult{Success: true, OrderID: orderID, RefundAmount: order.PaidAmount}
		return nil
	})
	if err != nil {
		return CancelResult{}, err
	}

	slog.Info("order cancelled", "order_id", orderID, "refund_amount", res.RefundAmount)
	return res, nil
}

func (s *OrderService) publish(ctx context.Context, tx port.Tx, event string, data map[string]any) error {
	if s.Outbox == nil || s.WebhookURL == "" {
		return nil
	}
	return s.Outbox.Enqueue(ctx, tx, s.WebhookURL, map[string]any{
		"event":     event,
		"data":      data,
		"timestamp": time.Now().UTC(),
	})
}
