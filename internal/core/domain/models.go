package domain

import (
	"time"

	"github.com/google/uuid"
)

type DenominationKind string

const (
	Coin DenominationKind = "COIN"
	Bill DenominationKind = "BILL"
)

// Denomination is a recognized coin or bill value. Amounts are in the
// smallest currency unit. Denominations referenced by history are never
// deleted, only deactivated.
type Denomination struct {
	ID        uuid.UUID        `json:"id"`
	Amount    int64            `json:"amount"`
	Kind      DenominationKind `json:"kind"`
	Active    bool             `json:"active"`
	CreatedAt time.Time        `json:"created_at"`
}

// CashStock is the machine float for one denomination. Quantity never goes
// negative and only changes through the ledger's adjust entry point.
type CashStock struct {
	DenominationID uuid.UUID        `json:"denomination_id"`
	Amount         int64            `json:"amount"`
	Kind           DenominationKind `json:"kind"`
	Quantity       int              `json:"quantity"`
}

type Product struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Price     int64         `json:"price"`
	SKU       string        `json:"sku"`
	Active    bool          `json:"active"`
	Stock     *ProductStock `json:"stock,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

type ProductStock struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type OrderStatus string

const (
	OrderInProgress OrderStatus = "IN_PROGRESS"
	OrderSuccess    OrderStatus = "SUCCESS"
	OrderCancelled  OrderStatus = "CANCELLED"
	// OrderFailed exists in the schema but no transition assigns it.
	OrderFailed OrderStatus = "FAILED"
)

// Terminal reports whether the status admits no further transitions.
func (s OrderStatus) Terminal() bool {
	return s != OrderInProgress
}

// Deposit records money physically inserted into the machine for an order.
// Append-only; never mutated after creation.
type Deposit struct {
	OrderID        uuid.UUID `json:"order_id"`
	DenominationID uuid.UUID `json:"denomination_id"`
	Amount         int64     `json:"amount"`
	Quantity       int       `json:"quantity"`
	CreatedAt      time.Time `json:"created_at"`
}

// ChangeLine records money returned to the customer, either as purchase
// change or as a cancellation refund. Append-only.
type ChangeLine struct {
	OrderID        uuid.UUID `json:"order_id"`
	DenominationID uuid.UUID `json:"denomination_id"`
	Amount         int64     `json:"amount"`
	Quantity       int       `json:"quantity"`
	CreatedAt      time.Time `json:"created_at"`
}

// Order is the central aggregate: one customer session from first coin to
// purchase or cancellation. It exclusively owns its deposits and change lines.
type Order struct {
	ID           uuid.UUID    `json:"id"`
	Status       OrderStatus  `json:"status"`
	ProductID    *uuid.UUID   `json:"product_id,omitempty"`
	Product      *Product     `json:"product,omitempty"`
	PaidAmount   int64        `json:"paid_amount"`
	CreditAmount int64        `json:"credit_amount"`
	ChangeAmount int64        `json:"change_amount"`
	Remark       string       `json:"remark,omitempty"`
	Deposits     []Deposit    `json:"deposits"`
	ChangeLines  []ChangeLine `json:"change"`
	CreatedAt    time.Time    `json:"created_at"`
}
