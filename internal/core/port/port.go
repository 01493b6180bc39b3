// Package port declares the storage contracts the core services are written
// against. The pgx implementations live in internal/adapter/storage.
package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/supawitsnnrk/bluepi-backend/internal/core/domain"
)

// Tx is an opaque transaction handle produced by a TxManager. Repositories
// unwrap the concrete type they issued; passing nil makes a repository open
// and commit its own transaction for that single call.
type Tx interface{}

// TxManager scopes a unit of work: begin, run fn, commit on nil error,
// roll back on any error, release unconditionally. Multi-ledger operations
// pass the same Tx into every call so a late failure undoes early writes.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

type CashStore interface {
	ListActiveDenominations(ctx context.Context) ([]domain.Denomination, error)
	GetDenomination(ctx context.Context, tx Tx, id uuid.UUID) (domain.Denomination, error)
	// GetStock returns active-denomination stock rows, amount descending.
	GetStock(ctx context.Context, tx Tx) ([]domain.CashStock, error)
	// Adjust applies deltaQty to one stock row, lazily creating it at zero.
	// Fails with Conflict if the result would be negative.
	Adjust(ctx context.Context, tx Tx, denominationID uuid.UUID, deltaQty int) (domain.CashStock, error)
}

type ProductStore interface {
	// Create inserts the product and its stock row at quantity zero.
	// Fails with Conflict on a duplicate SKU.
	Create(ctx context.Context, tx Tx, p domain.Product) (domain.Product, error)
	ListActive(ctx context.Context) ([]domain.Product, error)
	Count(ctx context.Context) (int, error)
	// Get returns the product with its stock attached.
	Get(ctx context.Context, tx Tx, id uuid.UUID) (domain.Product, error)
	// Save persists name, price, sku and active flag.
	Save(ctx context.Context, tx Tx, p domain.Product) error
	Adjust(ctx context.Context, tx Tx, productID uuid.UUID, deltaQty int) (domain.ProductStock, error)
}

type OrderStore interface {
	Create(ctx context.Context, tx Tx) (domain.Order, error)
	// Get loads the order with product, deposits and change lines. Inside a
	// transaction the order row is locked for update.
	Get(ctx context.Context, tx Tx, id uuid.UUID) (domain.Order, error)
	// List returns all orders with relations, newest first.
	List(ctx context.Context) ([]domain.Order, error)
	AddDeposit(ctx context.Context, tx Tx, d domain.Deposit) error
	AddChangeLine(ctx context.Context, tx Tx, cl domain.ChangeLine) error
	// Save persists status, product reference, amounts and remark.
	Save(ctx context.Context, tx Tx, o domain.Order) error
}

// EventOutbox queues webhook deliveries inside the caller's transaction so an
// event is only ever visible if the business write committed.
type EventOutbox interface {
	Enqueue(ctx context.Context, tx Tx, url string, payload any) error
}
