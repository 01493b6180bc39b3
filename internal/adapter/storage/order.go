package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/supawitsnnrk/bluepi-backend/internal/core/domain"
	"github.com/supawitsnnrk/bluepi-backend/internal/core/port"
)

// OrderRepository persists orders and their deposit/change history.
type OrderRepository struct {
	Db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{Db: db}
}

const orderColumns = `id, status, product_id, paid_amount, credit_amount, change_amount, COALESCE(remark, ''), created_at`

func (r *OrderRepository) Create(ctx context.Context, tx port.Tx) (domain.Order, error) {
	o := domain.Order{
		Status:      domain.OrderInProgress,
		Deposits:    []domain.Deposit{},
		ChangeLines: []domain.ChangeLine{},
	}
	err := queries(r.Db, tx).QueryRow(ctx, `
		INSERT INTO orders (status) VALUES ($1)
		RETURNING id, created_at`, domain.OrderInProgress).
		Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return domain.Order{}, domain.Internal(err, "insert order")
	}
	return o, nil
}

// Get loads the order with its product, deposits and change lines. Inside a
// transaction the order row is locked, serializing concurrent state-machine
// operations on the same order.
func (r *OrderRepository) Get(ctx context.Context, tx port.Tx, id uuid.UUID) (domain.Order, error) {
	q := queries(r.Db, tx)

	sql := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	if tx != nil {
		sql += ` FOR UPDATE`
	}

	o, err := scanOrder(q.QueryRow(ctx, sql, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.NotFound("Order with ID: %s not found", id)
	}
	if err != nil {
		return domain.Order{}, err
	}

	if err := r.loadRelations(ctx, q, &o); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

// List returns all orders with relations, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.Db.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, domain.Internal(err, "list orders")
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "list orders")
	}

	for i := range orders {
		if err := r.loadRelations(ctx, r.Db, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *OrderRepository) AddDeposit(ctx context.Context, tx port.Tx, d domain.Deposit) error {
	_, err := queries(r.Db, tx).Exec(ctx, `
		INSERT INTO order_deposits (order_id, denomination_id, quantity)
		VALUES ($1, $2, $3)`,
		d.OrderID, d.DenominationID, d.Quantity)
	if err != nil {
		return domain.Internal(err, "insert deposit")
	}
	return nil
}

func (r *OrderRepository) AddChangeLine(ctx context.Context, tx port.Tx, cl domain.ChangeLine) error {
	_, err := queries(r.Db, tx).Exec(ctx, `
		INSERT INTO order_change (order_id, denomination_id, quantity)
		VALUES ($1, $2, $3)`,
		cl.OrderID, cl.DenominationID, cl.Quantity)
	if err != nil {
		return domain.Internal(err, "insert change line")
	}
	return nil
}

func (r *OrderRepository) Save(ctx context.Context, tx port.Tx, o domain.Order) error {
	tag, err := queries(r.Db, tx).Exec(ctx, `
		UPDATE orders
		SET status = $1, product_id = $2, paid_amount = $3, credit_amount = $4,
		    change_amount = $5, remark = NULLIF($6, ''), updated_at = NOW()
		WHERE id = $7`,
		o.Status, o.ProductID, o.PaidAmount, o.CreditAmount, o.ChangeAmount, o.Remark, o.ID)
	if err != nil {
		return domain.Internal(err, "update order")
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("Order with ID: %s not found", o.ID)
	}
	return nil
}

func (r *OrderRepository) loadRelations(ctx context.Context, q querier, o *domain.Order) error {
	if o.ProductID != nil {
		row := q.QueryRow(ctx, `
			SELECT p.id, p.name, p.price, p.sku, p.is_active, p.created_at, ps.quantity
			FROM products p
			LEFT JOIN product_stock ps ON ps.product_id = p.id
			WHERE p.id = $1`, *o.ProductID)
		p, err := scanProduct(row)
		if err != nil {
			return domain.Internal(err, "load order product")
		}
		o.Product = &p
	}

	deposits, err := r.loadLines(ctx, q, "order_deposits", o.ID)
	if err != nil {
		return err
	}
	o.Deposits = make([]domain.Deposit, 0, len(deposits))
	for _, l := range deposits {
		o.Deposits = append(o.Deposits, domain.Deposit(l))
	}

	changes, err := r.loadLines(ctx, q, "order_change", o.ID)
	if err != nil {
		return err
	}
	o.ChangeLines = make([]domain.ChangeLine, 0, len(changes))
	for _, l := range changes {
		o.ChangeLines = append(o.ChangeLines, l)
	}
	return nil
}

func (r *OrderRepository) loadLines(ctx context.Context, q querier, table string, orderID uuid.UUID) ([]domain.ChangeLine, error) {
	rows, err := q.Query(ctx, `
		SELECT l.order_id, l.denomination_id, d.amount, l.quantity, l.created_at
		FROM `+table+` l
		JOIN denominations d ON d.id = l.denomination_id
		WHERE l.order_id = $1
		ORDER BY l.created_at, l.id`, orderID)
	if err != nil {
		return nil, domain.Internal(err, "load order lines")
	}
	defer rows.Close()

	var lines []domain.ChangeLine
	for rows.Next() {
		var l domain.ChangeLine
		if err := rows.Scan(&l.OrderID, &l.DenominationID, &l.Amount, &l.Quantity, &l.CreatedAt); err != nil {
			return nil, domain.Internal(err, "scan order line")
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.Status, &o.ProductID, &o.PaidAmount, &o.CreditAmount, &o.ChangeAmount, &o.Remark, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, err
	}
	if err != nil {
		return domain.Order{}, domain.Internal(err, "scan order")
	}
	return o, nil
}
