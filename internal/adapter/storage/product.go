package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/supawitsnnrk/bluepi-backend/internal/core/domain"
	"github.com/supawitsnnrk/bluepi-backend/internal/core/port"
)

// ProductRepository persists the product catalog and per-product stock.
type ProductRepository struct {
	Db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{Db: db}
}

func (r *ProductRepository) Create(ctx context.Context, tx port.Tx, p domain.Product) (domain.Product, error) {
	return inTx(ctx, r.Db, tx, func(tx pgx.Tx) (domain.Product, error) {
		err := tx.QueryRow(ctx, `
			INSERT INTO products (name, price, sku, is_active)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at`,
			p.Name, p.Price, p.SKU, p.Active).
			Scan(&p.ID, &p.CreatedAt)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.Product{}, domain.Conflict("Product with SKU: %s already exists", p.SKU)
		}
		if err != nil {
			return domain.Product{}, domain.Internal(err, "insert product")
		}

		if _, err := tx.Exec(ctx, `INSERT INTO product_stock (product_id, quantity) VALUES ($1, 0)`, p.ID); err != nil {
			return domain.Product{}, domain.Internal(err, "insert product stock")
		}
		p.Stock = &domain.ProductStock{ProductID: p.ID, Quantity: 0}
		return p, nil
	})
}

func (r *ProductRepository) ListActive(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.Db.Query(ctx, `
		SELECT p.id, p.name, p.price, p.sku, p.is_active, p.created_at, ps.quantity
		FROM products p
		LEFT JOIN product_stock ps ON ps.product_id = p.id
		WHERE p.is_active
		ORDER BY p.created_at`)
	if err != nil {
		return nil, domain.Internal(err, "list products")
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.Db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, domain.Internal(err, "count products")
	}
	return count, nil
}

func (r *ProductRepository) Get(ctx context.Context, tx port.Tx, id uuid.UUID) (domain.Product, error) {
	row := queries(r.Db, tx).QueryRow(ctx, `
		SELECT p.id, p.name, p.price, p.sku, p.is_active, p.created_at, ps.quantity
		FROM products p
		LEFT JOIN product_stock ps ON ps.product_id = p.id
		WHERE p.id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, domain.NotFound("Product with ID: %s not found", id)
	}
	return p, err
}

func (r *ProductRepository) Save(ctx context.Context, tx port.Tx, p domain.Product) error {
	tag, err := queries(r.Db, tx).Exec(ctx, `
		UPDATE products
		SET name = $1, price = $2, sku = $3, is_active = $4, updated_at = NOW()
		WHERE id = $5`,
		p.Name, p.Price, p.SKU, p.Active, p.ID)
	if err != nil {
		return domain.Internal(err, "update product")
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("Product with ID: %s not found", p.ID)
	}
	return nil
}

// Adjust applies deltaQty to the product's stock row under FOR UPDATE.
// Unlike cash stock, a missing stock row is an error: every product gets its
// row at creation time.
func (r *ProductRepository) Adjust(ctx context.Context, tx port.Tx, productID uuid.UUID, deltaQty int) (domain.ProductStock, error) {
	return inTx(ctx, r.Db, tx, func(tx pgx.Tx) (domain.ProductStock, error) {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
			return domain.ProductStock{}, domain.Internal(err, "load product")
		}
		if !exists {
			return domain.ProductStock{}, domain.NotFound("Product with ID: %s not found", productID)
		}

		var current int
		err := tx.QueryRow(ctx, `SELECT quantity FROM product_stock WHERE product_id = $1 FOR UPDATE`, productID).
			Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ProductStock{}, domain.NotFound("Product stock for product ID: %s not found", productID)
		}
		if err != nil {
			return domain.ProductStock{}, domain.Internal(err, "load product stock row")
		}

		newQty := current + deltaQty
		if newQty < 0 {
			return domain.ProductStock{}, domain.Conflict("Insufficient stock. Current: %d, Requested: %d", current, deltaQty)
		}

		if _, err := tx.Exec(ctx, `UPDATE product_stock SET quantity = $1, updated_at = NOW() WHERE product_id = $2`, newQty, productID); err != nil {
			return domain.ProductStock{}, domain.Internal(err, "update product stock")
		}

		return domain.ProductStock{ProductID: productID, Quantity: newQty}, nil
	})
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	var qty *int
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.SKU, &p.Active, &p.CreatedAt, &qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, err
	}
	if err != nil {
		return domain.Product{}, domain.Internal(err, "scan product")
	}
	if qty != nil {
		p.Stock = &domain.ProductStock{ProductID: p.ID, Quantity: *qty}
	}
	return p, nil
}
