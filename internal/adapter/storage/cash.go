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

// CashRepository persists denominations and the machine float.
type CashRepository struct {
	Db *pgxpool.Pool
}

func NewCashRepository(db *pgxpool.Pool) *CashRepository {
	return &CashRepository{Db: db}
}

func (r *CashRepository) ListActiveDenominations(ctx context.Context) ([]domain.Denomination, error) {
	rows, err := r.Db.Query(ctx, `
		SELECT id, amount, type, is_active, created_at
		FROM denominations
		WHERE is_active
		ORDER BY amount DESC`)
	if err != nil {
		return nil, domain.Internal(err, "list denominations")
	}
	defer rows.Close()

	var denominations []domain.Denomination
	for rows.Next() {
		var d domain.Denomination
		if err := rows.Scan(&d.ID, &d.Amount, &d.Kind, &d.Active, &d.CreatedAt); err != nil {
			return nil, domain.Internal(err, "scan denomination")
		}
		denominations = append(denominations, d)
	}
	return denominations, rows.Err()
}

func (r *CashRepository) GetDenomination(ctx context.Context, tx port.Tx, id uuid.UUID) (domain.Denomination, error) {
	var d domain.Denomination
	err := queries(r.Db, tx).QueryRow(ctx, `
		SELECT id, amount, type, is_active, created_at
		FROM denominations
		WHERE id = $1`, id).
		Scan(&d.ID, &d.Amount, &d.Kind, &d.Active, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Denomination{}, domain.NotFound("Denomination with ID: %s not found", id)
	}
	if err != nil {
		return domain.Denomination{}, domain.Internal(err, "load denomination")
	}
	return d, nil
}

func (r *CashRepository) GetStock(ctx context.Context, tx port.Tx) ([]domain.CashStock, error) {
	rows, err := queries(r.Db, tx).Query(ctx, `
		SELECT cs.denomination_id, d.amount, d.type, cs.quantity
		FROM cash_stock cs
		JOIN denominations d ON d.id = cs.denomination_id
		WHERE d.is_active
		ORDER BY d.amount DESC`)
	if err != nil {
		return nil, domain.Internal(err, "load cash stock")
	}
	defer rows.Close()

	var stocks []domain.CashStock
	for rows.Next() {
		var s domain.CashStock
		if err := rows.Scan(&s.DenominationID, &s.Amount, &s.Kind, &s.Quantity); err != nil {
			return nil, domain.Internal(err, "scan cash stock")
		}
		stocks = append(stocks, s)
	}
	return stocks, rows.Err()
}

// Adjust applies deltaQty to one denomination's float row. The row is read
// under FOR UPDATE so concurrent adjustments serialize and cannot both pass
// the non-negativity check on a stale quantity.
func (r *CashRepository) Adjust(ctx context.Context, tx port.Tx, denominationID uuid.UUID, deltaQty int) (domain.CashStock, error) {
	return inTx(ctx, r.Db, tx, func(tx pgx.Tx) (domain.CashStock, error) {
		var d domain.Denomination
		err := tx.QueryRow(ctx, `SELECT id, amount, type FROM denominations WHERE id = $1`, denominationID).
			Scan(&d.ID, &d.Amount, &d.Kind)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CashStock{}, domain.NotFound("Denomination with ID: %s not found", denominationID)
		}
		if err != nil {
			return domain.CashStock{}, domain.Internal(err, "load denomination")
		}

		var current int
		err = tx.QueryRow(ctx, `SELECT quantity FROM cash_stock WHERE denomination_id = $1 FOR UPDATE`, denominationID).
			Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			// Lazily create the stock row at zero.
			if _, err := tx.Exec(ctx, `INSERT INTO cash_stock (denomination_id, quantity) VALUES ($1, 0)`, denominationID); err != nil {
				return domain.CashStock{}, domain.Internal(err, "create cash stock row")
			}
			current = 0
		} else if err != nil {
			return domain.CashStock{}, domain.Internal(err, "load cash stock row")
		}

		newQty := current + deltaQty
		if newQty < 0 {
			return domain.CashStock{}, domain.Conflict("Insufficient cash stock. Current: %d, Requested: %d", current, deltaQty)
		}

		if _, err := tx.Exec(ctx, `UPDATE cash_stock SET quantity = $1, updated_at = NOW() WHERE denomination_id = $2`, newQty, denominationID); err != nil {
			return domain.CashStock{}, domain.Internal(err, "update cash stock")
		}

		return domain.CashStock{
			DenominationID: d.ID,
			Amount:         d.Amount,
			Kind:           d.Kind,
			Quantity:       newQty,
		}, nil
	})
}
