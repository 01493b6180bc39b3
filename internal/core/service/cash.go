package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/supawitsnnrk/bluepi-backend/internal/core/domain"
	"github.com/supawitsnnrk/bluepi-backend/internal/core/port"
)

// CashService owns the denomination catalog and the machine float.
type CashService struct {
	Store port.CashStore
}

func (s *CashService) ListActiveDenominations(ctx context.Context) ([]domain.Denomination, error) {
	return s.Store.ListActiveDenominations(ctx)
}

type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// ValidateDenomination checks that a denomination can be accepted: it must
// exist, be active, and the quantity must be positive.
func (s *CashService) ValidateDenomination(ctx context.Context, denominationID uuid.UUID, qty int) (ValidationResult, error) {
	den, err := s.Store.GetDenomination(ctx, nil, denominationID)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return ValidationResult{Valid: false, Message: fmt.Sprintf("Denomination ID: %s not found", denominationID)}, nil
		}
		return ValidationResult{}, err
	}

	if !den.Active {
		return ValidationResult{Valid: false, Message: fmt.Sprintf("Denomination %d is not active", den.Amount)}, nil
	}
	if qty <= 0 {
		return ValidationResult{Valid: false, Message: "Quantity must be greater than 0"}, nil
	}

	return ValidationResult{Valid: true}, nil
}

func (s *CashService) GetStock(ctx context.Context) ([]domain.CashStock, error) {
	return s.Store.GetStock(ctx, nil)
}

// Adjust applies deltaQty to one denomination's stock. Pass the surrounding
// transaction when the adjustment is part of a larger atomic operation.
func (s *CashService) Adjust(ctx context.Context, tx port.Tx, denominationID uuid.UUID, deltaQty int) (domain.CashStock, error) {
	return s.Store.Adjust(ctx, tx, denominationID, deltaQty)
}

// CalculateChange runs the greedy breakdown against the current float.
// Read-only: no stock is reserved or mutated.
func (s *CashService) CalculateChange(ctx context.Context, tx port.Tx, amountToChange int64) (domain.ChangeResult, error) {
	if amountToChange <= 0 {
		return domain.ChangeResult{}, domain.InvalidArgument("amount to change must be greater than 0")
	}

	stocks, err := s.Store.GetStock(ctx, tx)
	if err != nil {
		return domain.ChangeResult{}, err
	}

	eligible := make([]domain.CashStock, 0, len(stocks))
	for _, stock := range stocks {
		if stock.Quantity > 0 {
			eligible = append(eligible, stock)
		}
	}

	return domain.MakeChange(amountToChange, eligible), nil
}
