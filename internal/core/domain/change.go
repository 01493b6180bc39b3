package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// BreakdownLine is one denomination's share of a change breakdown.
type BreakdownLine struct {
	DenominationID uuid.UUID `json:"denomination_id"`
	Amount         int64     `json:"amount"`
	Qty            int       `json:"qty"`
}

type ChangeResult struct {
	Success     bool            `json:"success"`
	TotalAmount int64           `json:"total_amount"`
	Breakdown   []BreakdownLine `json:"breakdown"`
	Message     string          `json:"message,omitempty"`
}

// MakeChange computes a greedy change breakdown for amountToChange against
// the given stock rows, which must be sorted by amount descending and contain
// only rows with quantity > 0.
//
// Greedy is exact for canonical denomination sets (1/5/10/20/50/100/...). For
// arbitrary stock-constrained sets it can miss a feasible combination and
// report a shortfall instead; callers get success=false, never a wrong total.
func MakeChange(amountToChange int64, stocks []CashStock) ChangeResult {
	if len(stocks) == 0 {
		return ChangeResult{
			Success:   false,
			Breakdown: []BreakdownLine{},
			Message:   "No cash available in machine",
		}
	}

	remaining := amountToChange
	var breakdown []BreakdownLine

	for _, stock := range stocks {
		if remaining <= 0 {
			break
		}
		if stock.Amount <= 0 || stock.Quantity <= 0 {
			continue
		}

		qtyNeeded := remaining / stock.Amount
		qtyToUse := qtyNeeded
		if int64(stock.Quantity) < qtyToUse {
			qtyToUse = int64(stock.Quantity)
		}

		if qtyToUse > 0 {
			breakdown = append(breakdown, BreakdownLine{
				DenominationID: stock.DenominationID,
				Amount:         stock.Amount,
				Qty:            int(qtyToUse),
			})
			remaining -= qtyToUse * stock.Amount
		}
	}

	if remaining > 0 {
		return ChangeResult{
			Success:     false,
			TotalAmount: amountToChange - remaining,
			Breakdown:   []BreakdownLine{},
			Message:     fmt.Sprintf("Cannot make exact change. Short by %d", remaining),
		}
	}

	return ChangeResult{
		Success:     true,
		TotalAmount: amountToChange,
		Breakdown:   breakdown,
	}
}
