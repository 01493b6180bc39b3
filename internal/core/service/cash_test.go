package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supawitsnnrk/bluepi-backend/internal/core/domain"
)

func newCashService() (*memoryState, *CashService) {
	st := newMemoryState()
	return st, &CashService{Store: memCashStore{st}}
}

func TestListActiveDenominationsOrdering(t *testing.T) {
	st, svc := newCashService()
	ctx := context.Background()
	st.addDenomination(10, domain.Coin, true, 0)
	st.addDenomination(100, domain.Bill, true, 0)
	st.addDenomination(25, domain.Coin, false, 0)
	st.addDenomination(50, domain.Bill, true, 0)

	dens, err := svc.ListActiveDenominations(ctx)
	require.NoError(t, err)
	require.Len(t, dens, 3)
	assert.Equal(t, int64(100), dens[0].Amount)
	assert.Equal(t, int64(50), dens[1].Amount)
	assert.Equal(t, int64(10), dens[2].Amount)
}

func TestValidateDenomination(t *testing.T) {
	st, svc := newCashService()
	ctx := context.Background()
	active := st.addDenomination(20, domain.Bill, true, 0)
	retired := st.addDenomination(25, domain.Coin, false, 0)

	res, err := svc.ValidateDenomination(ctx, active, 2)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Message)

	res, err = svc.ValidateDenomination(ctx, retired, 1)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Message, "not active")

	res, err = svc.ValidateDenomination(ctx, active, 0)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Message, "greater than 0")

	// An unknown id is a validation failure, not an error.
	res, err = svc.ValidateDenomination(ctx, uuid.New(), 1)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Message, "not found")
}

func TestAdjustStock(t *testing.T) {
	st, svc := newCashService()
	ctx := context.Background()
	coin10 := st.addDenomination(10, domain.Coin, true, 5)

	stock, err := svc.Adjust(ctx, nil, coin10, 3)
	require.NoError(t, err)
	assert.Equal(t, 8, stock.Quantity)

	stock, err = svc.Adjust(ctx, nil, coin10, -8)
	require.NoError(t, err)
	assert.Equal(t, 0, stock.Quantity)
}

func TestAdjustStockNeverNegative(t *testing.T) {
	st, svc := newCashService()
	ctx := context.Background()
	coin10 := st.addDenomination(10, domain.Coin, true, 2)

	_, err := svc.Adjust(ctx, nil, coin10, -3)
	require.Error(t, err)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	assert.Contains(t, err.Error(), "Insufficient cash stock")

	// Failed adjustment leaves the count untouched.
	assert.Equal(t, 2, st.cashQty(coin10))
}

func TestAdjustUnknownDenomination(t *testing.T) {
	_, svc := newCashService()
	ctx := context.Background()

	_, err := svc.Adjust(ctx, nil, uuid.New(), 1)
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestCalculateChangeGreedy(t *testing.T) {
	st, svc := newCashService()
	ctx := context.Background()
	st.addDenomination(100, domain.Bill, true, 10)
	st.addDenomination(50, domain.Bill, true, 10)
	st.addDenomination(20, domain.Bill, true, 10)
	st.addDenomination(10, domain.Coin, true, 10)

	res, err := svc.CalculateChange(ctx, nil, 180)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, int64(180), res.TotalAmount)

	// Largest-first: one 100, one 50, one 20, one 10.
	require.Len(t, res.Breakdown, 4)
	amounts := []int64{100, 50, 20, 10}
	for i, line := range res.Breakdown {
		assert.Equal(t, amounts[i], line.Amount)
		assert.Equal(t, 1, line.Qty)
	}
}

func TestCalculateChangeRespectsStockLimits(t *testing.T) {
	st, svc := newCashService()
	ctx := context.Background()
	st.addDenomination(50, domain.Bill, true, 1)
	st.addDenomination(20, domain.Bill, true, 10)

	res, err := svc.CalculateChange(ctx, nil, 110)
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.Len(t, res.Breakdown, 2)
	assert.Equal(t, 1, res.Breakdown[0].Qty) // only one 50 in the float
	assert.Equal(t, 3, res.Breakdown[1].Qty)
}

func TestCalculateChangeShortfall(t *testing.T) {
	st, svc := newCashService()
	ctx := context.Background()
	fifty := st.addDenomination(50, domain.Bill, true, 1)

	res, err := svc.CalculateChange(ctx, nil, 25)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, res.Breakdown)
	assert.Contains(t, res.Message, "Short by 25")

	// Read-only: the float is never touched.
	assert.Equal(t, 1, st.cashQty(fifty))
}

func TestCalculateChangeEmptyFloat(t *testing.T) {
	st, svc := newCashService()
	ctx := context.Background()
	// A denomination with zero stock does not count as available cash.
	st.addDenomination(10, domain.Coin, true, 0)

	res, err := svc.CalculateChange(ctx, nil, 30)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "No cash available in machine", res.Message)
}

func TestCalculateChangeRejectsNonPositiveAmount(t *testing.T) {
	_, svc := newCashService()
	ctx := context.Background()

	for _, amount := range []int64{0, -10} {
		_, err := svc.CalculateChange(ctx, nil, amount)
		require.Error(t, err)
		assert.Equal(t, domain.KindInvalidArgument, domain.KindOf(err))
	}
}
