package domain

import (
	"testing"

	"github.com/google/uuid"
)

func stocks(pairs ...[2]int64) []CashStock {
	out := make([]CashStock, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, CashStock{
			DenominationID: uuid.New(),
			Amount:         p[0],
			Quantity:       int(p[1]),
		})
	}
	return out
}

func total(breakdown []BreakdownLine) int64 {
	var sum int64
	for _, l := range breakdown {
		sum += l.Amount * int64(l.Qty)
	}
	return sum
}

func TestMakeChangeLargestFirst(t *testing.T) {
	res := MakeChange(180, stocks([2]int64{100, 10}, [2]int64{50, 10}, [2]int64{20, 10}, [2]int64{10, 10}))
	if !res.Success {
		t.Fatalf("expected success, got message %q", res.Message)
	}
	if res.TotalAmount != 180 {
		t.Errorf("TotalAmount = %d, want 180", res.TotalAmount)
	}
	if len(res.Breakdown) != 4 {
		t.Fatalf("breakdown has %d lines, want 4", len(res.Breakdown))
	}
	for i, want := range []int64{100, 50, 20, 10} {
		if res.Breakdown[i].Amount != want || res.Breakdown[i].Qty != 1 {
			t.Errorf("line %d = %dx%d, want 1x%d", i, res.Breakdown[i].Qty, res.Breakdown[i].Amount, want)
		}
	}
}

func TestMakeChangeCapsAtStock(t *testing.T) {
	res := MakeChange(70, stocks([2]int64{20, 2}, [2]int64{10, 5}))
	if !res.Success {
		t.Fatalf("expected success, got message %q", res.Message)
	}
	// Only two 20s in stock, the rest comes from 10s.
	if res.Breakdown[0].Qty != 2 || res.Breakdown[1].Qty != 3 {
		t.Errorf("breakdown = %+v, want 2x20 + 3x10", res.Breakdown)
	}
	if got := total(res.Breakdown); got != 70 {
		t.Errorf("breakdown sums to %d, want 70", got)
	}
}

func TestMakeChangeEmptyStock(t *testing.T) {
	res := MakeChange(30, nil)
	if res.Success {
		t.Fatal("expected failure on empty stock")
	}
	if res.Message != "No cash available in machine" {
		t.Errorf("message = %q", res.Message)
	}
	if len(res.Breakdown) != 0 {
		t.Errorf("breakdown should be empty, got %+v", res.Breakdown)
	}
}

func TestMakeChangeShortfall(t *testing.T) {
	res := MakeChange(25, stocks([2]int64{50, 1}))
	if res.Success {
		t.Fatal("expected shortfall")
	}
	if res.Message != "Cannot make exact change. Short by 25" {
		t.Errorf("message = %q", res.Message)
	}
	if len(res.Breakdown) != 0 {
		t.Errorf("failed result must not expose a partial breakdown, got %+v", res.Breakdown)
	}
	if res.TotalAmount != 0 {
		t.Errorf("TotalAmount = %d, want 0 covered", res.TotalAmount)
	}
}

func TestMakeChangePartialShortfall(t *testing.T) {
	res := MakeChange(35, stocks([2]int64{20, 1}, [2]int64{10, 1}))
	if res.Success {
		t.Fatal("expected shortfall")
	}
	// 20 + 10 covered, 5 short.
	if res.Message != "Cannot make exact change. Short by 5" {
		t.Errorf("message = %q", res.Message)
	}
	if res.TotalAmount != 30 {
		t.Errorf("TotalAmount = %d, want 30 covered", res.TotalAmount)
	}
}

// Greedy commits to the largest denomination even when a feasible combination
// exists without it. 60 is payable as three 20s, but greedy consumes the 50
// first and then cannot cover the remaining 10.
func TestMakeChangeGreedyIsNotOptimal(t *testing.T) {
	res := MakeChange(60, stocks([2]int64{50, 1}, [2]int64{20, 3}))
	if res.Success {
		t.Fatalf("greedy unexpectedly found %+v", res.Breakdown)
	}
}

func TestMakeChangeSkipsZeroQuantityRows(t *testing.T) {
	res := MakeChange(30, stocks([2]int64{50, 0}, [2]int64{10, 5}))
	if !res.Success {
		t.Fatalf("expected success, got message %q", res.Message)
	}
	if len(res.Breakdown) != 1 || res.Breakdown[0].Qty != 3 {
		t.Errorf("breakdown = %+v, want 3x10", res.Breakdown)
	}
}
