package strategy

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"futures-bot/internal/order"
	"futures-bot/internal/validate"
)

func TestGridPlan_Scenario(t *testing.T) {
	spec := GridSpec{
		Symbol:        "BTCUSDT",
		Side:          order.SideBuy,
		TotalQuantity: 0.1,
		UpperPrice:    46000,
		LowerPrice:    44000,
		Levels:        5,
	}

	plan, err := spec.Plan()
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}

	if plan.Kind != KindGrid {
		t.Errorf("unexpected kind: %s", plan.Kind)
	}
	if len(plan.Steps) != 5 {
		t.Fatalf("expected 5 steps, got %d", len(plan.Steps))
	}

	wantPrices := []float64{44000, 44500, 45000, 45500, 46000}
	for i, step := range plan.Steps {
		if step.Request.Price != wantPrices[i] {
			t.Errorf("step %d price: got %v want %v", i, step.Request.Price, wantPrices[i])
		}
		if diff := math.Abs(step.Request.Quantity - 0.02); diff > 1e-9 {
			t.Errorf("step %d quantity: got %v want 0.02", i, step.Request.Quantity)
		}
		if step.Request.Type != order.TypeLimit {
			t.Errorf("step %d type: got %s want LIMIT", i, step.Request.Type)
		}
		if step.Request.Side != order.SideBuy {
			t.Errorf("step %d side: got %s want BUY", i, step.Request.Side)
		}
	}
}

func TestGridPlan_Properties(t *testing.T) {
	spec := GridSpec{
		Symbol:        "ETHUSDT",
		Side:          order.SideSell,
		TotalQuantity: 1.0,
		UpperPrice:    3500,
		LowerPrice:    3000,
		Levels:        7,
	}

	plan, err := spec.Plan()
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}

	if len(plan.Steps) != spec.Levels {
		t.Fatalf("expected %d steps, got %d", spec.Levels, len(plan.Steps))
	}
	if first := plan.Steps[0].Request.Price; first != spec.LowerPrice {
		t.Errorf("first price: got %v want %v", first, spec.LowerPrice)
	}
	if last := plan.Steps[len(plan.Steps)-1].Request.Price; last != spec.UpperPrice {
		t.Errorf("last price: got %v want %v", last, spec.UpperPrice)
	}
	for i := 1; i < len(plan.Steps); i++ {
		if plan.Steps[i].Request.Price <= plan.Steps[i-1].Request.Price {
			t.Errorf("prices not strictly increasing at step %d: %v <= %v",
				i, plan.Steps[i].Request.Price, plan.Steps[i-1].Request.Price)
		}
	}
	if diff := math.Abs(plan.TotalQuantity() - spec.TotalQuantity); diff > 1e-9 {
		t.Errorf("total quantity mismatch: got %v want %v", plan.TotalQuantity(), spec.TotalQuantity)
	}
}

func TestGridPlan_RemainderGoesToLastLevel(t *testing.T) {
	spec := GridSpec{
		Symbol:        "BTCUSDT",
		Side:          order.SideBuy,
		TotalQuantity: 0.1,
		UpperPrice:    46000,
		LowerPrice:    44000,
		Levels:        3,
	}

	plan, err := spec.Plan()
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}

	// 0.1/3 ≈ 0.033333，余量并入最后一级。
	if qty := plan.Steps[0].Request.Quantity; math.Abs(qty-0.033333) > 1e-9 {
		t.Errorf("per-level quantity: got %v want 0.033333", qty)
	}
	if qty := plan.Steps[2].Request.Quantity; math.Abs(qty-0.033334) > 1e-9 {
		t.Errorf("last-level quantity: got %v want 0.033334", qty)
	}
	if diff := math.Abs(plan.TotalQuantity() - spec.TotalQuantity); diff > 1e-9 {
		t.Errorf("total quantity mismatch: got %v", plan.TotalQuantity())
	}
}

func TestGridPlan_NarrowRangeKeepsPricesDistinct(t *testing.T) {
	// 步长低于最小报价单位时舍入会让相邻层级重合，必须在规划前拒绝。
	narrow := GridSpec{
		Symbol:        "BTCUSDT",
		Side:          order.SideBuy,
		TotalQuantity: 0.3,
		UpperPrice:    100.01,
		LowerPrice:    100.00,
		Levels:        3,
	}
	if _, err := narrow.Plan(); !errors.Is(err, validate.ErrInvalidGridRange) {
		t.Errorf("sub-tick step expected ErrInvalidGridRange, got %v", err)
	}

	// 恰好一个报价单位的步长仍然合法，且价格严格递增。
	fine := narrow
	fine.UpperPrice = 100.04
	fine.Levels = 5

	plan, err := fine.Plan()
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	wantPrices := []float64{100.00, 100.01, 100.02, 100.03, 100.04}
	for i, step := range plan.Steps {
		if math.Abs(step.Request.Price-wantPrices[i]) > 1e-9 {
			t.Errorf("step %d price: got %v want %v", i, step.Request.Price, wantPrices[i])
		}
	}
	for i := 1; i < len(plan.Steps); i++ {
		if plan.Steps[i].Request.Price <= plan.Steps[i-1].Request.Price {
			t.Errorf("prices not strictly increasing at step %d: %v <= %v",
				i, plan.Steps[i].Request.Price, plan.Steps[i-1].Request.Price)
		}
	}
}

func TestGridPlan_Deterministic(t *testing.T) {
	spec := GridSpec{
		Symbol:        "BTCUSDT",
		Side:          order.SideBuy,
		TotalQuantity: 0.5,
		UpperPrice:    47000,
		LowerPrice:    43000,
		Levels:        9,
	}

	first, err := spec.Plan()
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	second, err := spec.Plan()
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("plans differ across runs:\n%+v\n%+v", first, second)
	}
}

func TestGridPlan_Rejections(t *testing.T) {
	base := GridSpec{
		Symbol:        "BTCUSDT",
		Side:          order.SideBuy,
		TotalQuantity: 0.1,
		UpperPrice:    46000,
		LowerPrice:    44000,
		Levels:        5,
	}

	inverted := base
	inverted.UpperPrice, inverted.LowerPrice = base.LowerPrice, base.UpperPrice
	if _, err := inverted.Plan(); !errors.Is(err, validate.ErrInvalidGridRange) {
		t.Errorf("inverted range expected ErrInvalidGridRange, got %v", err)
	}

	badSymbol := base
	badSymbol.Symbol = "btc-usdt"
	if _, err := badSymbol.Plan(); !errors.Is(err, validate.ErrInvalidSymbol) {
		t.Errorf("bad symbol expected ErrInvalidSymbol, got %v", err)
	}

	zeroQty := base
	zeroQty.TotalQuantity = 0
	if _, err := zeroQty.Plan(); !errors.Is(err, validate.ErrInvalidQuantity) {
		t.Errorf("zero quantity expected ErrInvalidQuantity, got %v", err)
	}
}
