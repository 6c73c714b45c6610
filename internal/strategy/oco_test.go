package strategy

import (
	"errors"
	"reflect"
	"testing"

	"futures-bot/internal/order"
	"futures-bot/internal/validate"
)

func TestOcoPlan_ProducesTwoLinkedSteps(t *testing.T) {
	spec := OcoSpec{
		Symbol:          "BTCUSDT",
		Side:            order.SideSell,
		Quantity:        0.05,
		TakeProfitPrice: 52000,
		StopPrice:       48000,
		StopLimitPrice:  47800,
	}

	plan, err := spec.Plan()
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}

	if plan.Kind != KindOCO {
		t.Errorf("unexpected kind: %s", plan.Kind)
	}
	if len(plan.Steps) != 2 {
		t.Fatalf("expected exactly 2 steps, got %d", len(plan.Steps))
	}

	takeProfit := plan.Steps[0].Request
	stopLoss := plan.Steps[1].Request

	if takeProfit.Type != order.TypeLimit {
		t.Errorf("take-profit type: got %s want LIMIT", takeProfit.Type)
	}
	if stopLoss.Type != order.TypeStopLimit {
		t.Errorf("stop-loss type: got %s want STOP_LIMIT", stopLoss.Type)
	}
	if takeProfit.Quantity != stopLoss.Quantity {
		t.Errorf("sibling quantities differ: %v vs %v", takeProfit.Quantity, stopLoss.Quantity)
	}
	if takeProfit.Side != stopLoss.Side {
		t.Errorf("sibling sides differ: %s vs %s", takeProfit.Side, stopLoss.Side)
	}
	if takeProfit.Price != 52000 {
		t.Errorf("take-profit price: got %v want 52000", takeProfit.Price)
	}
	if stopLoss.StopPrice != 48000 || stopLoss.Price != 47800 {
		t.Errorf("stop-loss prices: got stop=%v limit=%v", stopLoss.StopPrice, stopLoss.Price)
	}
}

func TestOcoPlan_BuySide(t *testing.T) {
	spec := OcoSpec{
		Symbol:          "ETHUSDT",
		Side:            order.SideBuy,
		Quantity:        0.5,
		TakeProfitPrice: 2800,
		StopPrice:       3200,
		StopLimitPrice:  3220,
	}

	plan, err := spec.Plan()
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if len(plan.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(plan.Steps))
	}
}

func TestOcoPlan_RejectsInvertedPrices(t *testing.T) {
	spec := OcoSpec{
		Symbol:          "BTCUSDT",
		Side:            order.SideSell,
		Quantity:        0.05,
		TakeProfitPrice: 47000,
		StopPrice:       48000,
		StopLimitPrice:  47800,
	}
	if _, err := spec.Plan(); !errors.Is(err, validate.ErrInvalidStopLimitRelation) {
		t.Errorf("expected ErrInvalidStopLimitRelation, got %v", err)
	}
}

func TestOcoPlan_Deterministic(t *testing.T) {
	spec := OcoSpec{
		Symbol:          "BTCUSDT",
		Side:            order.SideSell,
		Quantity:        0.05,
		TakeProfitPrice: 52000,
		StopPrice:       48000,
		StopLimitPrice:  47800,
	}

	first, _ := spec.Plan()
	second, _ := spec.Plan()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("plans differ across runs")
	}
}
