package validate

import (
	"errors"
	"testing"

	"futures-bot/internal/order"
)

func TestSymbol(t *testing.T) {
	cases := []struct {
		symbol string
		ok     bool
	}{
		{"BTCUSDT", true},
		{"ETHUSDT", true},
		{"1000PEPEUSDT", true},
		{"btc-usdt", false},
		{"btcusdt", false},
		{"BTC/USDT", false},
		{"BTC", false},
		{"", false},
		{"VERYLONGSYMBOLUSDT", false},
	}

	for _, tc := range cases {
		err := Symbol(tc.symbol)
		if tc.ok && err != nil {
			t.Errorf("Symbol(%q) unexpected error: %v", tc.symbol, err)
		}
		if !tc.ok {
			if !errors.Is(err, ErrInvalidSymbol) {
				t.Errorf("Symbol(%q) expected ErrInvalidSymbol, got %v", tc.symbol, err)
			}
		}
	}
}

func TestQuantityAndPrice(t *testing.T) {
	if err := Quantity(0.001); err != nil {
		t.Errorf("Quantity(0.001) unexpected error: %v", err)
	}
	if err := Quantity(0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("Quantity(0) expected ErrInvalidQuantity, got %v", err)
	}
	if err := Quantity(-1); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("Quantity(-1) expected ErrInvalidQuantity, got %v", err)
	}
	if err := Price(50000); err != nil {
		t.Errorf("Price(50000) unexpected error: %v", err)
	}
	if err := Price(0); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("Price(0) expected ErrInvalidPrice, got %v", err)
	}
}

func TestPercentage(t *testing.T) {
	for _, pct := range []float64{0, 1.5, 100} {
		if err := Percentage(pct); err != nil {
			t.Errorf("Percentage(%v) unexpected error: %v", pct, err)
		}
	}
	for _, pct := range []float64{-0.1, 100.1} {
		if err := Percentage(pct); !errors.Is(err, ErrInvalidPercentage) {
			t.Errorf("Percentage(%v) expected ErrInvalidPercentage, got %v", pct, err)
		}
	}
}

func TestStopLimitRelation(t *testing.T) {
	// BUY 在上方触发后以不低于触发价的限价追入。
	if err := StopLimitRelation(order.SideBuy, 50000, 50100); err != nil {
		t.Errorf("BUY limit>=stop unexpected error: %v", err)
	}
	if err := StopLimitRelation(order.SideBuy, 50000, 49900); !errors.Is(err, ErrInvalidStopLimitRelation) {
		t.Errorf("BUY limit<stop expected ErrInvalidStopLimitRelation, got %v", err)
	}

	// SELL 在下方触发后以不高于触发价的限价离场。
	if err := StopLimitRelation(order.SideSell, 50000, 49900); err != nil {
		t.Errorf("SELL limit<=stop unexpected error: %v", err)
	}
	if err := StopLimitRelation(order.SideSell, 50000, 50100); !errors.Is(err, ErrInvalidStopLimitRelation) {
		t.Errorf("SELL limit>stop expected ErrInvalidStopLimitRelation, got %v", err)
	}

	if err := StopLimitRelation("HOLD", 50000, 49900); !errors.Is(err, ErrInvalidSide) {
		t.Errorf("invalid side expected ErrInvalidSide, got %v", err)
	}
	if err := StopLimitRelation(order.SideBuy, 0, 49900); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("zero stop expected ErrInvalidPrice, got %v", err)
	}
}

func TestGridBounds(t *testing.T) {
	if err := GridBounds(46000, 44000, 5); err != nil {
		t.Errorf("valid grid unexpected error: %v", err)
	}
	if err := GridBounds(44000, 46000, 5); !errors.Is(err, ErrInvalidGridRange) {
		t.Errorf("upper<lower expected ErrInvalidGridRange, got %v", err)
	}
	if err := GridBounds(46000, 46000, 5); !errors.Is(err, ErrInvalidGridRange) {
		t.Errorf("upper==lower expected ErrInvalidGridRange, got %v", err)
	}
	if err := GridBounds(46000, 44000, 1); !errors.Is(err, ErrInvalidGridRange) {
		t.Errorf("levels=1 expected ErrInvalidGridRange, got %v", err)
	}
	if err := GridBounds(46000, 44000, 51); !errors.Is(err, ErrInvalidGridRange) {
		t.Errorf("levels=51 expected ErrInvalidGridRange, got %v", err)
	}
	// 步长低于最小报价单位时，舍入会让相邻层级重合。
	if err := GridBounds(100.01, 100.00, 3); !errors.Is(err, ErrInvalidGridRange) {
		t.Errorf("sub-tick step expected ErrInvalidGridRange, got %v", err)
	}
	if err := GridBounds(100.02, 100.00, 3); err != nil {
		t.Errorf("one-tick step unexpected error: %v", err)
	}
}

func TestOCOPrices(t *testing.T) {
	// SELL: takeProfit > stop >= stopLimit
	if err := OCOPrices(order.SideSell, 52000, 48000, 47800); err != nil {
		t.Errorf("valid SELL oco unexpected error: %v", err)
	}
	if err := OCOPrices(order.SideSell, 47000, 48000, 47800); !errors.Is(err, ErrInvalidStopLimitRelation) {
		t.Errorf("SELL takeProfit<=stop expected error, got %v", err)
	}
	if err := OCOPrices(order.SideSell, 52000, 48000, 48200); !errors.Is(err, ErrInvalidStopLimitRelation) {
		t.Errorf("SELL stopLimit>stop expected error, got %v", err)
	}

	// BUY: takeProfit < stop <= stopLimit
	if err := OCOPrices(order.SideBuy, 48000, 52000, 52200); err != nil {
		t.Errorf("valid BUY oco unexpected error: %v", err)
	}
	if err := OCOPrices(order.SideBuy, 53000, 52000, 52200); !errors.Is(err, ErrInvalidStopLimitRelation) {
		t.Errorf("BUY takeProfit>=stop expected error, got %v", err)
	}
}

func TestRequest(t *testing.T) {
	valid := order.Request{
		Symbol:      "BTCUSDT",
		Side:        order.SideBuy,
		Quantity:    0.01,
		Price:       50000,
		Type:        order.TypeLimit,
		TimeInForce: order.TimeInForceGTC,
	}
	if err := Request(valid); err != nil {
		t.Errorf("valid request unexpected error: %v", err)
	}

	missingPrice := valid
	missingPrice.Price = 0
	if err := Request(missingPrice); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("limit without price expected ErrInvalidPrice, got %v", err)
	}

	badTif := valid
	badTif.TimeInForce = "DAY"
	if err := Request(badTif); !errors.Is(err, ErrInvalidTimeInForce) {
		t.Errorf("bad tif expected ErrInvalidTimeInForce, got %v", err)
	}

	stopLimit := order.Request{
		Symbol:    "BTCUSDT",
		Side:      order.SideSell,
		Quantity:  0.01,
		Price:     50100,
		StopPrice: 50000,
		Type:      order.TypeStopLimit,
	}
	if err := Request(stopLimit); !errors.Is(err, ErrInvalidStopLimitRelation) {
		t.Errorf("SELL stop-limit with limit>stop expected ErrInvalidStopLimitRelation, got %v", err)
	}

	market := order.Request{Symbol: "BTCUSDT", Side: order.SideSell, Quantity: 1, Type: order.TypeMarket}
	if err := Request(market); err != nil {
		t.Errorf("market request unexpected error: %v", err)
	}
}
