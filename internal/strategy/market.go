package strategy

import (
	"futures-bot/internal/order"
	"futures-bot/internal/validate"
)

// MarketSpec 描述单笔市价单。
type MarketSpec struct {
	Symbol   string
	Side     order.Side
	Quantity float64
}

// Plan 生成仅含一步的市价计划。
func (s MarketSpec) Plan() (Plan, error) {
	req := order.Request{
		Symbol:   s.Symbol,
		Side:     s.Side,
		Quantity: s.Quantity,
		Type:     order.TypeMarket,
	}
	if err := validate.Request(req); err != nil {
		return Plan{}, err
	}

	return Plan{
		Symbol: s.Symbol,
		Kind:   KindMarket,
		Steps:  []Step{{Request: req}},
	}, nil
}
