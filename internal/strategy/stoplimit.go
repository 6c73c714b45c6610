package strategy

import (
	"futures-bot/internal/order"
	"futures-bot/internal/validate"
)

// StopLimitSpec 描述单笔触发单。LimitPrice 为 0 时生成 STOP_MARKET。
type StopLimitSpec struct {
	Symbol      string
	Side        order.Side
	Quantity    float64
	StopPrice   float64
	LimitPrice  float64
	TimeInForce order.TimeInForce
}

// Plan 在校验触发价与限价关系后生成仅含一步的触发单计划。
func (s StopLimitSpec) Plan() (Plan, error) {
	req := order.Request{
		Symbol:    s.Symbol,
		Side:      s.Side,
		Quantity:  s.Quantity,
		StopPrice: s.StopPrice,
		Type:      order.TypeStopMarket,
	}

	if s.LimitPrice > 0 {
		tif := s.TimeInForce
		if tif == "" {
			tif = order.TimeInForceGTC
		}
		req.Type = order.TypeStopLimit
		req.Price = s.LimitPrice
		req.TimeInForce = tif
	}

	if err := validate.Request(req); err != nil {
		return Plan{}, err
	}

	return Plan{
		Symbol: s.Symbol,
		Kind:   KindStopLimit,
		Steps:  []Step{{Request: req}},
	}, nil
}
