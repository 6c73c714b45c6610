package strategy

import (
	"futures-bot/internal/order"
	"futures-bot/internal/validate"
)

// LimitSpec 描述单笔限价单。
type LimitSpec struct {
	Symbol      string
	Side        order.Side
	Quantity    float64
	Price       float64
	TimeInForce order.TimeInForce
}

// Plan 生成仅含一步的限价计划，有效期默认 GTC。
func (s LimitSpec) Plan() (Plan, error) {
	tif := s.TimeInForce
	if tif == "" {
		tif = order.TimeInForceGTC
	}

	req := order.Request{
		Symbol:      s.Symbol,
		Side:        s.Side,
		Quantity:    s.Quantity,
		Price:       s.Price,
		Type:        order.TypeLimit,
		TimeInForce: tif,
	}
	if err := validate.Request(req); err != nil {
		return Plan{}, err
	}

	return Plan{
		Symbol: s.Symbol,
		Kind:   KindLimit,
		Steps:  []Step{{Request: req}},
	}, nil
}
