package strategy

import (
	"futures-bot/internal/order"
	"futures-bot/internal/validate"
)

// OcoSpec 描述一组 OCO 委托：限价止盈与触发止损互为兄弟单，
// 任意一侧成交后需要撤销另一侧（由执行层的轮询完成）。
// 两条腿在执行时共享同一 RunID 作为客户端侧分组标识。
type OcoSpec struct {
	Symbol          string
	Side            order.Side
	Quantity        float64
	TakeProfitPrice float64
	StopPrice       float64
	StopLimitPrice  float64
	TimeInForce     order.TimeInForce
}

// Plan 生成恰好两步的计划：先止盈限价单，后止损触发单，数量一致。
func (s OcoSpec) Plan() (Plan, error) {
	if err := validate.Symbol(s.Symbol); err != nil {
		return Plan{}, err
	}
	if err := validate.Quantity(s.Quantity); err != nil {
		return Plan{}, err
	}
	if err := validate.OCOPrices(s.Side, s.TakeProfitPrice, s.StopPrice, s.StopLimitPrice); err != nil {
		return Plan{}, err
	}

	tif := s.TimeInForce
	if tif == "" {
		tif = order.TimeInForceGTC
	}

	takeProfit := order.Request{
		Symbol:      s.Symbol,
		Side:        s.Side,
		Quantity:    s.Quantity,
		Price:       s.TakeProfitPrice,
		Type:        order.TypeLimit,
		TimeInForce: tif,
	}
	stopLoss := order.Request{
		Symbol:      s.Symbol,
		Side:        s.Side,
		Quantity:    s.Quantity,
		Price:       s.StopLimitPrice,
		StopPrice:   s.StopPrice,
		Type:        order.TypeStopLimit,
		TimeInForce: tif,
	}

	for _, req := range []order.Request{takeProfit, stopLoss} {
		if err := validate.Request(req); err != nil {
			return Plan{}, err
		}
	}

	return Plan{
		Symbol: s.Symbol,
		Kind:   KindOCO,
		Steps: []Step{
			{Request: takeProfit},
			{Request: stopLoss},
		},
	}, nil
}
