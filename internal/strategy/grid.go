package strategy

import (
	"futures-bot/internal/order"
	"futures-bot/internal/validate"
)

// GridSpec 在区间内铺设等距限价单网格。
// 方向策略：所有层级共用请求的方向，不做中轴上下拆分。
type GridSpec struct {
	Symbol        string
	Side          order.Side
	TotalQuantity float64
	UpperPrice    float64
	LowerPrice    float64
	Levels        int
	TimeInForce   order.TimeInForce
}

// Plan 生成 Levels 步计划：价格自 LowerPrice 到 UpperPrice 线性插值
// （步长 (upper-lower)/(levels-1)），首末两级取边界精确值；
// 每级数量为总量均分，余数并入最高一级。
func (s GridSpec) Plan() (Plan, error) {
	if err := validate.Symbol(s.Symbol); err != nil {
		return Plan{}, err
	}
	if err := validate.Side(s.Side); err != nil {
		return Plan{}, err
	}
	if err := validate.Quantity(s.TotalQuantity); err != nil {
		return Plan{}, err
	}
	if err := validate.GridBounds(s.UpperPrice, s.LowerPrice, s.Levels); err != nil {
		return Plan{}, err
	}

	tif := s.TimeInForce
	if tif == "" {
		tif = order.TimeInForceGTC
	}

	step := (s.UpperPrice - s.LowerPrice) / float64(s.Levels-1)
	quantities := splitQuantity(s.TotalQuantity, s.Levels)

	steps := make([]Step, 0, s.Levels)
	for i := 0; i < s.Levels; i++ {
		price := roundPrice(s.LowerPrice + float64(i)*step)
		switch i {
		case 0:
			price = s.LowerPrice
		case s.Levels - 1:
			price = s.UpperPrice
		}

		if err := validate.Quantity(quantities[i]); err != nil {
			return Plan{}, err
		}

		req := order.Request{
			Symbol:      s.Symbol,
			Side:        s.Side,
			Quantity:    quantities[i],
			Price:       price,
			Type:        order.TypeLimit,
			TimeInForce: tif,
		}
		if err := validate.Request(req); err != nil {
			return Plan{}, err
		}

		steps = append(steps, Step{Request: req})
	}

	return Plan{
		Symbol: s.Symbol,
		Kind:   KindGrid,
		Steps:  steps,
	}, nil
}
