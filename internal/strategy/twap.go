package strategy

import (
	"time"

	"futures-bot/internal/order"
	"futures-bot/internal/validate"
)

// TwapSpec 将大额委托按时间均匀切分为等量分片以降低冲击成本。
// PriceLimit 为 0 时各分片走市价，否则以该价格挂限价。
type TwapSpec struct {
	Symbol          string
	Side            order.Side
	TotalQuantity   float64
	DurationMinutes int
	Chunks          int
	PriceLimit      float64
}

// Plan 生成 Chunks 步计划：分片数量均分（余数并入最后一片），
// 相邻分片间隔 DurationMinutes*60/Chunks 秒，首片不等待。
func (s TwapSpec) Plan() (Plan, error) {
	if err := validate.Symbol(s.Symbol); err != nil {
		return Plan{}, err
	}
	if err := validate.Side(s.Side); err != nil {
		return Plan{}, err
	}
	if err := validate.Quantity(s.TotalQuantity); err != nil {
		return Plan{}, err
	}
	if err := validate.DurationMinutes(s.DurationMinutes); err != nil {
		return Plan{}, err
	}
	if err := validate.Chunks(s.Chunks); err != nil {
		return Plan{}, err
	}
	if s.PriceLimit != 0 {
		if err := validate.Price(s.PriceLimit); err != nil {
			return Plan{}, err
		}
	}

	interval := time.Duration(float64(s.DurationMinutes) * 60 / float64(s.Chunks) * float64(time.Second))

	quantities := splitQuantity(s.TotalQuantity, s.Chunks)

	steps := make([]Step, 0, s.Chunks)
	for i, qty := range quantities {
		if err := validate.Quantity(qty); err != nil {
			return Plan{}, err
		}

		req := order.Request{
			Symbol:   s.Symbol,
			Side:     s.Side,
			Quantity: qty,
			Type:     order.TypeMarket,
		}
		if s.PriceLimit > 0 {
			req.Type = order.TypeLimit
			req.Price = s.PriceLimit
			req.TimeInForce = order.TimeInForceGTC
		}
		if err := validate.Request(req); err != nil {
			return Plan{}, err
		}

		var delay time.Duration
		if i > 0 {
			delay = interval
		}
		steps = append(steps, Step{Request: req, Delay: delay})
	}

	return Plan{
		Symbol: s.Symbol,
		Kind:   KindTWAP,
		Steps:  steps,
	}, nil
}
