package strategy

import (
	"errors"
	"math"
	"time"

	"futures-bot/internal/order"
)

// Kind 标识策略类型。
type Kind string

const (
	KindMarket    Kind = "market"
	KindLimit     Kind = "limit"
	KindStopLimit Kind = "stop_limit"
	KindOCO       Kind = "oco"
	KindTWAP      Kind = "twap"
	KindGrid      Kind = "grid"
)

// Step 为计划中的一步：一笔已通过校验的委托，以及发送前需等待的时长。
type Step struct {
	Request order.Request `json:"request"`
	Delay   time.Duration `json:"delay"`
}

// Plan 为确定性生成的委托序列，空计划视为非法。
type Plan struct {
	Symbol string `json:"symbol"`
	Kind   Kind   `json:"kind"`
	Steps  []Step `json:"steps"`
}

// ErrEmptyPlan 表示策略未能产出任何委托。
var ErrEmptyPlan = errors.New("strategy: empty plan")

// Planner 将策略参数转化为执行计划，实现必须是纯函数且可重复。
type Planner interface {
	Plan() (Plan, error)
}

// TotalQuantity 返回计划内全部委托数量之和。
func (p Plan) TotalQuantity() float64 {
	var total float64
	for _, step := range p.Steps {
		total += step.Request.Quantity
	}
	return total
}

// 交易所通用精度：价格2位小数、数量6位小数（与原始合约精度约定一致）。
func roundPrice(v float64) float64 {
	return math.Round(v*100) / 100
}

func roundQuantity(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// splitQuantity 将总量均分为 n 份，余数并入最后一份，保证份额之和等于总量。
func splitQuantity(total float64, n int) []float64 {
	per := roundQuantity(total / float64(n))
	parts := make([]float64, n)
	for i := 0; i < n-1; i++ {
		parts[i] = per
	}
	parts[n-1] = roundQuantity(total - per*float64(n-1))
	return parts
}
