package execution

import (
	"time"

	"futures-bot/internal/order"
	"futures-bot/internal/strategy"
)

// Outcome 表示单步执行结果，从 PENDING 恰好迁移到一个终态。
type Outcome string

const (
	OutcomePending Outcome = "PENDING"
	OutcomePlaced  Outcome = "PLACED"
	OutcomeFailed  Outcome = "FAILED"
)

// Step 记录计划中一步的执行情况。
type Step struct {
	Request order.Request `json:"request"`
	Outcome Outcome       `json:"outcome"`
	OrderID string        `json:"order_id,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Result 为一次执行的汇总，完成后只读，归调用方所有。
// RunID 同时作为客户端侧分组标识：同一计划内的全部委托
// （如OCO的两条兄弟单）共享该标识，凭此在事件流水中互相关联。
type Result struct {
	RunID      string        `json:"run_id"`
	Symbol     string        `json:"symbol"`
	Kind       strategy.Kind `json:"kind"`
	PlanSize   int           `json:"plan_size"`
	Placed     int           `json:"placed"`
	Failed     int           `json:"failed"`
	Steps      []Step        `json:"steps"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Success 判断是否全部成交提交成功。
func (r Result) Success() bool {
	return r.PlanSize > 0 && r.Failed == 0
}

// OrderIDs 按计划顺序返回已提交订单号。
func (r Result) OrderIDs() []string {
	ids := make([]string, 0, len(r.Steps))
	for _, step := range r.Steps {
		if step.Outcome == OutcomePlaced && step.OrderID != "" {
			ids = append(ids, step.OrderID)
		}
	}
	return ids
}

// Pacing 控制相邻两步之间的默认等待，避免触发交易所限频；
// 步骤自带的 Delay（如TWAP分片间隔）优先生效。
type Pacing struct {
	InterStep time.Duration
}
