package monitor

import (
	"time"

	"futures-bot/internal/execution"
	"futures-bot/internal/order"
	"futures-bot/internal/strategy"
)

// EventType 表示事件流水类型。
type EventType string

const (
	EventValidationFailure EventType = "validation_failure"
	EventPlanGenerated     EventType = "plan_generated"
	EventExecution         EventType = "execution"
	EventMonitorTick       EventType = "monitor_tick"
	EventCancellation      EventType = "cancellation"
	EventError             EventType = "error"
)

// Event 封装通用流水事件。
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ValidationFailurePayload 记录被拒绝的输入。
type ValidationFailurePayload struct {
	Command string `json:"command"`
	Reason  string `json:"reason"`
}

// PlanGeneratedPayload 记录策略生成的计划。
type PlanGeneratedPayload struct {
	Plan strategy.Plan `json:"plan"`
}

// ExecutionPayload 记录一次计划执行的汇总。
type ExecutionPayload struct {
	Result execution.Result `json:"result"`
}

// MonitorTickPayload 记录一轮轮询后的订单状态。
type MonitorTickPayload struct {
	Symbol   string                  `json:"symbol"`
	Statuses map[string]order.Status `json:"statuses"`
}

// CancellationPayload 记录撤单结果。
type CancellationPayload struct {
	Symbol    string   `json:"symbol"`
	Requested []string `json:"requested"`
	Canceled  []string `json:"canceled"`
}

// ErrorPayload 记录异常。
type ErrorPayload struct {
	Message string                 `json:"message"`
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}
