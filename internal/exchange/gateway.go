package exchange

import (
	"context"
	"time"

	"futures-bot/internal/order"
)

// Ack 为下单回执。
type Ack struct {
	OrderID string       `json:"order_id"`
	Status  order.Status `json:"status"`
}

// OrderState 为交易所侧订单快照。
type OrderState struct {
	OrderID  string       `json:"order_id"`
	Symbol   string       `json:"symbol"`
	Side     order.Side   `json:"side"`
	Type     order.Type   `json:"type"`
	Price    float64      `json:"price"`
	Quantity float64      `json:"quantity"`
	Status   order.Status `json:"status"`
}

// Balance 为账户资金快照。
type Balance struct {
	TotalEquity float64   `json:"total_equity"`
	Available   float64   `json:"available"`
	Timestamp   time.Time `json:"timestamp"`
}

// Gateway 抽象交易所能力，启动时在真实实现与模拟实现之间二选一注入，
// 业务层不感知具体实现。
type Gateway interface {
	PlaceOrder(ctx context.Context, req order.Request) (Ack, error)
	CancelOrder(ctx context.Context, symbol, orderID string) error
	GetOrderStatus(ctx context.Context, symbol, orderID string) (OrderState, error)
	GetAccountBalance(ctx context.Context) (Balance, error)
	ListOpenOrders(ctx context.Context, symbol string) ([]OrderState, error)
}
