package exchange

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"futures-bot/internal/order"
)

// Mock 为离线模拟网关：订单号单调递增，市价单立即成交，
// 挂单在首次状态查询时视为成交。行为确定，便于演练与联调。
type Mock struct {
	logger *zap.Logger

	mu     sync.Mutex
	nextID int64
	orders map[string]*OrderState
}

var _ Gateway = (*Mock)(nil)

// NewMock 创建模拟网关。
func NewMock(logger *zap.Logger) *Mock {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mock{
		logger: logger,
		nextID: 1000000,
		orders: make(map[string]*OrderState),
	}
}

// PlaceOrder 记录委托并返回回执。
func (m *Mock) PlaceOrder(ctx context.Context, req order.Request) (Ack, error) {
	if err := ctx.Err(); err != nil {
		return Ack{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := fmt.Sprintf("%d", m.nextID)

	status := order.StatusNew
	if req.Type == order.TypeMarket {
		status = order.StatusFilled
	}

	m.orders[id] = &OrderState{
		OrderID:  id,
		Symbol:   req.Symbol,
		Side:     req.Side,
		Type:     req.Type,
		Price:    req.Price,
		Quantity: req.Quantity,
		Status:   status,
	}

	m.logger.Debug("模拟网关已受理委托",
		zap.String("order_id", id),
		zap.String("symbol", req.Symbol),
		zap.String("type", string(req.Type)),
	)

	return Ack{OrderID: id, Status: status}, nil
}

// CancelOrder 撤销挂单，终态订单不可撤。
func (m *Mock) CancelOrder(ctx context.Context, symbol, orderID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.orders[orderID]
	if !ok || state.Symbol != symbol {
		return fmt.Errorf("%w: 未找到订单 %s", ErrRejected, orderID)
	}
	if state.Status.IsTerminal() {
		return fmt.Errorf("%w: 订单 %s 已处于终态 %s", ErrRejected, orderID, state.Status)
	}

	state.Status = order.StatusCanceled
	return nil
}

// GetOrderStatus 查询订单；挂单在首次查询时按成交处理。
func (m *Mock) GetOrderStatus(ctx context.Context, symbol, orderID string) (OrderState, error) {
	if err := ctx.Err(); err != nil {
		return OrderState{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.orders[orderID]
	if !ok || state.Symbol != symbol {
		return OrderState{}, fmt.Errorf("%w: 未找到订单 %s", ErrRejected, orderID)
	}

	if state.Status == order.StatusNew {
		state.Status = order.StatusFilled
	}
	return *state, nil
}

// GetAccountBalance 返回固定资金快照。
func (m *Mock) GetAccountBalance(ctx context.Context) (Balance, error) {
	if err := ctx.Err(); err != nil {
		return Balance{}, err
	}
	return Balance{
		TotalEquity: 10000,
		Available:   10000,
		Timestamp:   time.Now().UTC(),
	}, nil
}

// ListOpenOrders 返回指定交易对上未完结的委托，symbol 为空时不过滤。
func (m *Mock) ListOpenOrders(ctx context.Context, symbol string) ([]OrderState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	open := make([]OrderState, 0)
	for _, state := range m.orders {
		if (symbol == "" || state.Symbol == symbol) && !state.Status.IsTerminal() {
			open = append(open, *state)
		}
	}
	return open, nil
}
