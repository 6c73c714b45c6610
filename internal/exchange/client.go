package exchange

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	ccxt "github.com/ccxt/ccxt/go/v4"
	"go.uber.org/zap"

	"futures-bot/internal/config"
	"futures-bot/internal/order"
)

// Client 基于 ccxt 的 Binance USDⓈ-M 真实网关实现。
type Client struct {
	cfg      config.ExchangeConfig
	logger   *zap.Logger
	exchange *ccxt.Binanceusdm

	marketsMu     sync.Mutex
	marketsLoaded bool
}

var _ Gateway = (*Client)(nil)

// NewClient 构造真实网关。测试网开关在此一次性生效，后续不再分支。
func NewClient(cfg config.ExchangeConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	userConfig := map[string]interface{}{
		"enableRateLimit": true,
		"options": map[string]interface{}{
			"adjustForTimeDifference": true,
			"defaultType":             "future",
		},
	}
	if cfg.APIKey != "" {
		userConfig["apiKey"] = cfg.APIKey
	}
	if cfg.APISecret != "" {
		userConfig["secret"] = cfg.APISecret
	}

	ex := ccxt.NewBinanceusdm(userConfig)
	if cfg.UseSandbox {
		ex.SetSandboxMode(true)
	}

	return &Client{
		cfg:      cfg,
		logger:   logger,
		exchange: ex,
	}, nil
}

// PlaceOrder 提交单笔委托。
func (c *Client) PlaceOrder(ctx context.Context, req order.Request) (Ack, error) {
	if err := c.prepare(ctx); err != nil {
		return Ack{}, err
	}

	params := map[string]interface{}{}
	if req.TimeInForce != "" {
		params["timeInForce"] = string(req.TimeInForce)
	}

	var (
		placed ccxt.Order
		err    error
	)

	switch req.Type {
	case order.TypeMarket:
		placed, err = c.exchange.CreateMarketOrder(req.Symbol, sideParam(req.Side), req.Quantity)
	case order.TypeLimit:
		placed, err = c.exchange.CreateLimitOrder(req.Symbol, sideParam(req.Side), req.Quantity, req.Price,
			ccxt.WithCreateLimitOrderParams(params))
	case order.TypeStopLimit:
		params["stopPrice"] = req.StopPrice
		placed, err = c.exchange.CreateOrder(req.Symbol, "limit", sideParam(req.Side), req.Quantity,
			ccxt.WithCreateOrderPrice(req.Price),
			ccxt.WithCreateOrderParams(params))
	case order.TypeStopMarket:
		params["stopPrice"] = req.StopPrice
		placed, err = c.exchange.CreateOrder(req.Symbol, "market", sideParam(req.Side), req.Quantity,
			ccxt.WithCreateOrderParams(params))
	default:
		return Ack{}, fmt.Errorf("%w: 不支持的订单类型 %s", ErrRejected, req.Type)
	}
	if err != nil {
		return Ack{}, Classify(err)
	}

	ack := Ack{
		OrderID: derefString(placed.Id),
		Status:  mapStatus(derefString(placed.Status)),
	}

	c.logger.Debug("委托已提交",
		zap.String("symbol", req.Symbol),
		zap.String("side", string(req.Side)),
		zap.String("type", string(req.Type)),
		zap.Float64("quantity", req.Quantity),
		zap.String("order_id", ack.OrderID),
	)

	return ack, nil
}

// CancelOrder 撤销指定委托。
func (c *Client) CancelOrder(ctx context.Context, symbol, orderID string) error {
	if err := c.prepare(ctx); err != nil {
		return err
	}

	if _, err := c.exchange.CancelOrder(orderID, ccxt.WithCancelOrderSymbol(symbol)); err != nil {
		return Classify(err)
	}
	return nil
}

// GetOrderStatus 查询单笔委托状态。
func (c *Client) GetOrderStatus(ctx context.Context, symbol, orderID string) (OrderState, error) {
	if err := c.prepare(ctx); err != nil {
		return OrderState{}, err
	}

	fetched, err := c.exchange.FetchOrder(orderID, ccxt.WithFetchOrderSymbol(symbol))
	if err != nil {
		return OrderState{}, Classify(err)
	}

	return convertOrder(fetched), nil
}

// GetAccountBalance 查询账户资金，按 USDT/USDC/USD 顺序取计价资产。
func (c *Client) GetAccountBalance(ctx context.Context) (Balance, error) {
	if err := c.prepare(ctx); err != nil {
		return Balance{}, err
	}

	balances, err := c.exchange.FetchBalance()
	if err != nil {
		return Balance{}, Classify(err)
	}

	balance := Balance{Timestamp: time.Now().UTC()}
	for _, code := range []string{"USDT", "USDC", "USD"} {
		if balances.Total != nil {
			if total, ok := balances.Total[code]; ok && total != nil && balance.TotalEquity == 0 {
				balance.TotalEquity = *total
			}
		}
		if balances.Free != nil {
			if free, ok := balances.Free[code]; ok && free != nil && balance.Available == 0 {
				balance.Available = *free
			}
		}
	}

	return balance, nil
}

// ListOpenOrders 查询指定交易对的未完结委托。
func (c *Client) ListOpenOrders(ctx context.Context, symbol string) ([]OrderState, error) {
	if err := c.prepare(ctx); err != nil {
		return nil, err
	}

	fetched, err := c.exchange.FetchOpenOrders(ccxt.WithFetchOpenOrdersSymbol(symbol))
	if err != nil {
		return nil, Classify(err)
	}

	states := make([]OrderState, 0, len(fetched))
	for _, o := range fetched {
		states = append(states, convertOrder(o))
	}
	return states, nil
}

func (c *Client) prepare(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.ensureMarketsLoaded(ctx)
}

func (c *Client) ensureMarketsLoaded(ctx context.Context) error {
	if c.marketsLoaded {
		return nil
	}

	c.marketsMu.Lock()
	defer c.marketsMu.Unlock()

	if c.marketsLoaded {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := c.exchange.LoadMarkets(); err != nil {
		return Classify(err)
	}

	c.marketsLoaded = true
	c.logger.Info("已完成市场元数据加载", zap.String("exchange", c.cfg.Name))
	return nil
}

func convertOrder(o ccxt.Order) OrderState {
	return OrderState{
		OrderID:  derefString(o.Id),
		Symbol:   derefString(o.Symbol),
		Side:     order.Side(strings.ToUpper(derefString(o.Side))),
		Type:     mapOrderType(derefString(o.Type), derefFloat(o.StopPrice)),
		Price:    derefFloat(o.Price),
		Quantity: derefFloat(o.Amount),
		Status:   mapStatus(derefString(o.Status)),
	}
}

// mapStatus 兼容 ccxt 统一状态与 Binance 原生状态两种写法。
func mapStatus(raw string) order.Status {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "OPEN", "NEW":
		return order.StatusNew
	case "PARTIALLY_FILLED":
		return order.StatusPartiallyFilled
	case "CLOSED", "FILLED":
		return order.StatusFilled
	case "CANCELED", "CANCELLED":
		return order.StatusCanceled
	case "REJECTED":
		return order.StatusRejected
	case "EXPIRED":
		return order.StatusExpired
	default:
		return order.StatusUnknown
	}
}

func mapOrderType(raw string, stopPrice float64) order.Type {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "market":
		if stopPrice > 0 {
			return order.TypeStopMarket
		}
		return order.TypeMarket
	case "limit":
		if stopPrice > 0 {
			return order.TypeStopLimit
		}
		return order.TypeLimit
	case "stop", "stop_loss_limit":
		return order.TypeStopLimit
	case "stop_market":
		return order.TypeStopMarket
	default:
		return order.Type(strings.ToUpper(raw))
	}
}

func sideParam(side order.Side) string {
	return strings.ToLower(string(side))
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
