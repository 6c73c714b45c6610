package order

// Side 表示下单方向。
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Opposite 返回相反方向。
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Type 表示订单类型。
type Type string

const (
	TypeMarket     Type = "MARKET"
	TypeLimit      Type = "LIMIT"
	TypeStopLimit  Type = "STOP_LIMIT"
	TypeStopMarket Type = "STOP_MARKET"
)

// RequiresPrice 判断该类型是否必须携带限价。
func (t Type) RequiresPrice() bool {
	return t == TypeLimit || t == TypeStopLimit
}

// RequiresStopPrice 判断该类型是否必须携带触发价。
func (t Type) RequiresStopPrice() bool {
	return t == TypeStopLimit || t == TypeStopMarket
}

// TimeInForce 表示订单有效期策略。
type TimeInForce string

const (
	TimeInForceGTC TimeInForce = "GTC"
	TimeInForceIOC TimeInForce = "IOC"
	TimeInForceFOK TimeInForce = "FOK"
)

// Status 表示交易所侧订单状态。
type Status string

const (
	StatusNew             Status = "NEW"
	StatusPartiallyFilled Status = "PARTIALLY_FILLED"
	StatusFilled          Status = "FILLED"
	StatusCanceled        Status = "CANCELED"
	StatusRejected        Status = "REJECTED"
	StatusExpired         Status = "EXPIRED"
	StatusUnknown         Status = "UNKNOWN"
)

// IsTerminal 判断状态是否为终态。
func (s Status) IsTerminal() bool {
	switch s {
	case StatusFilled, StatusCanceled, StatusRejected, StatusExpired:
		return true
	default:
		return false
	}
}

// Request 描述一笔待提交的委托，构造后不再修改。
type Request struct {
	Symbol      string      `json:"symbol"`
	Side        Side        `json:"side"`
	Quantity    float64     `json:"quantity"`
	Price       float64     `json:"price,omitempty"`
	StopPrice   float64     `json:"stop_price,omitempty"`
	Type        Type        `json:"type"`
	TimeInForce TimeInForce `json:"time_in_force,omitempty"`
}
