package position

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"futures-bot/internal/exchange"
	"futures-bot/internal/validate"
)

// ErrNoStopDistance 表示入场价与止损价重合，无法推算风险敞口。
var ErrNoStopDistance = errors.New("position: 入场价与止损价不能相同")

// Sizing 为一次仓位测算的结果。
type Sizing struct {
	Quantity     float64 `json:"quantity"`
	RiskAmount   float64 `json:"risk_amount"`
	StopDistance float64 `json:"stop_distance"`
	Equity       float64 `json:"equity"`
}

// Sizer 按账户权益与止损距离测算下单数量。
type Sizer struct {
	gateway exchange.Gateway
	logger  *zap.Logger
}

// NewSizer 创建仓位测算器。
func NewSizer(gateway exchange.Gateway, logger *zap.Logger) *Sizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sizer{
		gateway: gateway,
		logger:  logger,
	}
}

// Size 计算在给定风险比例下可承受的数量：
// 数量 = 权益 × 风险比例 / |入场价 - 止损价|，结果保留六位小数。
func (s *Sizer) Size(ctx context.Context, riskPercent, entryPrice, stopPrice float64) (Sizing, error) {
	if err := validate.Percentage(riskPercent); err != nil {
		return Sizing{}, err
	}
	if err := validate.Price(entryPrice); err != nil {
		return Sizing{}, fmt.Errorf("position: 入场价无效: %w", err)
	}
	if err := validate.Price(stopPrice); err != nil {
		return Sizing{}, fmt.Errorf("position: 止损价无效: %w", err)
	}

	distance := math.Abs(entryPrice - stopPrice)
	if distance == 0 {
		return Sizing{}, ErrNoStopDistance
	}

	balance, err := s.gateway.GetAccountBalance(ctx)
	if err != nil {
		return Sizing{}, fmt.Errorf("position: 查询账户权益失败: %w", err)
	}

	riskAmount := balance.TotalEquity * riskPercent / 100
	quantity := math.Round(riskAmount/distance*1e6) / 1e6

	s.logger.Info("仓位测算完成",
		zap.Float64("equity", balance.TotalEquity),
		zap.Float64("risk_percent", riskPercent),
		zap.Float64("stop_distance", distance),
		zap.Float64("quantity", quantity),
	)

	return Sizing{
		Quantity:     quantity,
		RiskAmount:   riskAmount,
		StopDistance: distance,
		Equity:       balance.TotalEquity,
	}, nil
}
