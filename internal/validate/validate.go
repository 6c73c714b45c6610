package validate

import (
	"errors"
	"fmt"
	"regexp"

	"futures-bot/internal/order"
)

var (
	// ErrInvalidSymbol 表示交易对格式不合法。
	ErrInvalidSymbol = errors.New("validate: invalid symbol")
	// ErrInvalidSide 表示方向不是 BUY/SELL。
	ErrInvalidSide = errors.New("validate: invalid side")
	// ErrInvalidQuantity 表示数量必须为正。
	ErrInvalidQuantity = errors.New("validate: invalid quantity")
	// ErrInvalidPrice 表示价格必须为正。
	ErrInvalidPrice = errors.New("validate: invalid price")
	// ErrInvalidPercentage 表示百分比必须位于[0,100]。
	ErrInvalidPercentage = errors.New("validate: invalid percentage")
	// ErrInvalidTimeInForce 表示有效期策略不受支持。
	ErrInvalidTimeInForce = errors.New("validate: invalid time in force")
	// ErrInvalidGridRange 表示网格区间或层数不合法。
	ErrInvalidGridRange = errors.New("validate: invalid grid range")
	// ErrInvalidStopLimitRelation 表示触发价与限价关系违反方向语义。
	ErrInvalidStopLimitRelation = errors.New("validate: invalid stop/limit relationship")
	// ErrInvalidDuration 表示执行时长必须为正。
	ErrInvalidDuration = errors.New("validate: invalid duration")
	// ErrInvalidChunks 表示TWAP分片数不合法。
	ErrInvalidChunks = errors.New("validate: invalid chunk count")
)

// 交易对格式沿用交易所的 BASEQUOTE 大写字母数字约定。
var symbolPattern = regexp.MustCompile(`^[A-Z0-9]{5,12}$`)

const (
	minGridLevels = 2
	maxGridLevels = 50
	maxTwapChunks = 100

	// 价格精度为两位小数，网格相邻层级价差不得低于一个最小报价单位，
	// 否则舍入后会出现重复价位。
	priceTick = 0.01
)

// Symbol 校验交易对格式。
func Symbol(symbol string) error {
	if !symbolPattern.MatchString(symbol) {
		return fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	return nil
}

// Side 校验下单方向。
func Side(side order.Side) error {
	if side != order.SideBuy && side != order.SideSell {
		return fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}
	return nil
}

// Quantity 校验数量为正。
func Quantity(quantity float64) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidQuantity, quantity)
	}
	return nil
}

// Price 校验价格为正。
func Price(price float64) error {
	if price <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidPrice, price)
	}
	return nil
}

// Percentage 校验百分比位于[0,100]。
func Percentage(pct float64) error {
	if pct < 0 || pct > 100 {
		return fmt.Errorf("%w: %v", ErrInvalidPercentage, pct)
	}
	return nil
}

// TimeInForce 校验有效期策略，空值视为未指定。
func TimeInForce(tif order.TimeInForce) error {
	switch tif {
	case "", order.TimeInForceGTC, order.TimeInForceIOC, order.TimeInForceFOK:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTimeInForce, tif)
	}
}

// StopLimitRelation 校验触发价与限价的方向关系：
// BUY 在价格向上突破时触发，限价不得低于触发价；
// SELL 在价格向下跌破时触发，限价不得高于触发价。
func StopLimitRelation(side order.Side, stopPrice, limitPrice float64) error {
	if err := Side(side); err != nil {
		return err
	}
	if err := Price(stopPrice); err != nil {
		return err
	}
	if err := Price(limitPrice); err != nil {
		return err
	}

	switch side {
	case order.SideBuy:
		if limitPrice < stopPrice {
			return fmt.Errorf("%w: BUY 要求 limit(%v) >= stop(%v)", ErrInvalidStopLimitRelation, limitPrice, stopPrice)
		}
	case order.SideSell:
		if limitPrice > stopPrice {
			return fmt.Errorf("%w: SELL 要求 limit(%v) <= stop(%v)", ErrInvalidStopLimitRelation, limitPrice, stopPrice)
		}
	}
	return nil
}

// GridBounds 校验网格区间与层数。
func GridBounds(upper, lower float64, levels int) error {
	if err := Price(upper); err != nil {
		return err
	}
	if err := Price(lower); err != nil {
		return err
	}
	if upper <= lower {
		return fmt.Errorf("%w: upper(%v) 必须大于 lower(%v)", ErrInvalidGridRange, upper, lower)
	}
	if levels < minGridLevels || levels > maxGridLevels {
		return fmt.Errorf("%w: levels(%d) 必须位于[%d,%d]", ErrInvalidGridRange, levels, minGridLevels, maxGridLevels)
	}
	if step := (upper - lower) / float64(levels-1); step < priceTick-1e-9 {
		return fmt.Errorf("%w: 区间 [%v,%v] 拆分为 %d 层后步长 %v 低于最小报价单位 %v",
			ErrInvalidGridRange, lower, upper, levels, step, priceTick)
	}
	return nil
}

// DurationMinutes 校验执行时长。
func DurationMinutes(minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDuration, minutes)
	}
	return nil
}

// Chunks 校验TWAP分片数。
func Chunks(chunks int) error {
	if chunks < 1 || chunks > maxTwapChunks {
		return fmt.Errorf("%w: chunks(%d) 必须位于[1,%d]", ErrInvalidChunks, chunks, maxTwapChunks)
	}
	return nil
}

// OCOPrices 校验OCO三价关系，止损腿需同时满足 StopLimitRelation：
// SELL 止盈在上方、止损触发在下方（takeProfit > stop >= stopLimit）；
// BUY 止盈在下方、止损触发在上方（takeProfit < stop <= stopLimit）。
func OCOPrices(side order.Side, takeProfit, stopPrice, stopLimitPrice float64) error {
	if err := Price(takeProfit); err != nil {
		return err
	}
	if err := StopLimitRelation(side, stopPrice, stopLimitPrice); err != nil {
		return err
	}

	switch side {
	case order.SideSell:
		if takeProfit <= stopPrice {
			return fmt.Errorf("%w: SELL 要求 takeProfit(%v) > stop(%v)", ErrInvalidStopLimitRelation, takeProfit, stopPrice)
		}
	case order.SideBuy:
		if takeProfit >= stopPrice {
			return fmt.Errorf("%w: BUY 要求 takeProfit(%v) < stop(%v)", ErrInvalidStopLimitRelation, takeProfit, stopPrice)
		}
	}
	return nil
}

// Request 对单笔委托做整体校验，计划中的每一步都必须先通过。
func Request(req order.Request) error {
	if err := Symbol(req.Symbol); err != nil {
		return err
	}
	if err := Side(req.Side); err != nil {
		return err
	}
	if err := Quantity(req.Quantity); err != nil {
		return err
	}
	if err := TimeInForce(req.TimeInForce); err != nil {
		return err
	}
	if req.Type.RequiresPrice() {
		if err := Price(req.Price); err != nil {
			return err
		}
	}
	if req.Type.RequiresStopPrice() {
		if err := Price(req.StopPrice); err != nil {
			return err
		}
	}
	if req.Type == order.TypeStopLimit {
		if err := StopLimitRelation(req.Side, req.StopPrice, req.Price); err != nil {
			return err
		}
	}
	return nil
}
