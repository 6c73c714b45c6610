package app

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"futures-bot/internal/execution"
	"futures-bot/internal/order"
	"futures-bot/internal/strategy"
)

// executePlan 是各策略命令的公共路径：
// 规划失败（校验错误）在任何网关调用之前返回，零副作用；
// 执行中的单步失败已计入 Result，由退出码向上反映。
func (a *App) executePlan(ctx context.Context, command string, planner strategy.Planner) int {
	plan, err := planner.Plan()
	if err != nil {
		a.events.RecordValidationFailure(ctx, command, err)
		fmt.Fprintf(os.Stderr, "参数校验失败: %v\n", err)
		return exitFailure
	}

	a.events.RecordPlan(ctx, plan)

	result, err := a.executor.Execute(ctx, plan, execution.Pacing{InterStep: a.cfg.Execution.PaceInterval})
	if err != nil {
		a.events.RecordError(ctx, "执行计划中断", err, map[string]interface{}{"command": command})
		fmt.Fprintf(os.Stderr, "执行中断: %v\n", err)
		return exitFailure
	}

	a.events.RecordExecution(ctx, result)
	printJSON(result)

	if !result.Success() {
		return exitFailure
	}
	return exitOK
}

func (a *App) runMarket(ctx context.Context, args []string) int {
	pos, _, err := splitArgs(args, 3)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	side, err := parseSide(pos[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	quantity, err := parseFloatArg("quantity", pos[2])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}

	return a.executePlan(ctx, "market", strategy.MarketSpec{
		Symbol:   pos[0],
		Side:     side,
		Quantity: quantity,
	})
}

func (a *App) runLimit(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "limit 需要子命令: place|list|cancel")
		return exitUsage
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "place":
		return a.runLimitPlace(ctx, rest)
	case "list":
		return a.runLimitList(ctx, rest)
	case "cancel":
		return a.runCancelOne(ctx, rest)
	default:
		fmt.Fprintf(os.Stderr, "未知 limit 子命令: %q\n", sub)
		return exitUsage
	}
}

func (a *App) runLimitPlace(ctx context.Context, args []string) int {
	pos, flagArgs, err := splitArgs(args, 4)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	fs := flag.NewFlagSet("limit place", flag.ContinueOnError)
	tif := fs.String("time-in-force", a.cfg.Execution.TimeInForce, "委托有效期: GTC|IOC|FOK")
	if err := fs.Parse(flagArgs); err != nil {
		return exitUsage
	}

	side, err := parseSide(pos[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	quantity, err := parseFloatArg("quantity", pos[2])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	price, err := parseFloatArg("price", pos[3])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}

	return a.executePlan(ctx, "limit place", strategy.LimitSpec{
		Symbol:      pos[0],
		Side:        side,
		Quantity:    quantity,
		Price:       price,
		TimeInForce: order.TimeInForce(strings.ToUpper(*tif)),
	})
}

func (a *App) runLimitList(ctx context.Context, args []string) int {
	symbol := ""
	if len(args) > 0 {
		symbol = args[0]
	}

	orders, err := a.gateway.ListOpenOrders(ctx, symbol)
	if err != nil {
		a.events.RecordError(ctx, "查询挂单失败", err, map[string]interface{}{"symbol": symbol})
		fmt.Fprintf(os.Stderr, "查询挂单失败: %v\n", err)
		return exitFailure
	}

	printJSON(orders)
	return exitOK
}

// runCancelOne 撤销单笔委托（limit cancel）。
func (a *App) runCancelOne(ctx context.Context, args []string) int {
	pos, _, err := splitArgs(args, 2)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}
	symbol, orderID := pos[0], pos[1]

	if err := a.gateway.CancelOrder(ctx, symbol, orderID); err != nil {
		a.events.RecordError(ctx, "撤单失败", err, map[string]interface{}{"symbol": symbol, "order_id": orderID})
		fmt.Fprintf(os.Stderr, "撤单失败: %v\n", err)
		return exitFailure
	}

	a.events.RecordCancellation(ctx, symbol, []string{orderID}, []string{orderID})
	a.logger.Info("撤单完成", zap.String("symbol", symbol), zap.String("order_id", orderID))
	return exitOK
}

func (a *App) runStopLimit(ctx context.Context, args []string) int {
	pos, _, err := splitArgs(args, 5)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	side, err := parseSide(pos[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	quantity, err := parseFloatArg("quantity", pos[2])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	stopPrice, err := parseFloatArg("stopPrice", pos[3])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	limitPrice, err := parseFloatArg("limitPrice", pos[4])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}

	return a.executePlan(ctx, "stop-limit", strategy.StopLimitSpec{
		Symbol:     pos[0],
		Side:       side,
		Quantity:   quantity,
		StopPrice:  stopPrice,
		LimitPrice: limitPrice,
	})
}

func (a *App) runStopMarket(ctx context.Context, args []string) int {
	pos, _, err := splitArgs(args, 4)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	side, err := parseSide(pos[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	quantity, err := parseFloatArg("quantity", pos[2])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	stopPrice, err := parseFloatArg("stopPrice", pos[3])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}

	return a.executePlan(ctx, "stop-market", strategy.StopLimitSpec{
		Symbol:    pos[0],
		Side:      side,
		Quantity:  quantity,
		StopPrice: stopPrice,
	})
}

func (a *App) runOCO(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "oco 需要子命令: place|status|cancel")
		return exitUsage
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "place":
		return a.runOCOPlace(ctx, rest)
	case "status":
		return a.runOCOStatus(ctx, rest)
	case "cancel":
		return a.runCancelPair(ctx, "oco cancel", rest)
	default:
		fmt.Fprintf(os.Stderr, "未知 oco 子命令: %q\n", sub)
		return exitUsage
	}
}

func (a *App) runOCOPlace(ctx context.Context, args []string) int {
	pos, _, err := splitArgs(args, 6)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	side, err := parseSide(pos[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	quantity, err := parseFloatArg("quantity", pos[2])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	takeProfit, err := parseFloatArg("takeProfitPrice", pos[3])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	stopPrice, err := parseFloatArg("stopPrice", pos[4])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	stopLimit, err := parseFloatArg("stopLimitPrice", pos[5])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}

	return a.executePlan(ctx, "oco place", strategy.OcoSpec{
		Symbol:          pos[0],
		Side:            side,
		Quantity:        quantity,
		TakeProfitPrice: takeProfit,
		StopPrice:       stopPrice,
		StopLimitPrice:  stopLimit,
	})
}

func (a *App) runOCOStatus(ctx context.Context, args []string) int {
	pos, _, err := splitArgs(args, 3)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}
	symbol, firstID, secondID := pos[0], pos[1], pos[2]

	outcome, err := a.watcher.WatchOCO(ctx, symbol, firstID, secondID, a.cfg.Execution.WatchTimeout,
		func(statuses map[string]order.Status) {
			a.events.RecordTick(ctx, symbol, statuses)
		},
	)
	if err != nil {
		a.events.RecordError(ctx, "OCO监控失败", err, map[string]interface{}{"symbol": symbol})
		fmt.Fprintf(os.Stderr, "OCO监控失败: %v\n", err)
		return exitFailure
	}

	if outcome.CanceledOrderID != "" {
		a.events.RecordCancellation(ctx, symbol, []string{outcome.CanceledOrderID}, []string{outcome.CanceledOrderID})
	}

	printJSON(outcome)
	return exitOK
}

// runCancelPair 撤销一对兄弟单（oco cancel / grid cancel）。
func (a *App) runCancelPair(ctx context.Context, command string, args []string) int {
	pos, _, err := splitArgs(args, 3)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}
	symbol := pos[0]
	requested := []string{pos[1], pos[2]}

	canceled, err := a.watcher.CancelAll(ctx, symbol, requested)
	a.events.RecordCancellation(ctx, symbol, requested, canceled)
	if err != nil {
		a.events.RecordError(ctx, "撤单中断", err, map[string]interface{}{"command": command})
		fmt.Fprintf(os.Stderr, "撤单中断: %v\n", err)
		return exitFailure
	}

	printJSON(map[string]interface{}{"requested": requested, "canceled": canceled})
	if len(canceled) != len(requested) {
		return exitFailure
	}
	return exitOK
}

func (a *App) runTwap(ctx context.Context, args []string) int {
	pos, flagArgs, err := splitArgs(args, 5)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	fs := flag.NewFlagSet("twap", flag.ContinueOnError)
	priceLimit := fs.Float64("price-limit", 0, "各分片限价，0 表示市价")
	if err := fs.Parse(flagArgs); err != nil {
		return exitUsage
	}

	side, err := parseSide(pos[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	quantity, err := parseFloatArg("quantity", pos[2])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	duration, err := parseIntArg("durationMinutes", pos[3])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	chunks, err := parseIntArg("chunks", pos[4])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}

	return a.executePlan(ctx, "twap", strategy.TwapSpec{
		Symbol:          pos[0],
		Side:            side,
		TotalQuantity:   quantity,
		DurationMinutes: duration,
		Chunks:          chunks,
		PriceLimit:      *priceLimit,
	})
}

func (a *App) runGrid(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "grid 需要子命令: place|monitor|cancel")
		return exitUsage
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "place":
		return a.runGridPlace(ctx, rest)
	case "monitor":
		return a.runGridMonitor(ctx, rest)
	case "cancel":
		return a.runCancelPair(ctx, "grid cancel", rest)
	default:
		fmt.Fprintf(os.Stderr, "未知 grid 子命令: %q\n", sub)
		return exitUsage
	}
}

func (a *App) runGridPlace(ctx context.Context, args []string) int {
	pos, _, err := splitArgs(args, 6)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	side, err := parseSide(pos[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	quantity, err := parseFloatArg("quantity", pos[2])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	upper, err := parseFloatArg("upperPrice", pos[3])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	lower, err := parseFloatArg("lowerPrice", pos[4])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	levels, err := parseIntArg("levels", pos[5])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}

	return a.executePlan(ctx, "grid place", strategy.GridSpec{
		Symbol:        pos[0],
		Side:          side,
		TotalQuantity: quantity,
		UpperPrice:    upper,
		LowerPrice:    lower,
		Levels:        levels,
	})
}

func (a *App) runGridMonitor(ctx context.Context, args []string) int {
	pos, flagArgs, err := splitArgs(args, 3)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	fs := flag.NewFlagSet("grid monitor", flag.ContinueOnError)
	durationSec := fs.Int("duration", 0, "监控时长（秒），默认取配置 monitor_duration")
	if err := fs.Parse(flagArgs); err != nil {
		return exitUsage
	}

	duration := a.cfg.Execution.MonitorDuration
	if *durationSec > 0 {
		duration = time.Duration(*durationSec) * time.Second
	}

	symbol := pos[0]
	orderIDs := []string{pos[1], pos[2]}

	statuses, err := a.watcher.Monitor(ctx, symbol, orderIDs, duration,
		func(tick map[string]order.Status) {
			a.events.RecordTick(ctx, symbol, tick)
		},
	)
	if err != nil {
		a.events.RecordError(ctx, "网格监控失败", err, map[string]interface{}{"symbol": symbol})
		fmt.Fprintf(os.Stderr, "网格监控失败: %v\n", err)
		return exitFailure
	}

	printJSON(statuses)
	return exitOK
}

func (a *App) runSize(ctx context.Context, args []string) int {
	pos, _, err := splitArgs(args, 3)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	riskPercent, err := parseFloatArg("riskPercent", pos[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	entryPrice, err := parseFloatArg("entryPrice", pos[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	stopPrice, err := parseFloatArg("stopPrice", pos[2])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}

	sizing, err := a.sizer.Size(ctx, riskPercent, entryPrice, stopPrice)
	if err != nil {
		a.events.RecordValidationFailure(ctx, "size", err)
		fmt.Fprintf(os.Stderr, "仓位测算失败: %v\n", err)
		return exitFailure
	}

	printJSON(sizing)
	return exitOK
}
