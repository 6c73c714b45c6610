package execution

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"futures-bot/internal/exchange"
	"futures-bot/internal/order"
)

// TickFunc 在每轮轮询后回调最新已知状态，供上层记录流水。
type TickFunc func(statuses map[string]order.Status)

// Watcher 对已提交订单做轮询监控。超时意味着"停止观察"，
// 不会代为撤单；撤单始终是独立的显式调用。
type Watcher struct {
	gateway      exchange.Gateway
	logger       *zap.Logger
	pollInterval time.Duration
}

// NewWatcher 创建监控器。
func NewWatcher(gateway exchange.Gateway, pollInterval time.Duration, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	return &Watcher{
		gateway:      gateway,
		logger:       logger,
		pollInterval: pollInterval,
	}
}

// OCOOutcome 为一次OCO监控的结论。
type OCOOutcome struct {
	FilledOrderID   string                  `json:"filled_order_id,omitempty"`
	CanceledOrderID string                  `json:"canceled_order_id,omitempty"`
	Statuses        map[string]order.Status `json:"statuses"`
	TimedOut        bool                    `json:"timed_out"`
}

// WatchOCO 轮询一对兄弟单：任一侧率先成交即撤销另一侧，
// 两侧均到终态或超时后返回。两侧都可能在撤单完成前成交，
// 这一轮询式近似是该策略的固有属性。
func (w *Watcher) WatchOCO(ctx context.Context, symbol, firstID, secondID string, timeout time.Duration, onTick TickFunc) (OCOOutcome, error) {
	outcome := OCOOutcome{
		Statuses: map[string]order.Status{
			firstID:  order.StatusUnknown,
			secondID: order.StatusUnknown,
		},
	}

	deadline := time.Now().Add(timeout)

	for {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}

		var firstState, secondState exchange.OrderState
		group, groupCtx := errgroup.WithContext(ctx)
		group.Go(func() error {
			state, err := w.gateway.GetOrderStatus(groupCtx, symbol, firstID)
			if err != nil {
				return err
			}
			firstState = state
			return nil
		})
		group.Go(func() error {
			state, err := w.gateway.GetOrderStatus(groupCtx, symbol, secondID)
			if err != nil {
				return err
			}
			secondState = state
			return nil
		})

		if err := group.Wait(); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return outcome, ctxErr
			}
			w.logger.Warn("OCO状态查询失败，保留上一轮状态", zap.Error(err))
		} else {
			outcome.Statuses[firstID] = firstState.Status
			outcome.Statuses[secondID] = secondState.Status
		}

		if onTick != nil {
			onTick(copyStatuses(outcome.Statuses))
		}

		if filled, sibling := pickFilledSibling(firstID, secondID, outcome.Statuses); filled != "" {
			outcome.FilledOrderID = filled
			if !outcome.Statuses[sibling].IsTerminal() {
				if err := w.gateway.CancelOrder(ctx, symbol, sibling); err != nil {
					w.logger.Error("撤销OCO兄弟单失败",
						zap.String("order_id", sibling),
						zap.Error(err),
					)
					return outcome, err
				}
				outcome.Statuses[sibling] = order.StatusCanceled
				outcome.CanceledOrderID = sibling
				w.logger.Info("已撤销OCO兄弟单",
					zap.String("filled", filled),
					zap.String("canceled", sibling),
				)
			}
		}

		if outcome.Statuses[firstID].IsTerminal() && outcome.Statuses[secondID].IsTerminal() {
			return outcome, nil
		}

		if time.Now().After(deadline) {
			outcome.TimedOut = true
			w.logger.Info("OCO监控超时，停止观察",
				zap.String("first", string(outcome.Statuses[firstID])),
				zap.String("second", string(outcome.Statuses[secondID])),
			)
			return outcome, nil
		}

		if err := sleepCtx(ctx, w.pollInterval); err != nil {
			return outcome, err
		}
	}
}

// Monitor 轮询一组订单直至全部到达终态或时长耗尽，
// 返回每单最后已知状态，绝不修改任何订单。
func (w *Watcher) Monitor(ctx context.Context, symbol string, orderIDs []string, duration time.Duration, onTick TickFunc) (map[string]order.Status, error) {
	statuses := make(map[string]order.Status, len(orderIDs))
	for _, id := range orderIDs {
		statuses[id] = order.StatusUnknown
	}

	deadline := time.Now().Add(duration)

	for {
		if err := ctx.Err(); err != nil {
			return statuses, err
		}

		allTerminal := true
		for _, id := range orderIDs {
			if statuses[id].IsTerminal() {
				continue
			}

			state, err := w.gateway.GetOrderStatus(ctx, symbol, id)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return statuses, ctxErr
				}
				w.logger.Warn("订单状态查询失败",
					zap.String("order_id", id),
					zap.Error(err),
				)
				allTerminal = false
				continue
			}

			statuses[id] = state.Status
			if !state.Status.IsTerminal() {
				allTerminal = false
			}
		}

		if onTick != nil {
			onTick(copyStatuses(statuses))
		}

		if allTerminal {
			return statuses, nil
		}

		if time.Now().After(deadline) {
			w.logger.Info("订单监控时长耗尽，返回最后已知状态",
				zap.Int("orders", len(orderIDs)),
			)
			return statuses, nil
		}

		if err := sleepCtx(ctx, w.pollInterval); err != nil {
			return statuses, err
		}
	}
}

// CancelAll 逐笔撤单，返回成功撤销的订单号。
func (w *Watcher) CancelAll(ctx context.Context, symbol string, orderIDs []string) ([]string, error) {
	canceled := make([]string, 0, len(orderIDs))
	for _, id := range orderIDs {
		if err := w.gateway.CancelOrder(ctx, symbol, id); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return canceled, ctxErr
			}
			w.logger.Error("撤单失败",
				zap.String("order_id", id),
				zap.Error(err),
			)
			continue
		}
		canceled = append(canceled, id)
		w.logger.Info("撤单成功", zap.String("order_id", id))
	}
	return canceled, nil
}

func pickFilledSibling(firstID, secondID string, statuses map[string]order.Status) (filled, sibling string) {
	if statuses[firstID] == order.StatusFilled {
		return firstID, secondID
	}
	if statuses[secondID] == order.StatusFilled {
		return secondID, firstID
	}
	return "", ""
}

func copyStatuses(src map[string]order.Status) map[string]order.Status {
	dst := make(map[string]order.Status, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
