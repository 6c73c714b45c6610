package execution

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"futures-bot/internal/exchange"
	"futures-bot/internal/strategy"
)

// Executor 按计划顺序逐笔提交委托。单步失败不会中断整个计划，
// 部分成功属于预期结果，由汇总计数与退出码向调用方反映。
type Executor struct {
	gateway exchange.Gateway
	logger  *zap.Logger
}

// NewExecutor 创建执行器。
func NewExecutor(gateway exchange.Gateway, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		gateway: gateway,
		logger:  logger,
	}
}

// Execute 顺序执行计划。仅在计划为空或上下文被取消时返回错误；
// 网关失败记入对应步骤后继续执行下一步。
func (e *Executor) Execute(ctx context.Context, plan strategy.Plan, pacing Pacing) (Result, error) {
	if len(plan.Steps) == 0 {
		return Result{}, strategy.ErrEmptyPlan
	}

	result := Result{
		RunID:     uuid.NewString(),
		Symbol:    plan.Symbol,
		Kind:      plan.Kind,
		PlanSize:  len(plan.Steps),
		Steps:     make([]Step, 0, len(plan.Steps)),
		StartedAt: time.Now().UTC(),
	}

	e.logger.Info("开始执行计划",
		zap.String("run_id", result.RunID),
		zap.String("symbol", plan.Symbol),
		zap.String("kind", string(plan.Kind)),
		zap.Int("steps", len(plan.Steps)),
	)

	for i, planned := range plan.Steps {
		wait := planned.Delay
		if wait == 0 && i > 0 {
			wait = pacing.InterStep
		}
		if wait > 0 {
			if err := sleepCtx(ctx, wait); err != nil {
				result.FinishedAt = time.Now().UTC()
				return result, err
			}
		}

		step := Step{Request: planned.Request, Outcome: OutcomePending}

		ack, err := e.gateway.PlaceOrder(ctx, planned.Request)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				result.FinishedAt = time.Now().UTC()
				return result, ctxErr
			}

			step.Outcome = OutcomeFailed
			step.Error = err.Error()
			result.Failed++
			result.Steps = append(result.Steps, step)

			e.logger.Error("委托提交失败",
				zap.String("run_id", result.RunID),
				zap.Int("step", i+1),
				zap.Int("total", len(plan.Steps)),
				zap.Float64("quantity", planned.Request.Quantity),
				zap.Float64("price", planned.Request.Price),
				zap.Error(err),
			)
			continue
		}

		step.Outcome = OutcomePlaced
		step.OrderID = ack.OrderID
		result.Placed++
		result.Steps = append(result.Steps, step)

		e.logger.Info("委托提交成功",
			zap.String("run_id", result.RunID),
			zap.Int("step", i+1),
			zap.Int("total", len(plan.Steps)),
			zap.String("order_id", ack.OrderID),
			zap.Float64("quantity", planned.Request.Quantity),
			zap.Float64("price", planned.Request.Price),
		)
	}

	result.FinishedAt = time.Now().UTC()

	e.logger.Info("计划执行完成",
		zap.String("run_id", result.RunID),
		zap.Int("placed", result.Placed),
		zap.Int("failed", result.Failed),
	)

	return result, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
