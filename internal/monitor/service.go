package monitor

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"futures-bot/internal/execution"
	"futures-bot/internal/order"
	"futures-bot/internal/store"
	"futures-bot/internal/strategy"
)

// Service 负责持久化事件流水。记录失败只降级为日志告警，
// 不会反过来中断交易流程。
type Service struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewService 初始化流水服务，创建所需表结构。
func NewService(store *store.Store, logger *zap.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("monitor: store 不能为空")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		db:     store.DB(),
		logger: logger,
	}

	if err := s.initSchema(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Service) initSchema() error {
	stmt := `
CREATE TABLE IF NOT EXISTS bot_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	event_type TEXT NOT NULL,
	payload TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bot_events_type ON bot_events(event_type);
`
	if _, err := s.db.Exec(stmt); err != nil {
		return fmt.Errorf("monitor: 初始化表失败: %w", err)
	}
	return nil
}

// Record 写入单个事件。
func (s *Service) Record(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("monitor: 序列化事件失败: %w", err)
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO bot_events (event_type, payload, created_at) VALUES (?, ?, ?)`,
		string(event.Type), string(payload), event.Timestamp.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("monitor: 写入事件失败: %w", err)
	}

	return nil
}

// RecordValidationFailure 记录被校验拒绝的命令。
func (s *Service) RecordValidationFailure(ctx context.Context, command string, reason error) {
	if err := s.Record(ctx, Event{
		Type:      EventValidationFailure,
		Timestamp: time.Now().UTC(),
		Payload:   ValidationFailurePayload{Command: command, Reason: reason.Error()},
	}); err != nil {
		s.logger.Warn("记录校验失败事件失败", zap.Error(err))
	}
}

// RecordPlan 记录策略生成的计划。
func (s *Service) RecordPlan(ctx context.Context, plan strategy.Plan) {
	if err := s.Record(ctx, Event{
		Type:      EventPlanGenerated,
		Timestamp: time.Now().UTC(),
		Payload:   PlanGeneratedPayload{Plan: plan},
	}); err != nil {
		s.logger.Warn("记录计划事件失败", zap.Error(err))
	}
}

// RecordExecution 记录计划执行结果。
func (s *Service) RecordExecution(ctx context.Context, result execution.Result) {
	if err := s.Record(ctx, Event{
		Type:      EventExecution,
		Timestamp: time.Now().UTC(),
		Payload:   ExecutionPayload{Result: result},
	}); err != nil {
		s.logger.Warn("记录执行事件失败", zap.Error(err))
	}
}

// RecordTick 记录一轮轮询后的订单状态。
func (s *Service) RecordTick(ctx context.Context, symbol string, statuses map[string]order.Status) {
	if err := s.Record(ctx, Event{
		Type:      EventMonitorTick,
		Timestamp: time.Now().UTC(),
		Payload:   MonitorTickPayload{Symbol: symbol, Statuses: statuses},
	}); err != nil {
		s.logger.Warn("记录轮询事件失败", zap.Error(err))
	}
}

// RecordCancellation 记录撤单结果。
func (s *Service) RecordCancellation(ctx context.Context, symbol string, requested, canceled []string) {
	if err := s.Record(ctx, Event{
		Type:      EventCancellation,
		Timestamp: time.Now().UTC(),
		Payload:   CancellationPayload{Symbol: symbol, Requested: requested, Canceled: canceled},
	}); err != nil {
		s.logger.Warn("记录撤单事件失败", zap.Error(err))
	}
}

// RecordError 记录异常。
func (s *Service) RecordError(ctx context.Context, msg string, err error, ctxMap map[string]interface{}) {
	payload := ErrorPayload{
		Message: msg,
		Error:   err.Error(),
		Context: ctxMap,
	}
	if recErr := s.Record(ctx, Event{
		Type:      EventError,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}); recErr != nil {
		s.logger.Warn("记录异常事件失败", zap.Error(recErr))
	}
}

// ListEvents 按类型检索最近事件。
func (s *Service) ListEvents(ctx context.Context, eventType EventType, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT event_type, payload, created_at FROM bot_events`
	args := make([]interface{}, 0, 2)
	if eventType != "" {
		query += ` WHERE event_type = ?`
		args = append(args, string(eventType))
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("monitor: 查询事件失败: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0, limit)
	for rows.Next() {
		var (
			typ     string
			payload string
			created string
		)
		if scanErr := rows.Scan(&typ, &payload, &created); scanErr != nil {
			return nil, fmt.Errorf("monitor: 解析事件失败: %w", scanErr)
		}

		ts, parseErr := time.Parse(time.RFC3339, created)
		if parseErr != nil {
			ts = time.Now().UTC()
		}

		events = append(events, Event{
			Type:      EventType(typ),
			Timestamp: ts,
			Payload:   json.RawMessage(payload),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("monitor: 读取事件失败: %w", err)
	}

	return events, nil
}
