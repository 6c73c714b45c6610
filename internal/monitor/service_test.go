package monitor

import (
	"context"
	"errors"
	"testing"

	"futures-bot/internal/config"
	"futures-bot/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	st, err := store.NewSQLite(config.DatabaseConfig{
		InMemory:     true,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	svc, err := NewService(st, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestRecordAndListEvents(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	svc.RecordValidationFailure(ctx, "grid", errors.New("price range inverted"))
	svc.RecordError(ctx, "cancel failed", errors.New("boom"), map[string]interface{}{"order_id": "42"})

	events, err := svc.ListEvents(ctx, "", 10)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events: got %d want 2", len(events))
	}

	// 最新事件在前。
	if events[0].Type != EventError || events[1].Type != EventValidationFailure {
		t.Errorf("event order: got %s, %s", events[0].Type, events[1].Type)
	}

	filtered, err := svc.ListEvents(ctx, EventValidationFailure, 10)
	if err != nil {
		t.Fatalf("ListEvents filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Type != EventValidationFailure {
		t.Errorf("filtered events: %+v", filtered)
	}
}
