package execution

import (
	"context"
	"testing"
	"time"

	"futures-bot/internal/exchange"
	"futures-bot/internal/order"
)

func TestWatchOCO_CancelsSiblingOnFill(t *testing.T) {
	gw := newStubGateway()
	gw.script("tp-1", order.StatusNew, order.StatusFilled)
	gw.script("sl-1", order.StatusNew, order.StatusNew)

	w := NewWatcher(gw, time.Millisecond, nil)

	var ticks int
	outcome, err := w.WatchOCO(context.Background(), "BTCUSDT", "tp-1", "sl-1", time.Second, func(map[string]order.Status) {
		ticks++
	})
	if err != nil {
		t.Fatalf("WatchOCO returned error: %v", err)
	}

	if outcome.FilledOrderID != "tp-1" {
		t.Errorf("filled order: got %q want tp-1", outcome.FilledOrderID)
	}
	if outcome.CanceledOrderID != "sl-1" {
		t.Errorf("canceled order: got %q want sl-1", outcome.CanceledOrderID)
	}
	if outcome.TimedOut {
		t.Errorf("unexpected timeout")
	}
	if outcome.Statuses["sl-1"] != order.StatusCanceled {
		t.Errorf("sibling status: got %s want CANCELED", outcome.Statuses["sl-1"])
	}
	if len(gw.cancels) != 1 || gw.cancels[0] != "sl-1" {
		t.Errorf("cancel calls: got %v want [sl-1]", gw.cancels)
	}
	if ticks < 2 {
		t.Errorf("tick callback fired %d times, want at least 2", ticks)
	}
}

func TestWatchOCO_SiblingAlreadyTerminal(t *testing.T) {
	// 兄弟单已被交易所自行取消时不再发起撤单。
	gw := newStubGateway()
	gw.script("tp-1", order.StatusFilled)
	gw.script("sl-1", order.StatusCanceled)

	w := NewWatcher(gw, time.Millisecond, nil)
	outcome, err := w.WatchOCO(context.Background(), "BTCUSDT", "tp-1", "sl-1", time.Second, nil)
	if err != nil {
		t.Fatalf("WatchOCO returned error: %v", err)
	}

	if outcome.FilledOrderID != "tp-1" {
		t.Errorf("filled order: got %q want tp-1", outcome.FilledOrderID)
	}
	if outcome.CanceledOrderID != "" {
		t.Errorf("unexpected cancel of %q", outcome.CanceledOrderID)
	}
	if len(gw.cancels) != 0 {
		t.Errorf("cancel calls: got %v want none", gw.cancels)
	}
}

func TestWatchOCO_TimeoutKeepsOrdersAlive(t *testing.T) {
	// 超时只是停止观察，绝不代为撤单。
	gw := newStubGateway()
	gw.script("tp-1", order.StatusNew)
	gw.script("sl-1", order.StatusNew)

	w := NewWatcher(gw, time.Millisecond, nil)
	outcome, err := w.WatchOCO(context.Background(), "BTCUSDT", "tp-1", "sl-1", 5*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("WatchOCO returned error: %v", err)
	}

	if !outcome.TimedOut {
		t.Errorf("expected timeout")
	}
	if outcome.FilledOrderID != "" || outcome.CanceledOrderID != "" {
		t.Errorf("unexpected fill/cancel: %+v", outcome)
	}
	if len(gw.cancels) != 0 {
		t.Errorf("timeout must not cancel, got %v", gw.cancels)
	}
	if outcome.Statuses["tp-1"] != order.StatusNew || outcome.Statuses["sl-1"] != order.StatusNew {
		t.Errorf("last known statuses: %+v", outcome.Statuses)
	}
}

func TestMonitor_AllTerminal(t *testing.T) {
	gw := newStubGateway()
	gw.script("a", order.StatusFilled)
	gw.script("b", order.StatusNew, order.StatusNew, order.StatusFilled)

	w := NewWatcher(gw, time.Millisecond, nil)
	statuses, err := w.Monitor(context.Background(), "BTCUSDT", []string{"a", "b"}, time.Second, nil)
	if err != nil {
		t.Fatalf("Monitor returned error: %v", err)
	}

	if statuses["a"] != order.StatusFilled || statuses["b"] != order.StatusFilled {
		t.Errorf("statuses: %+v", statuses)
	}
	if len(gw.cancels) != 0 {
		t.Errorf("monitor must not cancel, got %v", gw.cancels)
	}
}

func TestMonitor_DurationElapsedReturnsLastKnown(t *testing.T) {
	gw := newStubGateway()
	gw.script("a", order.StatusFilled)
	gw.script("b", order.StatusNew)

	w := NewWatcher(gw, time.Millisecond, nil)
	statuses, err := w.Monitor(context.Background(), "BTCUSDT", []string{"a", "b"}, 5*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("Monitor returned error: %v", err)
	}

	if statuses["a"] != order.StatusFilled {
		t.Errorf("status a: got %s want FILLED", statuses["a"])
	}
	if statuses["b"] != order.StatusNew {
		t.Errorf("status b: got %s want NEW", statuses["b"])
	}
	if len(gw.cancels) != 0 {
		t.Errorf("monitor must not cancel, got %v", gw.cancels)
	}
}

func TestCancelAll_ContinuesPastFailures(t *testing.T) {
	gw := newStubGateway()
	gw.cancelErrs["b"] = exchange.ErrRejected

	w := NewWatcher(gw, time.Millisecond, nil)
	canceled, err := w.CancelAll(context.Background(), "BTCUSDT", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("CancelAll returned error: %v", err)
	}

	if len(canceled) != 2 || canceled[0] != "a" || canceled[1] != "c" {
		t.Errorf("canceled: got %v want [a c]", canceled)
	}
}
