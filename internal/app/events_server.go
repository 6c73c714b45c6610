package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"futures-bot/internal/monitor"
)

func (a *App) runEvents(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "events 需要子命令: list|serve")
		return exitUsage
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		return a.runEventsList(ctx, rest)
	case "serve":
		return a.runEventsServe(ctx, rest)
	default:
		fmt.Fprintf(os.Stderr, "未知 events 子命令: %q\n", sub)
		return exitUsage
	}
}

func (a *App) runEventsList(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("events list", flag.ContinueOnError)
	eventType := fs.String("type", "", "事件类型过滤")
	limit := fs.Int("limit", 100, "最多返回条数")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	events, err := a.events.ListEvents(ctx, monitor.EventType(strings.ToLower(*eventType)), *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "查询事件失败: %v\n", err)
		return exitFailure
	}

	printJSON(events)
	return exitOK
}

// runEventsServe 以只读 HTTP 接口暴露事件流水，阻塞至收到退出信号。
func (a *App) runEventsServe(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("events serve", flag.ContinueOnError)
	port := fs.Int("port", 8780, "监听端口")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if err := serveEvents(ctx, a.events, *port, a.logger); err != nil {
		fmt.Fprintf(os.Stderr, "事件服务异常: %v\n", err)
		return exitFailure
	}
	return exitOK
}

func serveEvents(ctx context.Context, svc *monitor.Service, port int, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit := 200
		if qs := q.Get("limit"); qs != "" {
			if v, err := strconv.Atoi(qs); err == nil && v > 0 {
				if v > 1000 {
					v = 1000
				}
				limit = v
			}
		}

		eventType := monitor.EventType("")
		if typ := strings.TrimSpace(q.Get("type")); typ != "" {
			eventType = monitor.EventType(strings.ToLower(typ))
		}

		events, err := svc.ListEvents(r.Context(), eventType, limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(events); err != nil {
			logger.Warn("写入事件响应失败", zap.Error(err))
		}
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("事件接口已启动", zap.String("addr", addr))

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("关闭事件服务失败", zap.Error(err))
		}
		return nil
	}
}
