package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"futures-bot/internal/config"
	"futures-bot/internal/exchange"
	"futures-bot/internal/execution"
	"futures-bot/internal/monitor"
	"futures-bot/internal/position"
	"futures-bot/internal/store"
)

// 进程退出码：部分失败同样以非零退出提醒调用方检查。
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// App 聚合核心依赖并分发 CLI 子命令。
type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	gateway  exchange.Gateway
	executor *execution.Executor
	watcher  *execution.Watcher
	sizer    *position.Sizer
	events   *monitor.Service
}

// New 创建 App 实例。网关在启动时一次性选定（真实或模拟），
// 业务逻辑内部不再出现模式分支。
func New(cfg *config.Config, logger *zap.Logger, store *store.Store) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var gateway exchange.Gateway
	if cfg.Exchange.UseMock {
		logger.Info("使用模拟网关")
		gateway = exchange.NewMock(logger)
	} else {
		client, err := exchange.NewClient(cfg.Exchange, logger)
		if err != nil {
			return nil, fmt.Errorf("初始化交易所客户端失败: %w", err)
		}
		gateway = client
	}

	events, err := monitor.NewService(store, logger)
	if err != nil {
		return nil, fmt.Errorf("初始化事件流水失败: %w", err)
	}

	return &App{
		cfg:      cfg,
		logger:   logger,
		gateway:  gateway,
		executor: execution.NewExecutor(gateway, logger),
		watcher:  execution.NewWatcher(gateway, cfg.Execution.PollInterval, logger),
		sizer:    position.NewSizer(gateway, logger),
		events:   events,
	}, nil
}

// Run 分发子命令并返回进程退出码。
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		a.usage()
		return exitUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "market":
		return a.runMarket(ctx, rest)
	case "limit":
		return a.runLimit(ctx, rest)
	case "stop-limit":
		return a.runStopLimit(ctx, rest)
	case "stop-market":
		return a.runStopMarket(ctx, rest)
	case "oco":
		return a.runOCO(ctx, rest)
	case "twap":
		return a.runTwap(ctx, rest)
	case "grid":
		return a.runGrid(ctx, rest)
	case "size":
		return a.runSize(ctx, rest)
	case "events":
		return a.runEvents(ctx, rest)
	default:
		fmt.Fprintf(os.Stderr, "未知命令: %q\n\n", cmd)
		a.usage()
		return exitUsage
	}
}

func (a *App) usage() {
	fmt.Fprint(os.Stderr, `用法: bot [-config 路径] <命令> [参数...]

命令:
  market <symbol> <BUY|SELL> <quantity>
  limit place <symbol> <BUY|SELL> <quantity> <price> [--time-in-force GTC|IOC|FOK]
  limit list [symbol]
  limit cancel <symbol> <orderId>
  stop-limit <symbol> <BUY|SELL> <quantity> <stopPrice> <limitPrice>
  stop-market <symbol> <BUY|SELL> <quantity> <stopPrice>
  oco place <symbol> <BUY|SELL> <quantity> <takeProfitPrice> <stopPrice> <stopLimitPrice>
  oco status <symbol> <orderId1> <orderId2>
  oco cancel <symbol> <orderId1> <orderId2>
  twap <symbol> <BUY|SELL> <quantity> <durationMinutes> <chunks> [--price-limit PRICE]
  grid place <symbol> <BUY|SELL> <quantity> <upperPrice> <lowerPrice> <levels>
  grid monitor <symbol> <orderId1> <orderId2> [--duration SECONDS]
  grid cancel <symbol> <orderId1> <orderId2>
  size <riskPercent> <entryPrice> <stopPrice>
  events list [--type TYPE] [--limit N]
  events serve [--port PORT]
`)
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "序列化输出失败: %v\n", err)
		return
	}
	fmt.Println(string(data))
}
