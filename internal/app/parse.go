package app

import (
	"fmt"
	"strconv"
	"strings"

	"futures-bot/internal/order"
	"futures-bot/internal/validate"
)

// splitArgs 取前 n 个位置参数，余下的交给各命令的 flag 集合解析，
// 以支持位置参数之后的可选开关。
func splitArgs(args []string, n int) (positional, flags []string, err error) {
	if len(args) < n {
		return nil, nil, fmt.Errorf("app: 参数不足，需要 %d 个位置参数，实际 %d 个", n, len(args))
	}
	return args[:n], args[n:], nil
}

func parseSide(raw string) (order.Side, error) {
	side := order.Side(strings.ToUpper(strings.TrimSpace(raw)))
	if err := validate.Side(side); err != nil {
		return "", err
	}
	return side, nil
}

func parseFloatArg(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("app: 参数 %s 无法解析为数字: %q", name, raw)
	}
	return v, nil
}

func parseIntArg(name, raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("app: 参数 %s 无法解析为整数: %q", name, raw)
	}
	return v, nil
}
