package exchange

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	ccxt "github.com/ccxt/ccxt/go/v4"
)

var (
	// ErrNetwork 表示网络层故障（超时、连接失败、交易所不可达）。
	ErrNetwork = errors.New("exchange: network error")
	// ErrAuth 表示鉴权失败。
	ErrAuth = errors.New("exchange: authentication failed")
	// ErrRateLimit 表示触发交易所限频。
	ErrRateLimit = errors.New("exchange: rate limited")
	// ErrRejected 表示交易所拒绝该委托。
	ErrRejected = errors.New("exchange: order rejected")
)

// Classify 将底层错误归入网关错误分类，供执行层逐步记录。
// 上下文取消原样透传，不参与分类。
func Classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var ccxtErr *ccxt.Error
	if errors.As(err, &ccxtErr) {
		message := strings.TrimSpace(ccxtErr.Message)
		switch ccxtErr.Type {
		case ccxt.NetworkErrorErrType,
			ccxt.RequestTimeoutErrType,
			ccxt.ExchangeNotAvailableErrType,
			ccxt.OnMaintenanceErrType,
			ccxt.BadResponseErrType,
			ccxt.NullResponseErrType:
			return fmt.Errorf("%w: %s", ErrNetwork, message)
		case ccxt.AuthenticationErrorErrType:
			return fmt.Errorf("%w: %s", ErrAuth, message)
		case ccxt.RateLimitExceededErrType,
			ccxt.DDoSProtectionErrType:
			return fmt.Errorf("%w: %s", ErrRateLimit, message)
		default:
			return fmt.Errorf("%w: %s", ErrRejected, message)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrNetwork, netErr)
	}

	return fmt.Errorf("%w: %v", ErrRejected, err)
}
