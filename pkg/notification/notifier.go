package notification

import (
	"context"
	"fmt"
	"strings"

	"AvisoBot/pkg/logger"

	"go.uber.org/zap"
)

// Notifier 把已格式化的报告投递到协调中心
type Notifier interface {
	Notify(ctx context.Context, destination, text string) error
}

// NotifierFunc 便于测试注入
type NotifierFunc func(ctx context.Context, destination, text string) error

func (f NotifierFunc) Notify(ctx context.Context, destination, text string) error {
	return f(ctx, destination, text)
}

// LogNotifier 开发环境使用，只写日志
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, destination, text string) error {
	if strings.TrimSpace(destination) == "" {
		return fmt.Errorf("empty destination")
	}
	logger.Info("aviso delivered to log",
		zap.String("destination", destination),
		zap.String("text", text),
	)
	return nil
}
