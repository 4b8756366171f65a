package session

import (
	"context"
	"time"

	"AvisoBot/pkg/logger"
	"AvisoBot/pkg/metrics"
	"AvisoBot/pkg/scheduler"

	"go.uber.org/zap"
)

// SweepJob 清理空闲超过 maxIdle 的会话
func SweepJob(s Sweeper, maxIdle time.Duration, now func() time.Time) scheduler.Job {
	if now == nil {
		now = time.Now
	}
	return scheduler.FuncJob(func(ctx context.Context) {
		n, err := s.Sweep(ctx, now().Add(-maxIdle))
		if err != nil {
			logger.Warn("sweep idle sessions failed", zap.Error(err))
			return
		}
		metrics.Global().RecordSweep(n)
		if n > 0 {
			logger.Info("idle sessions swept", zap.Int("removed", n), zap.Duration("max_idle", maxIdle))
		}
	})
}
