// Package dispatch formats completed reports and hands them to the
// coordination channel.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"AvisoBot/internal/models"
	"AvisoBot/pkg/logger"
	"AvisoBot/pkg/metrics"
	"AvisoBot/pkg/notification"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

var ErrIncompleteDraft = errors.New("draft report is incomplete")

const (
	defaultTimeout = 10 * time.Second
	sentRetention  = 24 * time.Hour
)

type Config struct {
	Destination string
	Timeout     time.Duration
}

// Dispatcher 向固定的协调中心投递报告。已成功投递的报告 ID 会被记住，
// 重试时不会重复发送
type Dispatcher struct {
	notifier    notification.Notifier
	journal     Journal
	metrics     *metrics.Metrics
	destination string
	timeout     time.Duration
	sent        *gocache.Cache
}

type Option func(*Dispatcher)

func WithJournal(j Journal) Option {
	return func(d *Dispatcher) {
		if j != nil {
			d.journal = j
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

func New(n notification.Notifier, cfg Config, opts ...Option) *Dispatcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	d := &Dispatcher{
		notifier:    n,
		journal:     nopJournal{},
		destination: cfg.Destination,
		timeout:     cfg.Timeout,
		sent:        gocache.New(sentRetention, time.Hour),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch 投递一份完整报告，调用受 timeout 约束
func (d *Dispatcher) Dispatch(ctx context.Context, userID models.UserID, draft models.DraftReport) error {
	if !draft.Complete() {
		return ErrIncompleteDraft
	}
	if draft.ID != "" {
		if _, done := d.sent.Get(draft.ID); done {
			logger.Info("aviso already delivered, skipping",
				zap.String("report_id", draft.ID), zap.String("user_id", string(userID)))
			d.record(ctx, userID, draft, models.DispatchStatusDuplicate, nil, 0)
			return nil
		}
	}

	nctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	err := d.notifier.Notify(nctx, d.destination, Format(draft))
	took := time.Since(start)

	if err != nil {
		d.record(ctx, userID, draft, models.DispatchStatusFailed, err, took)
		logger.Warn("aviso dispatch failed",
			zap.String("report_id", draft.ID),
			zap.String("user_id", string(userID)),
			zap.Duration("took", took),
			zap.Error(err),
		)
		return fmt.Errorf("notify coordination: %w", err)
	}

	if draft.ID != "" {
		d.sent.Set(draft.ID, struct{}{}, gocache.DefaultExpiration)
	}
	d.record(ctx, userID, draft, models.DispatchStatusSent, nil, took)
	logger.Info("aviso dispatched",
		zap.String("report_id", draft.ID),
		zap.String("user_id", string(userID)),
		zap.String("unit", draft.Unit),
		zap.Duration("took", took),
	)
	return nil
}

func (d *Dispatcher) record(ctx context.Context, userID models.UserID, draft models.DraftReport, status string, cause error, took time.Duration) {
	d.metrics.RecordDispatch(status, took)

	entry := &models.DispatchLog{
		ReportID:    draft.ID,
		UserID:      string(userID),
		Unit:        draft.Unit,
		Destination: d.destination,
		Status:      status,
		DurationMs:  took.Milliseconds(),
	}
	if cause != nil {
		entry.Error = truncate(cause.Error(), 512)
	}
	// 审计失败不影响派发结果
	if err := d.journal.Record(context.WithoutCancel(ctx), entry); err != nil {
		logger.Warn("record dispatch journal failed", zap.String("report_id", draft.ID), zap.Error(err))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
