package scheduler

import (
	"context"
	"time"

	"AvisoBot/pkg/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job 定时任务，ctx 在 Cron 停止时取消
type Job interface{ Run(ctx context.Context) }

type FuncJob func(ctx context.Context)

func (f FuncJob) Run(ctx context.Context) { f(ctx) }

// Cron robfig/cron 的薄封装，任务 panic 会被恢复
type Cron struct {
	c      *cron.Cron
	loc    *time.Location
	ctx    context.Context
	cancel context.CancelFunc
}

func NewCron(loc *time.Location) *Cron {
	if loc == nil {
		loc = time.Local
	}
	c := cron.New(cron.WithLocation(loc), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	ctx, cancel := context.WithCancel(context.Background())
	return &Cron{c: c, loc: loc, ctx: ctx, cancel: cancel}
}

func (cr *Cron) Start() { cr.c.Start() }

// Stop 取消运行中任务的 ctx 并等待其结束
func (cr *Cron) Stop() {
	cr.cancel()
	<-cr.c.Stop().Done()
}

// Add 注册任务，expr 支持标准五段式与 "@every 15m" 写法
func (cr *Cron) Add(name, expr string, job Job) (cron.EntryID, error) {
	id, err := cr.c.AddFunc(expr, func() {
		start := time.Now()
		job.Run(cr.ctx)
		logger.Debug("cron job finished", zap.String("job", name), zap.Duration("took", time.Since(start)))
	})
	if err != nil {
		return 0, err
	}
	logger.Info("cron job registered", zap.String("job", name), zap.String("schedule", expr))
	return id, nil
}

func (cr *Cron) Entries() []cron.Entry { return cr.c.Entries() }
