// Package conversation drives the per-user report collection dialogue.
package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"AvisoBot/internal/models"
	"AvisoBot/internal/session"
	"AvisoBot/pkg/errors"
	"AvisoBot/pkg/logger"
	"AvisoBot/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dispatcher 投递已完成的报告
type Dispatcher interface {
	Dispatch(ctx context.Context, userID models.UserID, draft models.DraftReport) error
}

// Machine 会话状态机。同一用户的事件串行处理，返回的错误携带错误码，
// 均不致命：调用方据此记录或忽略
type Machine struct {
	store      session.Store
	dispatcher Dispatcher
	metrics    *metrics.Metrics
	now        func() time.Time
	newID      func() string
	locks      userLocks
}

type Option func(*Machine)

// WithClock 注入时钟，月份步骤据此记录年份
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Machine) { m.metrics = mt }
}

func WithIDGenerator(gen func() string) Option {
	return func(m *Machine) { m.newID = gen }
}

func NewMachine(store session.Store, dispatcher Dispatcher, opts ...Option) *Machine {
	m := &Machine{
		store:      store,
		dispatcher: dispatcher,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handle 处理一个入站事件，输出经 out 渲染
func (m *Machine) Handle(ctx context.Context, ev models.Event, out Presenter) error {
	if ev.UserID == "" {
		return errors.WithCode(CodeInvalidSelection, "event without user id")
	}
	unlock := m.locks.lock(ev.UserID)
	defer unlock()

	var err error
	switch ev.Kind {
	case models.EventStart:
		m.show(ev.UserID, func() error {
			return out.ShowConfirmation(ctx, ev.UserID, welcomeText, actionBegin)
		})
	case models.EventBegin:
		err = m.begin(ctx, ev.UserID, out)
	case models.EventCancel:
		err = m.cancel(ctx, ev.UserID, out)
	case models.EventSelection, models.EventText, models.EventRetry:
		err = m.continueSession(ctx, ev, out)
	default:
		err = errors.WithCodef(CodeInvalidSelection, "unsupported event kind %d", ev.Kind)
	}

	m.metrics.RecordEvent(ev.Kind.String(), outcome(err))
	if err != nil {
		logger.Debug("event not accepted",
			zap.String("user_id", string(ev.UserID)),
			zap.String("kind", ev.Kind.String()),
			zap.Int("code", errors.GetCode(err)),
			zap.Error(err),
		)
	}
	return err
}

func (m *Machine) begin(ctx context.Context, userID models.UserID, out Presenter) error {
	now := m.now()
	sess := &models.Session{
		UserID:    userID,
		Step:      models.StepAwaitUnit,
		Draft:     models.DraftReport{ID: m.newID()},
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.Put(ctx, sess); err != nil {
		return m.storeFailure(ctx, userID, out, err)
	}
	m.present(ctx, sess, out)
	return nil
}

func (m *Machine) cancel(ctx context.Context, userID models.UserID, out Presenter) error {
	if err := m.store.Remove(ctx, userID); err != nil {
		return m.storeFailure(ctx, userID, out, err)
	}
	m.show(userID, func() error {
		return out.ShowConfirmation(ctx, userID, cancelledText, actionBeginNew)
	})
	return nil
}

func (m *Machine) continueSession(ctx context.Context, ev models.Event, out Presenter) error {
	sess, found, err := m.store.Get(ctx, ev.UserID)
	if err != nil {
		return m.storeFailure(ctx, ev.UserID, out, err)
	}
	if !found {
		m.show(ev.UserID, func() error {
			return out.ShowConfirmation(ctx, ev.UserID, noSessionText, actionBegin)
		})
		return ErrNoActiveSession
	}

	switch ev.Kind {
	case models.EventSelection:
		return m.selection(ctx, sess, ev.Selection, out)
	case models.EventText:
		return m.text(ctx, sess, ev.Text, out)
	default:
		return m.retry(ctx, sess, out)
	}
}

// selection 不匹配当前步骤的选择被静默忽略
func (m *Machine) selection(ctx context.Context, sess *models.Session, sel models.Selection, out Presenter) error {
	step, ok := selectSteps[sess.Step]
	if !ok || sel.Category != step.category {
		return errors.WithCodef(CodeInvalidSelection, "%s selection at %s", sel.Category, sess.Step)
	}
	choice, ok := step.options(&sess.Draft).Lookup(sel.Value)
	if !ok {
		return errors.WithCodef(CodeInvalidSelection, "%s %d not offered at %s", sel.Category, sel.Value, sess.Step)
	}

	now := m.now()
	step.apply(&sess.Draft, choice, now)
	return m.advance(ctx, sess, now, out)
}

func (m *Machine) text(ctx context.Context, sess *models.Session, raw string, out Presenter) error {
	step, ok := textSteps[sess.Step]
	if !ok {
		// 菜单步骤收到文本：重新展示当前菜单
		m.present(ctx, sess, out)
		return errors.WithCodef(CodeInvalidSelection, "text at %s", sess.Step)
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		prompt := emptyInputPrefix + "\n\n" + step.prompt(&sess.Draft)
		m.show(sess.UserID, func() error { return out.ShowPrompt(ctx, sess.UserID, prompt) })
		return ErrEmptyInput
	}

	step.apply(&sess.Draft, value)
	if sess.Step == models.StepAwaitDestination {
		return m.submit(ctx, sess, out)
	}
	return m.advance(ctx, sess, m.now(), out)
}

func (m *Machine) retry(ctx context.Context, sess *models.Session, out Presenter) error {
	if sess.Step != models.StepAwaitDestination || !sess.Draft.Complete() {
		m.present(ctx, sess, out)
		return errors.WithCodef(CodeInvalidSelection, "nothing to retry at %s", sess.Step)
	}
	return m.dispatch(ctx, sess, out)
}

func (m *Machine) advance(ctx context.Context, sess *models.Session, now time.Time, out Presenter) error {
	sess.Step = sess.Step.Next()
	sess.UpdatedAt = now
	if err := m.store.Put(ctx, sess); err != nil {
		return m.storeFailure(ctx, sess.UserID, out, err)
	}
	m.present(ctx, sess, out)
	return nil
}

// submit 先持久化完整草稿再派发，派发失败时会话保留在 AwaitDestination
func (m *Machine) submit(ctx context.Context, sess *models.Session, out Presenter) error {
	sess.UpdatedAt = m.now()
	if err := m.store.Put(ctx, sess); err != nil {
		return m.storeFailure(ctx, sess.UserID, out, err)
	}
	return m.dispatch(ctx, sess, out)
}

func (m *Machine) dispatch(ctx context.Context, sess *models.Session, out Presenter) error {
	if err := m.dispatcher.Dispatch(ctx, sess.UserID, sess.Draft); err != nil {
		// 只把根因展示给用户，目标会话等细节留在日志与派发记录里
		text := fmt.Sprintf(dispatchFailedFmt, errors.Cause(err))
		m.show(sess.UserID, func() error {
			return out.ShowConfirmation(ctx, sess.UserID, text, actionRetry, actionCancel)
		})
		return errors.WrapCode(err, CodeDispatchFailure, "dispatch aviso").
			WithContext("report_id", sess.Draft.ID)
	}

	if err := m.store.Remove(ctx, sess.UserID); err != nil {
		// 已送达，残留会话由 TTL 或清理任务回收
		logger.Warn("remove delivered session failed",
			zap.String("user_id", string(sess.UserID)),
			zap.String("report_id", sess.Draft.ID),
			zap.Error(err),
		)
	}
	m.show(sess.UserID, func() error {
		return out.ShowConfirmation(ctx, sess.UserID, sentText, actionBeginNew)
	})
	return nil
}

// present 展示会话当前步骤的菜单或提示
func (m *Machine) present(ctx context.Context, sess *models.Session, out Presenter) {
	if step, ok := selectSteps[sess.Step]; ok {
		prompt := step.prompt(&sess.Draft, m.now())
		opts := step.options(&sess.Draft)
		m.show(sess.UserID, func() error { return out.ShowMenu(ctx, sess.UserID, prompt, opts) })
		return
	}
	if step, ok := textSteps[sess.Step]; ok {
		prompt := step.prompt(&sess.Draft)
		m.show(sess.UserID, func() error { return out.ShowPrompt(ctx, sess.UserID, prompt) })
	}
}

func (m *Machine) storeFailure(ctx context.Context, userID models.UserID, out Presenter, cause error) error {
	logger.Error("session store failure", zap.String("user_id", string(userID)), zap.Error(cause))
	m.show(userID, func() error { return out.ShowConfirmation(ctx, userID, storeFailureText) })
	return errors.WrapCode(cause, CodeStoreFailure, "session store")
}

// show 渲染失败只记录日志，不改变事件结果
func (m *Machine) show(userID models.UserID, render func() error) {
	if err := render(); err != nil {
		logger.Warn("present to user failed", zap.String("user_id", string(userID)), zap.Error(err))
	}
}
