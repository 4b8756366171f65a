package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"AvisoBot/internal/conversation"
	"AvisoBot/internal/dispatch"
	handlers "AvisoBot/internal/handler"
	"AvisoBot/internal/session"
	"AvisoBot/pkg/config"
	"AvisoBot/pkg/logger"
	"AvisoBot/pkg/metrics"
	"AvisoBot/pkg/middleware"
	"AvisoBot/pkg/notification"
	"AvisoBot/pkg/scheduler"
	"AvisoBot/pkg/sse"
	"AvisoBot/pkg/util"
	"AvisoBot/pkg/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg := config.GlobalConfig

	if err := logger.Init(cfg.Log, cfg.Mode); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("avisobot exited", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	mt := metrics.NewMetrics()
	metrics.SetGlobal(mt)

	// Storage: memory or cache-backed sessions
	store, err := session.NewStore(session.Backend(cfg.SessionBackend), cfg.Cache, cfg.SessionTTL)
	if err != nil {
		return err
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}
	logger.Info("session store ready", zap.String("backend", cfg.SessionBackend))

	db, err := util.InitDatabase(cfg.DBDriver, cfg.DSN)
	if err != nil {
		return err
	}
	journal, err := dispatch.NewGormJournal(db)
	if err != nil {
		return err
	}

	hub := websocket.NewHub(websocket.LoadConfigFromEnv(), websocket.WithMetrics(mt))
	defer hub.Close()
	stream := sse.NewHub(sse.Config{})

	var notifier notification.Notifier
	switch cfg.Notifier {
	case "telegram":
		notifier = notification.NewTelegram(notification.TelegramConfig{
			Token:   cfg.BotToken,
			BaseURL: cfg.TelegramAPI,
		}, &http.Client{Timeout: cfg.NotifyTimeout})
	case "hub":
		notifier = hub
	case "sse":
		notifier = stream
	default:
		notifier = notification.LogNotifier{}
	}
	logger.Info("coordination notifier ready", zap.String("notifier", cfg.Notifier))

	dispatcher := dispatch.New(notifier,
		dispatch.Config{Destination: cfg.CoordChatID, Timeout: cfg.NotifyTimeout},
		dispatch.WithJournal(journal),
		dispatch.WithMetrics(mt),
	)
	machine := conversation.NewMachine(store, dispatcher, conversation.WithMetrics(mt))

	// 内存会话不会自动过期，按计划清理空闲会话
	if sweeper, ok := store.(session.Sweeper); ok {
		cr := scheduler.NewCron(time.Local)
		job := session.SweepJob(sweeper, cfg.SessionMaxIdle, nil)
		id, err := cr.Add("session-sweep", cfg.SessionSweepSchedule, job)
		if err != nil {
			return err
		}
		cr.Start()
		defer cr.Stop()
		for _, e := range cr.Entries() {
			if e.ID == id {
				logger.Info("session sweep scheduled", zap.Time("next", e.Next))
			}
		}
	}

	gin.SetMode(cfg.Mode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	h := handlers.NewHandlers(handlers.Options{
		DB:          db,
		Machine:     machine,
		Hub:         hub,
		Stream:      stream,
		Limiter:     middleware.NewRateLimiter(middleware.RateLimiterConfig{Rate: cfg.EventRateLimit}, nil),
		Journal:     journal,
		Metrics:     mt,
		Idempotency: middleware.IdempotencyConfig{TTL: cfg.IdempotencyTTL},
	})
	h.Register(engine)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("avisobot listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
