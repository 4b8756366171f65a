package config

import (
	"AvisoBot/pkg/cache"
	"AvisoBot/pkg/logger"
	"AvisoBot/pkg/util"
	"fmt"
	"log"
	"os"
	"time"
)

// config/config.go
type Config struct {
	Addr          string `env:"ADDR"`
	Mode          string `env:"MODE"`
	APIPrefix     string `env:"API_PREFIX"`
	MonitorPrefix string `env:"MONITOR_PREFIX"`
	Log           logger.LogConfig

	// 协调中心
	Notifier      string        `env:"NOTIFIER"` // telegram | hub | sse | log
	BotToken      string        `env:"BOT_TOKEN"`
	TelegramAPI   string        `env:"TELEGRAM_API_URL"`
	CoordChatID   string        `env:"COORD_CHAT_ID"`
	NotifyTimeout time.Duration `env:"NOTIFY_TIMEOUT"`

	// 会话存储
	SessionBackend       string        `env:"SESSION_BACKEND"` // memory | local | gocache | redis
	SessionTTL           time.Duration `env:"SESSION_TTL"`
	SessionMaxIdle       time.Duration `env:"SESSION_MAX_IDLE"`
	SessionSweepSchedule string        `env:"SESSION_SWEEP_SCHEDULE"`
	Cache                cache.Config

	// 派发日志
	DBDriver string `env:"DB_DRIVER"`
	DSN      string `env:"DSN"`

	// 入站事件
	EventRateLimit string        `env:"EVENT_RATE_LIMIT"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL"`
}

var GlobalConfig *Config

func Load() error {
	// 1. 根据环境加载 .env 文件
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	if err := util.LoadEnv(env); err != nil {
		log.Printf("Failed to load .env file: %v", err)
	}

	// 2. 加载全局配置
	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}
	GlobalConfig = cfg
	return nil
}

// FromEnv 从环境变量构建配置，未设置的项取默认值
func FromEnv() *Config {
	cacheCfg := cache.DefaultConfig()
	cacheCfg.Type = firstNonEmpty(util.GetEnv("CACHE_TYPE"), cacheCfg.Type)
	cacheCfg.Redis.Addr = firstNonEmpty(util.GetEnv("REDIS_ADDR"), cacheCfg.Redis.Addr)
	cacheCfg.Redis.Password = util.GetEnv("REDIS_PASSWORD")
	cacheCfg.Redis.DB = int(util.GetIntEnv("REDIS_DB"))
	cacheCfg.Redis.KeyPrefix = firstNonEmpty(util.GetEnv("REDIS_KEY_PREFIX"), cacheCfg.Redis.KeyPrefix)
	if n := util.GetIntEnv("LOCAL_CACHE_MAX_SIZE"); n > 0 {
		cacheCfg.Local.MaxSize = int(n)
	}

	sessionTTL := durationOr(util.GetDurationEnv("SESSION_TTL"), 12*time.Hour)
	cacheCfg.Local.DefaultExpiration = sessionTTL

	// SESSION_BACKEND 为 local/gocache/redis 时与缓存类型保持一致
	backend := firstNonEmpty(util.GetEnv("SESSION_BACKEND"), "memory")
	if backend != "memory" {
		cacheCfg.Type = backend
	}

	return &Config{
		Addr:          firstNonEmpty(util.GetEnv("ADDR"), ":8080"),
		Mode:          firstNonEmpty(util.GetEnv("MODE"), "debug"),
		APIPrefix:     firstNonEmpty(util.GetEnv("API_PREFIX"), "/api"),
		MonitorPrefix: firstNonEmpty(util.GetEnv("MONITOR_PREFIX"), "/metrics"),
		Log: logger.LogConfig{
			Level:      util.GetEnv("LOG_LEVEL"),
			Filename:   util.GetEnv("LOG_FILENAME"),
			MaxSize:    int(util.GetIntEnv("LOG_MAX_SIZE")),
			MaxAge:     int(util.GetIntEnv("LOG_MAX_AGE")),
			MaxBackups: int(util.GetIntEnv("LOG_MAX_BACKUPS")),
		},
		Notifier:             firstNonEmpty(util.GetEnv("NOTIFIER"), "telegram"),
		BotToken:             util.GetEnv("BOT_TOKEN"),
		TelegramAPI:          firstNonEmpty(util.GetEnv("TELEGRAM_API_URL"), "https://api.telegram.org"),
		CoordChatID:          util.GetEnv("COORD_CHAT_ID"),
		NotifyTimeout:        durationOr(util.GetDurationEnv("NOTIFY_TIMEOUT"), 10*time.Second),
		SessionBackend:       backend,
		SessionTTL:           sessionTTL,
		SessionMaxIdle:       durationOr(util.GetDurationEnv("SESSION_MAX_IDLE"), 6*time.Hour),
		SessionSweepSchedule: firstNonEmpty(util.GetEnv("SESSION_SWEEP_SCHEDULE"), "@every 15m"),
		Cache:                cacheCfg,
		DBDriver:             util.GetEnv("DB_DRIVER"),
		DSN:                  util.GetEnv("DSN"),
		EventRateLimit:       firstNonEmpty(util.GetEnv("EVENT_RATE_LIMIT"), "60-M"),
		IdempotencyTTL:       durationOr(util.GetDurationEnv("IDEMPOTENCY_TTL"), 10*time.Minute),
	}
}

// Validate 检查启动必需项
func (c *Config) Validate() error {
	if c.CoordChatID == "" {
		return fmt.Errorf("COORD_CHAT_ID must be set")
	}
	switch c.Notifier {
	case "telegram":
		if c.BotToken == "" {
			return fmt.Errorf("BOT_TOKEN must be set for the telegram notifier")
		}
	case "hub", "sse", "log":
	default:
		return fmt.Errorf("unsupported NOTIFIER %q", c.Notifier)
	}
	switch c.SessionBackend {
	case "memory", "local", "gocache", "redis":
	default:
		return fmt.Errorf("unsupported SESSION_BACKEND %q", c.SessionBackend)
	}
	return nil
}

func firstNonEmpty(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func durationOr(v, def time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return def
}
