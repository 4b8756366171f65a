package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"AvisoBot/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimiterConfig 限流配置
//
// 示例：
// Rate: "60-M"、Identifier: "ip"/"header"、HeaderName: "X-Client-ID"
// SkipPaths: ["/api/system/health", "/metrics"] 前缀匹配
// AddHeaders: 是否写标准限流响应头；DenyStatus/DenyMessage: 自定义拒绝响应
type RateLimiterConfig struct {
	Rate        string   `json:"rate"`        // e.g. "100-M", "1000-H"
	Identifier  string   `json:"identifier"`  // ip|header
	HeaderName  string   `json:"header_name"` // 当 identifier=header 时使用
	SkipPaths   []string `json:"skip_paths"`
	AddHeaders  bool     `json:"add_headers"`
	DenyStatus  int      `json:"deny_status"` // 默认 429
	DenyMessage string   `json:"deny_message"`
}

// RateLimiter 面向实例的限流器，HTTP 中间件与按用户的事件限流共用同一 store
type RateLimiter struct {
	cfg            RateLimiterConfig
	store          limiter.Store
	limitersByRate map[string]*limiter.Limiter // rate字符串 -> limiter
	mu             sync.RWMutex
}

// NewRateLimiter store 为空时使用内存存储
func NewRateLimiter(cfg RateLimiterConfig, store limiter.Store) *RateLimiter {
	if store == nil {
		store = memory.NewStore()
	}
	return &RateLimiter{
		cfg:            cfg,
		store:          store,
		limitersByRate: make(map[string]*limiter.Limiter),
	}
}

// Allow 对任意键计数，reached=true 表示已超限
func (l *RateLimiter) Allow(ctx context.Context, key string) (limiter.Context, bool, error) {
	lctx, err := l.getLimiter(l.rate()).Get(ctx, key)
	if err != nil {
		return lctx, false, err
	}
	return lctx, lctx.Reached, nil
}

// Middleware 返回 Gin 中间件
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if pathSkipped(l.cfg, c.FullPath(), c.Request.URL.Path) {
			c.Next()
			return
		}

		lctx, reached, err := l.Allow(c.Request.Context(), buildLimitKey(l.cfg, c))
		if err != nil {
			// 限流存储故障时放行
			c.Next()
			return
		}
		if l.cfg.AddHeaders {
			SetRateLimitHeaders(c, lctx)
		}
		if reached {
			l.Deny(c, lctx)
			return
		}
		c.Next()
	}
}

// Deny 写出 429
func (l *RateLimiter) Deny(c *gin.Context, lctx limiter.Context) {
	setRetryAfter(c, time.Until(time.Unix(lctx.Reset, 0)))
	status := l.cfg.DenyStatus
	if status == 0 {
		status = http.StatusTooManyRequests
	}
	msg := l.cfg.DenyMessage
	if msg == "" {
		msg = "Too Many Requests"
	}
	response.AbortWithStatus(c, status, msg)
}

func (l *RateLimiter) rate() string {
	if l.cfg.Rate != "" {
		return l.cfg.Rate
	}
	return "10-S"
}

func (l *RateLimiter) getLimiter(rateStr string) *limiter.Limiter {
	l.mu.RLock()
	lim, ok := l.limitersByRate[rateStr]
	l.mu.RUnlock()
	if ok {
		return lim
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok = l.limitersByRate[rateStr]; ok {
		return lim
	}
	r, err := limiter.NewRateFromFormatted(rateStr)
	if err != nil {
		r = limiter.Rate{Period: time.Second, Limit: 10}
	}
	lim = limiter.New(l.store, r)
	l.limitersByRate[rateStr] = lim
	return lim
}

func pathSkipped(cfg RateLimiterConfig, fullPath, rawPath string) bool {
	p := fullPath
	if p == "" {
		p = rawPath
	}
	for _, pref := range cfg.SkipPaths {
		if pref != "" && strings.HasPrefix(p, pref) {
			return true
		}
	}
	return false
}

func buildLimitKey(cfg RateLimiterConfig, c *gin.Context) string {
	ip := strings.TrimPrefix(c.ClientIP(), "::ffff:")
	if cfg.Identifier == "header" {
		if hv := strings.TrimSpace(c.GetHeader(cfg.HeaderName)); hv != "" {
			return "hdr:" + cfg.HeaderName + ":" + hv
		}
	}
	return "ip:" + ip
}

// SetRateLimitHeaders 写标准限流响应头
func SetRateLimitHeaders(c *gin.Context, ctx limiter.Context) {
	c.Header("X-RateLimit-Limit", strconv.FormatInt(ctx.Limit, 10))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(ctx.Remaining, 10))
	resetSec := int(time.Until(time.Unix(ctx.Reset, 0)).Seconds())
	if resetSec < 0 {
		resetSec = 0
	}
	c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))
}

func setRetryAfter(c *gin.Context, d time.Duration) {
	sec := int(d.Seconds())
	if sec < 0 {
		sec = 0
	}
	c.Header("Retry-After", strconv.Itoa(sec))
}
