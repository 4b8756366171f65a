package middleware

import (
	"net/http"
	"strings"
	"time"

	"AvisoBot/pkg/response"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
)

type IdemStore interface {
	Set(key string, ttl time.Duration) bool // return true if set, false if exists
	Delete(key string)
}

// goCacheIdemStore 基于 go-cache 的幂等键存储，Add 在键存在时失败
type goCacheIdemStore struct {
	c *gocache.Cache
}

func NewMemoryIdemStore(ttl time.Duration) IdemStore {
	return &goCacheIdemStore{c: gocache.New(ttl, time.Minute)}
}

func (s *goCacheIdemStore) Set(key string, ttl time.Duration) bool {
	return s.c.Add(key, struct{}{}, ttl) == nil
}

func (s *goCacheIdemStore) Delete(key string) {
	s.c.Delete(key)
}

type IdempotencyConfig struct {
	HeaderName string        // 幂等键请求头名，默认 X-Event-ID
	TTL        time.Duration // 决定一段时间内重复请求的拒绝窗口
	Store      IdemStore     // 可选外部存储
}

// IdempotencyMiddleware 拒绝窗口期内重复的事件；未携带幂等键的请求直接放行。
// 后续处理返回非 2xx 时释放幂等键，被拒绝的事件可以用同一键重发
func IdempotencyMiddleware(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.HeaderName == "" {
		cfg.HeaderName = "X-Event-ID"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	store := cfg.Store
	if store == nil {
		store = NewMemoryIdemStore(cfg.TTL)
	}
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(cfg.HeaderName))
		if key == "" {
			c.Next()
			return
		}
		if !store.Set(key, cfg.TTL) {
			response.AbortWithStatus(c, http.StatusConflict, "duplicate event")
			return
		}
		c.Next()
		if status := c.Writer.Status(); status < 200 || status >= 300 {
			store.Delete(key)
		}
	}
}
