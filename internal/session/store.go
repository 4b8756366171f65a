// Package session keeps the single in-progress report of each user.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"AvisoBot/internal/models"
	"AvisoBot/pkg/cache"
)

// Store 会话存储。Get 未找到时返回 found=false 而非错误；
// 返回值均为副本，调用方修改后须 Put 才会生效
type Store interface {
	Get(ctx context.Context, userID models.UserID) (*models.Session, bool, error)
	Put(ctx context.Context, s *models.Session) error
	Remove(ctx context.Context, userID models.UserID) error
}

// Sweeper 可主动清理空闲会话的存储
type Sweeper interface {
	Sweep(ctx context.Context, idleSince time.Time) (int, error)
}

var ErrInvalidSession = errors.New("session must carry a user id")

type Backend string

const (
	BackendMemory  Backend = "memory"
	BackendLocal   Backend = "local"
	BackendGoCache Backend = "gocache"
	BackendRedis   Backend = "redis"
)

// NewStore 按后端类型创建存储；缓存类后端由 TTL 负责过期
func NewStore(backend Backend, cacheCfg cache.Config, ttl time.Duration) (Store, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendLocal, BackendGoCache, BackendRedis:
		cacheCfg.Type = string(backend)
		// 会话只能过期或被显式删除，不能因容量被挤出
		cacheCfg.Local.Unbounded = true
		c, err := cache.NewCache(cacheCfg)
		if err != nil {
			return nil, fmt.Errorf("create %s session cache: %w", backend, err)
		}
		return NewCacheStore(c, ttl), nil
	default:
		return nil, fmt.Errorf("unsupported session backend: %s", backend)
	}
}
