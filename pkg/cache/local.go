package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// localCache 基于 golang-lru 的本地缓存，容量满时淘汰最久未使用的项
type localCache struct {
	lru *expirable.LRU[string, []byte]
}

// NewLocalCache 创建本地 LRU 缓存；过期时间统一取 DefaultExpiration
func NewLocalCache(config LocalConfig) Cache {
	size := config.MaxSize
	if size <= 0 {
		size = 10000
	}
	if config.Unbounded {
		// expirable.LRU 容量为 0 表示不限
		size = 0
	}
	return &localCache{
		lru: expirable.NewLRU[string, []byte](size, nil, config.DefaultExpiration),
	}
}

func (lc *localCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok := lc.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	return clone(v), true, nil
}

// Set 单项过期时间不受支持，expiration 参数被忽略
func (lc *localCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	lc.lru.Add(key, clone(value))
	return nil
}

func (lc *localCache) Delete(ctx context.Context, key string) error {
	lc.lru.Remove(key)
	return nil
}

// Len 当前缓存项数量（用于监控）
func (lc *localCache) Len() int {
	return lc.lru.Len()
}

func (lc *localCache) Close() error {
	lc.lru.Purge()
	return nil
}
