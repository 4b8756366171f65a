package cache

import (
	"context"
	"time"
)

// Cache 字节值缓存接口，会话存储以 JSON 编码写入
type Cache interface {
	// Get 获取缓存值，found=false 表示不存在或已过期
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set 设置缓存值，expiration<=0 时使用后端默认过期时间
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error

	// Delete 删除缓存，键不存在不报错
	Delete(ctx context.Context, key string) error

	// Close 关闭缓存连接
	Close() error
}

// Config 缓存配置
type Config struct {
	// 缓存类型: "local"、"gocache" 或 "redis"
	Type string `json:"type" yaml:"type" env:"CACHE_TYPE" default:"local"`

	Redis RedisConfig `json:"redis" yaml:"redis"`

	Local LocalConfig `json:"local" yaml:"local"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr" env:"REDIS_ADDR" default:"localhost:6379"`
	Password string `json:"password" yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `json:"db" yaml:"db" env:"REDIS_DB" default:"0"`

	// 键前缀，多个服务共用一个库时区分命名空间
	KeyPrefix string `json:"key_prefix" yaml:"key_prefix" env:"REDIS_KEY_PREFIX" default:"aviso:"`

	PoolSize     int           `json:"pool_size" yaml:"pool_size" env:"REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `json:"min_idle_conns" yaml:"min_idle_conns" env:"REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `json:"dial_timeout" yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout" env:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" env:"REDIS_WRITE_TIMEOUT" default:"3s"`
}

// LocalConfig 本地缓存配置（local / gocache 共用）
type LocalConfig struct {
	// 最大缓存项数，仅 local 生效
	MaxSize int `json:"max_size" yaml:"max_size" env:"LOCAL_CACHE_MAX_SIZE" default:"10000"`

	// 不设容量上限，只按过期时间淘汰；为 true 时忽略 MaxSize
	Unbounded bool `json:"unbounded" yaml:"unbounded"`

	DefaultExpiration time.Duration `json:"default_expiration" yaml:"default_expiration" env:"LOCAL_CACHE_DEFAULT_EXPIRATION" default:"12h"`

	// 清理间隔，仅 gocache 生效
	CleanupInterval time.Duration `json:"cleanup_interval" yaml:"cleanup_interval" env:"LOCAL_CACHE_CLEANUP_INTERVAL" default:"10m"`
}

// DefaultConfig 默认使用本地 LRU
func DefaultConfig() Config {
	return Config{
		Type: "local",
		Redis: RedisConfig{
			Addr:         "localhost:6379",
			KeyPrefix:    "aviso:",
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Local: LocalConfig{
			MaxSize:           10000,
			DefaultExpiration: 12 * time.Hour,
			CleanupInterval:   10 * time.Minute,
		},
	}
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
