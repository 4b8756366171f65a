package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"AvisoBot/internal/models"
	"AvisoBot/pkg/cache"
)

const keyPrefix = "session:"

// CacheStore 基于 pkg/cache 的会话存储，会话以 JSON 编码，过期交给缓存后端
type CacheStore struct {
	cache cache.Cache
	ttl   time.Duration
}

func NewCacheStore(c cache.Cache, ttl time.Duration) *CacheStore {
	return &CacheStore{cache: c, ttl: ttl}
}

func sessionKey(userID models.UserID) string {
	return keyPrefix + string(userID)
}

func (s *CacheStore) Get(ctx context.Context, userID models.UserID) (*models.Session, bool, error) {
	raw, found, err := s.cache.Get(ctx, sessionKey(userID))
	if err != nil {
		return nil, false, fmt.Errorf("load session %s: %w", userID, err)
	}
	if !found {
		return nil, false, nil
	}
	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, false, fmt.Errorf("decode session %s: %w", userID, err)
	}
	return &sess, true, nil
}

func (s *CacheStore) Put(ctx context.Context, sess *models.Session) error {
	if sess == nil || sess.UserID == "" {
		return ErrInvalidSession
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sess.UserID, err)
	}
	if err := s.cache.Set(ctx, sessionKey(sess.UserID), raw, s.ttl); err != nil {
		return fmt.Errorf("save session %s: %w", sess.UserID, err)
	}
	return nil
}

func (s *CacheStore) Remove(ctx context.Context, userID models.UserID) error {
	if err := s.cache.Delete(ctx, sessionKey(userID)); err != nil {
		return fmt.Errorf("remove session %s: %w", userID, err)
	}
	return nil
}

func (s *CacheStore) Close() error {
	return s.cache.Close()
}
