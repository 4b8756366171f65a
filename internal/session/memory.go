package session

import (
	"context"
	"sync"
	"time"

	"AvisoBot/internal/models"
)

// MemoryStore 进程内会话存储，重启即丢失
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[models.UserID]*models.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[models.UserID]*models.Session),
	}
}

func (m *MemoryStore) Get(_ context.Context, userID models.UserID) (*models.Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[userID]
	if !ok {
		return nil, false, nil
	}
	return s.Clone(), true, nil
}

func (m *MemoryStore) Put(_ context.Context, s *models.Session) error {
	if s == nil || s.UserID == "" {
		return ErrInvalidSession
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.UserID] = s.Clone()
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, userID models.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, userID)
	return nil
}

// Sweep 删除 UpdatedAt 早于 idleSince 的会话，返回删除数量
func (m *MemoryStore) Sweep(_ context.Context, idleSince time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, s := range m.sessions {
		if s.UpdatedAt.Before(idleSince) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
