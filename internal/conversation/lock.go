package conversation

import (
	"sync"

	"AvisoBot/internal/models"
)

// userLocks 每个用户一把锁：同一用户的事件串行，不同用户互不阻塞。
// 引用计数归零时删除条目，map 只保留正在处理的用户
type userLocks struct {
	mu    sync.Mutex
	locks map[models.UserID]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func (l *userLocks) lock(userID models.UserID) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[models.UserID]*userLock)
	}
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}

func (l *userLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
