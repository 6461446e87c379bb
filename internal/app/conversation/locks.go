package conversation

import (
	"sync"

	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
)

// sessionLocks serializes exchanges per session so that each user message
// and its reply stay adjacent in the transcript. Entries are dropped when
// no one holds or waits for them.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[domain.SessionID]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[domain.SessionID]*sessionLock)}
}

// lock blocks until the session is free and returns the unlock func.
func (l *sessionLocks) lock(id domain.SessionID) func() {
	l.mu.Lock()
	sl, ok := l.locks[id]
	if !ok {
		sl = &sessionLock{}
		l.locks[id] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()

	return func() {
		sl.mu.Unlock()

		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *sessionLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
