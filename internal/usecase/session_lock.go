package usecase

import "sync"

// sessionLocks serializes the load, apply and save cycle per session id.
// Entries live only while someone holds or waits for them.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{
		locks: make(map[string]*sessionLock),
	}
}

// lock blocks until id is free and returns the matching unlock.
func (that *sessionLocks) lock(id string) func() {
	that.mu.Lock()
	l, ok := that.locks[id]
	if !ok {
		l = &sessionLock{}
		that.locks[id] = l
	}
	l.refs++
	that.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		that.mu.Lock()
		defer that.mu.Unlock()

		l.refs--
		if l.refs == 0 {
			delete(that.locks, id)
		}
	}
}

func (that *sessionLocks) size() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.locks)
}
