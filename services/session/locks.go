package session

import "sync"

type sessionLock struct {
	sync.Mutex
	refs int
}

// lockTable hands out one mutex per session id. An entry lives only while
// some caller holds or waits on it, so unknown or expired ids leave nothing
// behind.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

// acquire blocks until id is free and returns the matching release.
func (t *lockTable) acquire(id string) func() {
	t.mu.Lock()
	if t.locks == nil {
		t.locks = make(map[string]*sessionLock)
	}
	l, ok := t.locks[id]
	if !ok {
		l = &sessionLock{}
		t.locks[id] = l
	}
	l.refs++
	t.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		t.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(t.locks, id)
		}
		t.mu.Unlock()
	}
}

// size is the number of ids currently held or awaited.
func (t *lockTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.locks)
}
