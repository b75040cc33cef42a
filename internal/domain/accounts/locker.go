package accounts

import "sync"

// Locker hands out one mutex per account. Entries are dropped once nobody
// holds or waits on them, so the map only grows with concurrent accounts.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*lockEntry)}
}

// Lock blocks until the account's mutex is held and returns its release func.
func (l *Locker) Lock(accountID string) func() {
	l.mu.Lock()
	e, ok := l.locks[accountID]
	if !ok {
		e = &lockEntry{}
		l.locks[accountID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			l.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(l.locks, accountID)
			}
			l.mu.Unlock()
		})
	}
}

func (l *Locker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
