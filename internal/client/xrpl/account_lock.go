package xrpl

import "sync"

// accountLocks serialises submissions per signing account so each one reads
// the sequence its predecessor left behind
type accountLocks struct {
	mu    sync.Mutex
	locks map[string]*accountLock
}

type accountLock struct {
	mu   sync.Mutex
	refs int
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: make(map[string]*accountLock)}
}

func (a *accountLocks) Lock(account string) func() {
	a.mu.Lock()
	l, ok := a.locks[account]
	if !ok {
		l = &accountLock{}
		a.locks[account] = l
	}
	l.refs++
	a.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		a.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(a.locks, account)
		}
		a.mu.Unlock()
	}
}
