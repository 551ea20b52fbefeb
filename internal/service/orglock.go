package service

import (
	"fmt"
	"sync"
)

// OrgLocks serializes mutations per organization. Step writes, submits
// and admin transitions for the same organization must not interleave, or a
// case snapshot could mix pre- and post-submit data.
type OrgLocks struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func NewOrgLocks() *OrgLocks {
	return &OrgLocks{locks: make(map[string]*entry)}
}

// acquire blocks until the key's lock is held and returns the release func.
func (l *OrgLocks) acquire(key string) func() {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

func orgKey(orgID int32) string {
	return fmt.Sprintf("org:%d", orgID)
}

func userKey(userID int32) string {
	return fmt.Sprintf("user:%d", userID)
}
