package service

import "sync"

// playerLocks serializes scoring and undo per player. Different players
// proceed concurrently; the same player's streak counters and running score
// are read-modify-write and must not interleave.
type playerLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newPlayerLocks() *playerLocks {
	return &playerLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *playerLocks) get(name string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[name] = lock
	}
	return lock
}
