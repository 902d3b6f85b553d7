package game

import "sync"

// roomLocks hands out one mutex per game id so every read-modify-write
// cycle for a room runs serialized while different rooms proceed in
// parallel.
type roomLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newRoomLocks() *roomLocks {
	return &roomLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the room and returns its release func.
func (rl *roomLocks) acquire(gameID string) func() {
	rl.mu.Lock()
	l, ok := rl.locks[gameID]
	if !ok {
		l = &sync.Mutex{}
		rl.locks[gameID] = l
	}
	rl.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// forget drops the room's entry after the game document is deleted.
// Late waiters still holding the old mutex reload the game under it and
// get a not-found, so a recycled entry cannot corrupt state.
func (rl *roomLocks) forget(gameID string) {
	rl.mu.Lock()
	delete(rl.locks, gameID)
	rl.mu.Unlock()
}
