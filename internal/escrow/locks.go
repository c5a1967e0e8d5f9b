package escrow

import (
	"sync"

	"github.com/google/uuid"
)

// projectLocks serializes ledger operations per project: at most one
// deposit, release, or refund may be in flight for a given project at a
// time. Operations on different projects proceed concurrently.
// Mutexes are never evicted; the map is bounded by the projects this
// process has touched.
type projectLocks struct {
	mu sync.Mutex
	m  map[uuid.UUID]*sync.Mutex
}

// lock acquires the mutex for the project and returns its unlock func.
func (l *projectLocks) lock(projectID uuid.UUID) func() {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[uuid.UUID]*sync.Mutex)
	}
	mu, ok := l.m[projectID]
	if !ok {
		mu = &sync.Mutex{}
		l.m[projectID] = mu
	}
	l.mu.Unlock()

	mu.Lock()
	return mu.Unlock
}
