package core

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// pairLocks hands out one lock per unordered ingredient pair. Entries are
// dropped once nobody holds or waits for them.
type pairLocks struct {
	mu    sync.Mutex
	locks map[string]*pairLock
}

type pairLock struct {
	sem  *semaphore.Weighted
	refs int
}

// acquire blocks until the caller holds key or ctx is done. The returned
// release must be called exactly once on success.
func (p *pairLocks) acquire(ctx context.Context, key string) (func(), error) {
	p.mu.Lock()
	if p.locks == nil {
		p.locks = make(map[string]*pairLock)
	}
	l, ok := p.locks[key]
	if !ok {
		l = &pairLock{sem: semaphore.NewWeighted(1)}
		p.locks[key] = l
	}
	l.refs++
	p.mu.Unlock()

	if err := l.sem.Acquire(ctx, 1); err != nil {
		p.unref(key, l)
		return nil, err
	}
	return func() {
		l.sem.Release(1)
		p.unref(key, l)
	}, nil
}

func (p *pairLocks) unref(key string, l *pairLock) {
	p.mu.Lock()
	defer p.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(p.locks, key)
	}
}

// refs reports how many callers hold or wait for key.
func (p *pairLocks) refs(key string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if l, ok := p.locks[key]; ok {
		return l.refs
	}
	return 0
}
