package memory

import (
	"context"
	"sync"
)

// lockSet hands out one exclusive lock per key. Acquire waits for the holder to
// release it or for ctx to end; different keys never wait on each other.
// A key's slot lives only while someone holds or waits for it.
type lockSet struct {
	mu    sync.Mutex
	slots map[string]*lockSlot
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

func newLockSet() *lockSet {
	return &lockSet{slots: make(map[string]*lockSlot)}
}

func (l *lockSet) join(key string) *lockSlot {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[key]
	if !ok {
		s = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

// leave must be called with l.mu held.
func (l *lockSet) leave(key string, s *lockSlot) {
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

func (l *lockSet) Acquire(ctx context.Context, key string) error {
	s := l.join(key)

	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		l.mu.Lock()
		l.leave(key, s)
		l.mu.Unlock()
		return ctx.Err()
	}
}

func (l *lockSet) Release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[key]
	if !ok {
		return
	}

	select {
	case <-s.ch:
		l.leave(key, s)
	default:
	}
}

func (l *lockSet) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
