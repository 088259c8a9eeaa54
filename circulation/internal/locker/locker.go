package locker

import (
	"context"
	"sort"
	"sync"
)

// Scope ranks define the global acquisition order: members before items.
type Scope uint8

const (
	ScopeMember Scope = iota
	ScopeItem
)

type Key struct {
	Scope Scope
	ID    string
}

func Member(id string) Key { return Key{Scope: ScopeMember, ID: id} }

func Item(id string) Key { return Key{Scope: ScopeItem, ID: id} }

func (k Key) less(o Key) bool {
	if k.Scope != o.Scope {
		return k.Scope < o.Scope
	}
	return k.ID < o.ID
}

type entry struct {
	sem  chan struct{}
	refs int
}

// Locker hands out per key mutual exclusion inside one process.
type Locker struct {
	mu      sync.Mutex
	entries map[Key]*entry
}

func New() *Locker {
	return &Locker{entries: make(map[Key]*entry)}
}

// Lock acquires every key in global order and returns the release func.
// On ctx cancellation the keys taken so far are released and ctx.Err() returned.
func (l *Locker) Lock(ctx context.Context, keys ...Key) (func(), error) {
	keys = normalize(keys)

	held := make([]Key, 0, len(keys))
	for _, k := range keys {
		e := l.acquireEntry(k)
		select {
		case e.sem <- struct{}{}:
			held = append(held, k)
		case <-ctx.Done():
			l.releaseEntry(k, false)
			l.unlock(held)
			return func() {}, ctx.Err()
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.unlock(held) })
	}, nil
}

func (l *Locker) unlock(held []Key) {
	for i := len(held) - 1; i >= 0; i-- {
		l.releaseEntry(held[i], true)
	}
}

func (l *Locker) acquireEntry(k Key) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[k]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		l.entries[k] = e
	}
	e.refs++
	return e
}

func (l *Locker) releaseEntry(k Key, locked bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.entries[k]
	if locked {
		<-e.sem
	}
	e.refs--
	if e.refs == 0 {
		delete(l.entries, k)
	}
}

// Len returns the number of keys currently held or waited on.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func normalize(keys []Key) []Key {
	out := make([]Key, 0, len(keys))
	seen := make(map[Key]struct{}, len(keys))
	for _, k := range keys {
		if k.ID == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].less(out[j]) })
	return out
}
