// Package cache provides in-process caching primitives.
//
// [Memo] is a write-once, read-many map: the first caller for a key computes
// the value, concurrent callers for the same key wait for that computation,
// and every later caller receives the stored result. Entries are never
// evicted; use it only for values that cannot change during the process
// lifetime.
package cache

import "sync"

// Memo memoizes the result of a computation per key.
// The zero value is ready to use. Memo is safe for concurrent use.
type Memo[K comparable, V any] struct {
	entries sync.Map // K -> *memoEntry[V]
}

type memoEntry[V any] struct {
	once  sync.Once
	value V
	err   error
}

// Get returns the memoized result for key, calling compute exactly once per
// key. Errors are memoized along with values. hit reports whether the entry
// already existed when Get was called.
func (m *Memo[K, V]) Get(key K, compute func() (V, error)) (value V, hit bool, err error) {
	actual, loaded := m.entries.LoadOrStore(key, &memoEntry[V]{})
	e := actual.(*memoEntry[V])
	e.once.Do(func() {
		e.value, e.err = compute()
	})
	return e.value, loaded, e.err
}

// Len returns the number of keys stored.
func (m *Memo[K, V]) Len() int {
	n := 0
	m.entries.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}
