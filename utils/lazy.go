package utils

import "sync"

// Lazy holds a value that is loaded on first use and kept for the rest of the
// process. A failed load is not cached, so the next Get tries again.
type Lazy[T any] struct {
	mu     sync.Mutex
	loaded bool
	value  T
	load   func() (T, error)
}

// NewLazy creates a holder around load.
func NewLazy[T any](load func() (T, error)) *Lazy[T] {
	return &Lazy[T]{load: load}
}

// Get returns the cached value, loading it if this is the first successful call.
func (l *Lazy[T]) Get() (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loaded {
		return l.value, nil
	}
	v, err := l.load()
	if err != nil {
		var zero T
		return zero, err
	}
	l.value = v
	l.loaded = true
	return v, nil
}
