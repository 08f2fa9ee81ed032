// Package syncx has concurrency helpers for handing bus work between goroutines.
package syncx

import "sync"

// Memo caches a value per key, built on first use, like the handler methods of an owner type.
// It's safe for concurrent use, and the zero value is ready to use.
// A failed build isn't cached, so the next Load for that key tries again.
type Memo[K comparable, V any] struct {
	mux  sync.RWMutex
	vals map[K]V
}

// Get returns the value cached for key, if there is one.
func (m *Memo[K, V]) Get(key K) (V, bool) {
	m.mux.RLock()
	defer m.mux.RUnlock()
	val, ok := m.vals[key]
	return val, ok
}

// Load returns the value cached for key, calling build to create it if needed.
// Concurrent loads of the same key call build only once.
func (m *Memo[K, V]) Load(key K, build func(key K) (V, error)) (V, error) {
	if val, ok := m.Get(key); ok {
		return val, nil
	}
	m.mux.Lock()
	defer m.mux.Unlock()
	if val, ok := m.vals[key]; ok {
		return val, nil
	}
	val, err := build(key)
	if err != nil {
		var zero V
		return zero, err
	}
	if m.vals == nil {
		m.vals = map[K]V{}
	}
	m.vals[key] = val
	return val, nil
}
