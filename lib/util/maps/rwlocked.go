package maps

import "sync"

// RWLocked is a map guarded by a RWMutex. The zero value is ready to use.
type RWLocked[K comparable, V any] struct {
	inner map[K]V
	mu    sync.RWMutex
}

func (T *RWLocked[K, V]) Delete(key K) {
	T.mu.Lock()
	defer T.mu.Unlock()
	delete(T.inner, key)
}

// DeleteIf removes key only if predicate reports true for the stored value.
func (T *RWLocked[K, V]) DeleteIf(key K, predicate func(V) bool) bool {
	T.mu.Lock()
	defer T.mu.Unlock()
	value, ok := T.inner[key]
	if !ok || !predicate(value) {
		return false
	}
	delete(T.inner, key)
	return true
}

func (T *RWLocked[K, V]) Load(key K) (value V, ok bool) {
	T.mu.RLock()
	defer T.mu.RUnlock()
	value, ok = T.inner[key]
	return
}

// LoadOrStore returns the existing value for key if present. Otherwise it stores and returns value.
func (T *RWLocked[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	T.mu.Lock()
	defer T.mu.Unlock()
	actual, loaded = T.inner[key]
	if !loaded {
		if T.inner == nil {
			T.inner = make(map[K]V)
		}
		T.inner[key] = value
		actual = value
	}
	return
}

// StoreIf stores value when predicate reports true for the current value (or the zero value and false when absent).
func (T *RWLocked[K, V]) StoreIf(key K, value V, predicate func(current V, ok bool) bool) bool {
	T.mu.Lock()
	defer T.mu.Unlock()
	current, ok := T.inner[key]
	if !predicate(current, ok) {
		return false
	}
	if T.inner == nil {
		T.inner = make(map[K]V)
	}
	T.inner[key] = value
	return true
}

func (T *RWLocked[K, V]) Store(key K, value V) {
	T.mu.Lock()
	defer T.mu.Unlock()
	if T.inner == nil {
		T.inner = make(map[K]V)
	}
	T.inner[key] = value
}

func (T *RWLocked[K, V]) Len() int {
	T.mu.RLock()
	defer T.mu.RUnlock()
	return len(T.inner)
}

func (T *RWLocked[K, V]) Clear() {
	T.mu.Lock()
	defer T.mu.Unlock()
	clear(T.inner)
}

// Range calls fn for a snapshot of the entries, so fn may modify the map.
func (T *RWLocked[K, V]) Range(fn func(key K, value V) bool) bool {
	T.mu.RLock()
	keys := make([]K, 0, len(T.inner))
	values := make([]V, 0, len(T.inner))
	for k, v := range T.inner {
		keys = append(keys, k)
		values = append(values, v)
	}
	T.mu.RUnlock()

	for i := range keys {
		if !fn(keys[i], values[i]) {
			return false
		}
	}
	return true
}
