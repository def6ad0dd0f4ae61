package cmap

import (
	"sync"
	"sync/atomic"
)

// ids hands out a unique identity per map so two-map operations can order
// their lock acquisition deterministically.
var ids atomic.Uint64

// Map is a thread-safe map guarded by a single reader/writer lock.
// The zero value is not usable; create instances with New.
type Map[K comparable, V any] struct {
	mu    sync.RWMutex
	id    uint64
	items map[K]V
}

// New creates an empty map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		id:    ids.Add(1),
		items: make(map[K]V),
	}
}

// Insert adds the entry only if the key is absent.
// Returns false without modifying the map when the key already exists.
func (m *Map[K, V]) Insert(key K, value V) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[key]; ok {
		return false
	}
	m.items[key] = value
	return true
}

// Store sets the value for the key, overwriting any existing entry.
func (m *Map[K, V]) Store(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
}

// At returns the value for the key, or ErrNotFound when the key is absent.
func (m *Map[K, V]) At(key K) (V, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	if !ok {
		var zero V
		return zero, ErrNotFound
	}
	return v, nil
}

// Get returns the value for the key and whether it was present.
func (m *Map[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok
}

// Erase removes the key. Removing an absent key is a no-op.
func (m *Map[K, V]) Erase(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
}

// Contains reports whether the key is present.
func (m *Map[K, V]) Contains(key K) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.items[key]
	return ok
}

// Count returns 1 when the key is present and 0 otherwise.
func (m *Map[K, V]) Count(key K) int {
	if m.Contains(key) {
		return 1
	}
	return 0
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Empty reports whether the map has no entries.
func (m *Map[K, V]) Empty() bool {
	return m.Len() == 0
}

// Clear removes all entries.
func (m *Map[K, V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.items)
}

// Reserve pre-sizes the underlying storage for n additional entries.
// Existing entries are preserved.
func (m *Map[K, V]) Reserve(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n <= len(m.items) {
		return
	}
	items := make(map[K]V, n)
	for k, v := range m.items {
		items[k] = v
	}
	m.items = items
}

// Keys returns a snapshot copy of all keys in unspecified order.
func (m *Map[K, V]) Keys() []K {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]K, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	return keys
}

// Values returns a snapshot copy of all values in unspecified order.
func (m *Map[K, V]) Values() []V {
	m.mu.RLock()
	defer m.mu.RUnlock()
	values := make([]V, 0, len(m.items))
	for _, v := range m.items {
		values = append(values, v)
	}
	return values
}

// Snapshot returns a plain map copy of the current contents.
func (m *Map[K, V]) Snapshot() map[K]V {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make(map[K]V, len(m.items))
	for k, v := range m.items {
		items[k] = v
	}
	return items
}

// Range applies fn to every entry while holding the exclusive lock.
// Iteration order is unspecified. fn must not call back into the map.
func (m *Map[K, V]) Range(fn func(key K, value V)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.items {
		fn(k, v)
	}
}

// PopAny atomically removes and returns an arbitrary entry.
// Returns zero values and false when the map is empty.
func (m *Map[K, V]) PopAny() (K, V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.items {
		delete(m.items, k)
		return k, v, true
	}
	var (
		zeroK K
		zeroV V
	)
	return zeroK, zeroV, false
}

// Swap exchanges the contents of the two maps. Swapping a map with itself
// is a no-op.
func (m *Map[K, V]) Swap(other *Map[K, V]) {
	if m == other || other == nil {
		return
	}
	first, second := lockOrder(m, other)
	first.mu.Lock()
	second.mu.Lock()
	defer first.mu.Unlock()
	defer second.mu.Unlock()
	m.items, other.items = other.items, m.items
}

// Merge moves every entry whose key is absent in the receiver from other
// into the receiver. Conflicting keys stay in other. Merging a map with
// itself is a no-op.
func (m *Map[K, V]) Merge(other *Map[K, V]) {
	if m == other || other == nil {
		return
	}
	first, second := lockOrder(m, other)
	first.mu.Lock()
	second.mu.Lock()
	defer first.mu.Unlock()
	defer second.mu.Unlock()
	for k, v := range other.items {
		if _, ok := m.items[k]; ok {
			continue
		}
		m.items[k] = v
		delete(other.items, k)
	}
}

// CopyFrom replaces the receiver's contents with a copy of other's.
// Copying a map from itself is a no-op.
func (m *Map[K, V]) CopyFrom(other *Map[K, V]) {
	if m == other || other == nil {
		return
	}
	// Receiver is written, other is only read; lock order still follows
	// map identity so a concurrent reverse CopyFrom cannot deadlock.
	if m.id < other.id {
		m.mu.Lock()
		other.mu.RLock()
	} else {
		other.mu.RLock()
		m.mu.Lock()
	}
	defer m.mu.Unlock()
	defer other.mu.RUnlock()
	items := make(map[K]V, len(other.items))
	for k, v := range other.items {
		items[k] = v
	}
	m.items = items
}

// CopyFromMap replaces the receiver's contents with a copy of src.
func (m *Map[K, V]) CopyFromMap(src map[K]V) {
	items := make(map[K]V, len(src))
	for k, v := range src {
		items[k] = v
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = items
}

// Equal reports whether both maps hold the same keys with values considered
// equal by eq. A map always equals itself.
func (m *Map[K, V]) Equal(other *Map[K, V], eq func(a, b V) bool) bool {
	if m == other {
		return true
	}
	if other == nil {
		return false
	}
	first, second := lockOrder(m, other)
	first.mu.RLock()
	second.mu.RLock()
	defer first.mu.RUnlock()
	defer second.mu.RUnlock()
	if len(m.items) != len(other.items) {
		return false
	}
	for k, v := range m.items {
		ov, ok := other.items[k]
		if !ok || !eq(v, ov) {
			return false
		}
	}
	return true
}

// lockOrder orders two distinct maps by identity so both parties of a
// two-map operation acquire locks in the same sequence.
func lockOrder[K comparable, V any](a, b *Map[K, V]) (*Map[K, V], *Map[K, V]) {
	if a.id < b.id {
		return a, b
	}
	return b, a
}
