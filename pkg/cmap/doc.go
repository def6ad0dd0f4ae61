// Package cmap provides a generic, thread-safe map guarded by a single
// reader/writer lock, intended as a shared building block for concurrent
// components such as caches and object pools.
//
// Unlike sync.Map, which is optimized for disjoint key sets, cmap.Map keeps
// the full map contract: distinct insert-without-overwrite and
// store-with-overwrite operations, lookups that report absence as an error,
// snapshot copies of keys and values, and whole-container operations
// (Swap, Merge, CopyFrom, Equal) that coordinate two locks safely.
//
// # Key Features
//
//   - Generic over any comparable key type and any value type
//   - Reads take shared access, writes take exclusive access
//   - Two-map operations acquire both locks in a stable order, so
//     concurrent Swap/Merge calls between the same maps cannot deadlock
//   - Self-operations (m.Swap(m), m.CopyFrom(m)) are detected and skipped
//   - PopAny atomically removes and returns an arbitrary entry, which
//     makes the map usable as a work-stealing set
//
// # Usage
//
//	m := cmap.New[string, int]()
//
//	m.Insert("a", 1) // true: key was absent
//	m.Insert("a", 2) // false: key exists, value kept
//	m.Store("a", 2)  // overwrites unconditionally
//
//	v, err := m.At("a")
//	if errors.Is(err, cmap.ErrNotFound) {
//		// key absent
//	}
//
//	k, v, ok := m.PopAny() // claim an arbitrary entry
//
// # Iteration
//
// Range holds the exclusive lock for the whole traversal. The callback must
// not call back into the map and must not assume any iteration order.
//
// Keys, Values and Snapshot return copies taken under shared access and are
// safe to use without further synchronization.
package cmap
