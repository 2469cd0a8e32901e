// Package store provides a reactive key-value container shared by the
// components of one UI tree.
//
// A Store owns the canonical values and notifies two kinds of interested
// parties when a key changes:
//
//   - Subscribers registered explicitly with Subscribe. They receive the new
//     and the old value of the key, in subscription order.
//   - Consumers discovered implicitly. A Consumer that reads a key through a
//     tracking Scope (see Store.Track) becomes a dependent of that key and is
//     asked to re-render with the new value on every later Set.
//
// Both paths run in one notification sweep keyed by Consumer identity, so a
// Consumer registered on both paths re-renders once per Set.
//
// # Usage
//
//	s := store.New(map[string]any{"count": 0})
//
//	s.Subscribe("count", store.Func(func(next, prev store.Patch) {
//	    fmt.Println(prev["count"], "->", next["count"])
//	}))
//
//	err := s.Track(consumer, func(sc *store.Scope) error {
//	    render(sc.Get("count"))
//	    return nil
//	})
//
//	s.Set("count", 1) // prints "0 -> 1" and re-renders consumer
//
// # Threading
//
// The store follows the single-threaded render model of the UI runtime: all
// writes and notifications happen on one goroutine. Internal state is guarded
// by a mutex that is never held while user code (subscribers, consumers,
// update functions, observers) runs, so notifications may read and write
// other keys. Calling Set on a key from inside that key's own notification is
// undefined behavior and must be avoided.
package store
