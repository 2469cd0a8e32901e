package store

import (
	"cmp"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// storeTag marks values created by New. IsStore checks it instead of probing
// for method names.
const storeTag uint32 = 0x5354_4f52

// Subscriber receives explicit change notifications for a key.
// next and prev each hold a single entry for the changed key.
type Subscriber interface {
	StoreChanged(next, prev Patch)
}

// Callback adapts a function to the Subscriber interface. Callbacks compare
// by pointer identity, so the value returned by Func must be kept to
// unsubscribe it later.
type Callback struct {
	fn func(next, prev Patch)
}

// Func wraps fn as a Subscriber.
func Func(fn func(next, prev Patch)) *Callback {
	return &Callback{fn: fn}
}

// StoreChanged implements Subscriber.
func (c *Callback) StoreChanged(next, prev Patch) {
	c.fn(next, prev)
}

// Consumer is a mounted rendering unit that depends on store keys.
// ID must be unique and stable for the lifetime of the consumer.
type Consumer interface {
	ID() uint64
	Rerender(patch Patch)
}

// Hierarchical is implemented by consumers mounted in a tree where
// re-rendering an ancestor also re-renders its descendants. A sweep calls
// SweepStarted on each of them before any notification and notifies
// hierarchical dependents ancestors first, so a consumer already
// re-rendered by an ancestor during the sweep can skip its own re-render.
type Hierarchical interface {
	Consumer
	Depth() int
	SweepStarted()
}

// View is the read/write surface shared by *Store and *Scope.
type View interface {
	Get(key Key) any
	Lookup(key Key) (any, error)
	Set(key Key, value any) error
	Update(key Key, fn func(any) any) error
}

var (
	_ View = (*Store)(nil)
	_ View = (*Scope)(nil)
)

// entry is the per-key state.
type entry struct {
	value any
	// subs are explicit subscribers in insertion order. Duplicates are kept.
	subs []Subscriber
	// deps are implicit dependents, unique by ID.
	deps []Consumer
}

func (e *entry) addDependent(c Consumer) {
	id := c.ID()
	for _, d := range e.deps {
		if d.ID() == id {
			return
		}
	}
	e.deps = append(e.deps, c)
}

func (e *entry) removeDependent(id uint64) {
	for i, d := range e.deps {
		if d.ID() == id {
			e.deps = slices.Delete(e.deps, i, i+1)
			return
		}
	}
}

// Store is a reactive key-value container.
type Store struct {
	tag uint32
	id  uuid.UUID

	// mu protects the fields below. It is never held while user code runs.
	mu      sync.Mutex
	entries map[Key]*entry
	order   []Key

	// reads holds the last committed read-set of each tracked consumer.
	reads map[uint64]map[Key]struct{}

	observers  []observerSlot
	observerID uint64

	logger *slog.Logger
	strict bool
}

// New creates a store holding the given initial values. Keys are created in
// sorted order so Keys is deterministic.
func New(initial map[string]any, opts ...Option) *Store {
	s := &Store{
		tag:     storeTag,
		id:      uuid.New(),
		entries: make(map[Key]*entry),
		reads:   make(map[uint64]map[Key]struct{}),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, name := range slices.Sorted(maps.Keys(initial)) {
		// Fresh keys cannot conflict.
		_ = s.Create(name, initial[name])
	}
	return s
}

// IsStore reports whether x is a store created by New.
func IsStore(x any) bool {
	s, ok := x.(*Store)
	return ok && s != nil && s.tag == storeTag
}

var (
	defaultStore     *Store
	defaultStoreOnce sync.Once
)

// Default returns the process-wide store used by bindings that find no store
// in their context. It is created on first use.
func Default() *Store {
	defaultStoreOnce.Do(func() {
		defaultStore = New(nil)
	})
	return defaultStore
}

// ID returns the unique identifier of this store instance.
func (s *Store) ID() string {
	return s.id.String()
}

// ensure returns the entry for key, creating it with value nil when missing.
// Caller must hold s.mu.
func (s *Store) ensure(key Key) (*entry, bool) {
	if e, ok := s.entries[key]; ok {
		return e, false
	}
	e := &entry{}
	s.entries[key] = e
	s.order = append(s.order, key)
	return e, true
}

// Create declares key with an optional initial value (nil means none).
//
// Creating an existing key is a merge: it succeeds when initial is nil or
// equal to the current value, and adopts initial when the current value is
// nil. Adopting notifies subscribers and dependents the way Set does. A
// different defined initial value returns a *ReinitializationError.
func (s *Store) Create(key Key, initial any) error {
	if !ValidKey(key) {
		return &InvalidKeyError{Op: "create", Key: key}
	}

	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		if e.value != nil && initial != nil && !equal(e.value, initial) {
			existing := e.value
			s.mu.Unlock()
			return &ReinitializationError{Key: key, Existing: existing, Initial: initial}
		}
		if e.value != nil || initial == nil {
			s.mu.Unlock()
			return nil
		}
		// Adopting a value is a change for everyone that read the nil.
		e.value = initial
		subs := slices.Clone(e.subs)
		deps := slices.Clone(e.deps)
		observers := s.observerList()
		s.mu.Unlock()

		s.notify(key, initial, nil, subs, deps, observers)
		return nil
	}
	e, _ := s.ensure(key)
	e.value = initial
	observers := s.observerList()
	s.mu.Unlock()

	s.keyCreated(key, observers)
	return nil
}

// Get returns the current value of key, or nil for keys that were never
// created or are not valid keys. Get never tracks dependencies.
func (s *Store) Get(key Key) any {
	if !ValidKey(key) {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		return e.value
	}
	return nil
}

// Lookup is the strict form of Get.
func (s *Store) Lookup(key Key) (any, error) {
	if !ValidKey(key) {
		return nil, &InvalidKeyError{Op: "read", Key: key}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, &UnknownKeyError{Key: key}
	}
	return e.value, nil
}

// Has reports whether key has been created.
func (s *Store) Has(key Key) bool {
	if !ValidKey(key) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key]
	return ok
}

// Set stores value under key and synchronously notifies every explicit
// subscriber and implicit dependent of key before returning. Setting a key
// that was never created creates it.
func (s *Store) Set(key Key, value any) error {
	if !ValidKey(key) {
		return &InvalidKeyError{Op: "set", Key: key}
	}

	s.mu.Lock()
	e, created := s.ensure(key)
	old := e.value
	e.value = value
	subs := slices.Clone(e.subs)
	deps := slices.Clone(e.deps)
	observers := s.observerList()
	s.mu.Unlock()

	if created {
		s.keyCreated(key, observers)
	}
	s.notify(key, value, old, subs, deps, observers)
	return nil
}

// Update applies fn to the current value of key and stores the result.
// fn runs without the store lock held; under the single-threaded render model
// no other write can interleave between the read and the write.
func (s *Store) Update(key Key, fn func(any) any) error {
	if !ValidKey(key) {
		return &InvalidKeyError{Op: "update", Key: key}
	}
	return s.Set(key, fn(s.Get(key)))
}

// notify runs one notification sweep. A Consumer is notified at most once,
// whether it is an explicit subscriber, a dependent, or both. deps must be a
// copy owned by the sweep.
func (s *Store) notify(key Key, value, old any, subs []Subscriber, deps []Consumer, observers []Observer) {
	seen := make(map[uint64]struct{}, len(subs)+len(deps))
	notified := 0

	for _, sub := range subs {
		if h, ok := sub.(Hierarchical); ok {
			h.SweepStarted()
		}
	}
	for _, c := range deps {
		if h, ok := c.(Hierarchical); ok {
			h.SweepStarted()
		}
	}
	slices.SortStableFunc(deps, func(a, b Consumer) int {
		return cmp.Compare(depthOf(a), depthOf(b))
	})

	for _, sub := range subs {
		if c, ok := sub.(Consumer); ok {
			if _, dup := seen[c.ID()]; dup {
				continue
			}
			seen[c.ID()] = struct{}{}
		}
		sub.StoreChanged(Patch{key: value}, Patch{key: old})
		notified++
	}

	for _, c := range deps {
		if _, dup := seen[c.ID()]; dup {
			continue
		}
		seen[c.ID()] = struct{}{}
		c.Rerender(Patch{key: value})
		notified++
	}

	for _, o := range observers {
		o.ValueChanged(key, value, old, notified)
	}
}

func depthOf(c Consumer) int {
	if h, ok := c.(Hierarchical); ok {
		return h.Depth()
	}
	return 0
}

// Subscribe appends sub to the explicit subscribers of key, creating the key
// first (without overwriting any value) if needed.
func (s *Store) Subscribe(key Key, sub Subscriber) error {
	if !ValidKey(key) {
		return &InvalidKeyError{Op: "subscribe to", Key: key}
	}
	if sub == nil {
		return nil
	}

	s.mu.Lock()
	e, created := s.ensure(key)
	e.subs = append(e.subs, sub)
	observers := s.observerList()
	s.mu.Unlock()

	if created {
		s.keyCreated(key, observers)
	}
	return nil
}

// Unsubscribe removes exactly one registration of sub from key. It is a
// no-op when sub is not subscribed.
func (s *Store) Unsubscribe(key Key, sub Subscriber) error {
	if !ValidKey(key) {
		return &InvalidKeyError{Op: "unsubscribe from", Key: key}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil
	}
	for i, existing := range e.subs {
		if sameSubscriber(existing, sub) {
			e.subs = slices.Delete(e.subs, i, i+1)
			return nil
		}
	}
	return nil
}

// sameSubscriber compares subscribers by identity without panicking on
// uncomparable dynamic types.
func sameSubscriber(a, b Subscriber) bool {
	if a == nil || b == nil {
		return false
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// Release removes c from the dependents of every key, drops any explicit
// subscriptions it holds, and forgets its read-set. It is called when a
// consumer unmounts.
func (s *Store) Release(c Consumer) {
	if c == nil {
		return
	}
	id := c.ID()

	s.mu.Lock()
	for _, e := range s.entries {
		e.removeDependent(id)
		e.subs = slices.DeleteFunc(e.subs, func(sub Subscriber) bool {
			other, ok := sub.(Consumer)
			return ok && other.ID() == id
		})
	}
	delete(s.reads, id)
	s.mu.Unlock()

	s.logger.Debug("store: consumer released", "store", s.id, "consumer", id)
}

// Keys returns the data keys in creation order.
func (s *Store) Keys() []Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.order)
}

// DependentCount returns the number of implicit dependents of key.
func (s *Store) DependentCount(key Key) int {
	if !ValidKey(key) {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		return len(e.deps)
	}
	return 0
}

// SubscriberCount returns the number of explicit registrations on key.
func (s *Store) SubscriberCount(key Key) int {
	if !ValidKey(key) {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		return len(e.subs)
	}
	return 0
}

// Snapshot returns a copy of the values of all string keys.
func (s *Store) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]any, len(s.entries))
	for k, e := range s.entries {
		if name, ok := k.(string); ok {
			out[name] = e.value
		}
	}
	return out
}

func (s *Store) keyCreated(key Key, observers []Observer) {
	s.logger.Debug("store: key created", "store", s.id, "key", KeyString(key))
	for _, o := range observers {
		o.KeyCreated(key)
	}
}
