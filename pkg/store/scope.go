package store

// Scope is a read-tracking view of a store, open for the duration of one
// consumer render. Every Get made through an open scope records the key in
// the scope's read-set; when the render finishes the read-set replaces the
// consumer's previous dependencies.
//
// A scope passed to a component may outlive the render (for example when it
// is captured by an event handler). Once closed it behaves like the store
// itself and tracks nothing.
type Scope struct {
	store    *Store
	consumer Consumer
	seen     map[Key]struct{}
	err      error
	closed   bool
}

// Track opens a scope for c, runs render, and closes the scope on every exit
// path, including panics.
//
// After a successful render, c depends on exactly the keys read during it:
// keys read for the first time gain c as a dependent and keys no longer read
// drop it. After a failed render the new reads are added and nothing is
// dropped.
func (s *Store) Track(c Consumer, render func(*Scope) error) (err error) {
	sc := &Scope{
		store:    s,
		consumer: c,
		seen:     make(map[Key]struct{}),
	}

	ok := false
	defer func() {
		s.commit(sc, ok)
	}()

	err = render(sc)
	if err == nil {
		err = sc.err
	}
	ok = err == nil
	return err
}

// commit closes sc and reconciles its read-set with the consumer's previous one.
func (s *Store) commit(sc *Scope, replace bool) {
	sc.closed = true
	if sc.consumer == nil {
		return
	}
	id := sc.consumer.ID()

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.reads[id]
	for key := range sc.seen {
		if e, ok := s.entries[key]; ok {
			e.addDependent(sc.consumer)
		}
	}

	if replace {
		for key := range prev {
			if _, still := sc.seen[key]; still {
				continue
			}
			if e, ok := s.entries[key]; ok {
				e.removeDependent(id)
			}
		}
		s.reads[id] = sc.seen
		return
	}

	merged := make(map[Key]struct{}, len(prev)+len(sc.seen))
	for key := range prev {
		merged[key] = struct{}{}
	}
	for key := range sc.seen {
		merged[key] = struct{}{}
	}
	s.reads[id] = merged
}

// Get returns the value of key and, while the scope is open, records key as
// a dependency of the scope's consumer. A key that does not exist yet is
// created with its current raw value (nil) so the dependency can be stored.
// In strict mode the read fails instead and Track returns the error.
func (sc *Scope) Get(key Key) any {
	if !ValidKey(key) {
		return nil
	}
	if sc.closed {
		return sc.store.Get(key)
	}

	s := sc.store
	s.mu.Lock()
	e, exists := s.entries[key]
	if !exists && s.strict {
		s.mu.Unlock()
		if sc.err == nil {
			sc.err = &UnknownKeyError{Key: key}
		}
		return nil
	}
	created := false
	if !exists {
		e, created = s.ensure(key)
	}
	value := e.value
	observers := s.observerList()
	s.mu.Unlock()

	if created {
		s.keyCreated(key, observers)
	}
	sc.seen[key] = struct{}{}
	return value
}

// Lookup is the strict form of Get. A successful lookup is tracked.
func (sc *Scope) Lookup(key Key) (any, error) {
	v, err := sc.store.Lookup(key)
	if err != nil {
		return nil, err
	}
	if !sc.closed {
		sc.seen[key] = struct{}{}
	}
	return v, nil
}

// Set writes through to the store. Writes are never tracked.
func (sc *Scope) Set(key Key, value any) error {
	return sc.store.Set(key, value)
}

// Update writes through to the store. Writes are never tracked.
func (sc *Scope) Update(key Key, fn func(any) any) error {
	return sc.store.Update(key, fn)
}
