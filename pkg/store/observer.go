package store

// Observer receives store-wide events after they happen. Observers run
// synchronously on the writing goroutine and must not block.
type Observer interface {
	// KeyCreated is called once per key, when it is first created.
	KeyCreated(key Key)

	// ValueChanged is called after the notification sweep of a Set.
	// notified is the number of subscribers and consumers that were called.
	ValueChanged(key Key, next, prev any, notified int)
}

type observerSlot struct {
	id uint64
	o  Observer
}

// AddObserver registers o and returns a function that removes it.
func (s *Store) AddObserver(o Observer) (remove func()) {
	s.mu.Lock()
	s.observerID++
	id := s.observerID
	s.observers = append(s.observers, observerSlot{id: id, o: o})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, slot := range s.observers {
			if slot.id == id {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// observerList copies the registered observers. Caller must hold s.mu.
func (s *Store) observerList() []Observer {
	if len(s.observers) == 0 {
		return nil
	}
	out := make([]Observer, len(s.observers))
	for i, slot := range s.observers {
		out[i] = slot.o
	}
	return out
}
