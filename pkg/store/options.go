package store

import "log/slog"

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for debug output.
// Default: slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStrictKeys makes tracked reads of never-created keys fail with an
// *UnknownKeyError instead of creating the key.
func WithStrictKeys() Option {
	return func(s *Store) {
		s.strict = true
	}
}

// WithObserver registers an observer at construction time, so it also sees
// the creation of the initial keys.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		s.observerID++
		s.observers = append(s.observers, observerSlot{id: s.observerID, o: o})
	}
}
