package store

import (
	"errors"
	"fmt"

	reports "github.com/vango-dev/bindstore/internal/errors"
)

var (
	// ErrInvalidKey is matched by InvalidKeyError.
	ErrInvalidKey = errors.New("store: invalid key")

	// ErrKeyReinitialization is matched by ReinitializationError.
	ErrKeyReinitialization = errors.New("store: key reinitialization")

	// ErrUnknownKey is matched by UnknownKeyError.
	ErrUnknownKey = errors.New("store: unknown key")
)

// InvalidKeyError is returned when an operation receives a key that is
// neither a string nor a *Symbol.
type InvalidKeyError struct {
	Op  string
	Key any
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("store: cannot %s a key of type %T: expecting string or *store.Symbol", e.Op, e.Key)
}

// Is reports whether target is ErrInvalidKey.
func (e *InvalidKeyError) Is(target error) bool {
	return target == ErrInvalidKey
}

// Report describes the error for terminal output.
func (e *InvalidKeyError) Report() *reports.Report {
	return reports.New("S001").WithDetail(fmt.Sprintf("%s received a key of type %T.", e.Op, e.Key))
}

// ReinitializationError is returned by Create when the key already holds a
// defined value and a different defined initial value was supplied.
type ReinitializationError struct {
	Key      Key
	Existing any
	Initial  any
}

func (e *ReinitializationError) Error() string {
	return fmt.Sprintf("store: refusing to override existing value %v with initialization data %v for key %q",
		e.Existing, e.Initial, KeyString(e.Key))
}

// Is reports whether target is ErrKeyReinitialization.
func (e *ReinitializationError) Is(target error) bool {
	return target == ErrKeyReinitialization
}

// Report describes the error for terminal output.
func (e *ReinitializationError) Report() *reports.Report {
	return reports.New("S002").WithDetail(fmt.Sprintf("Key %q already holds %v; initial value %v was supplied.",
		KeyString(e.Key), e.Existing, e.Initial))
}

// UnknownKeyError is returned by strict reads of keys that were never created.
type UnknownKeyError struct {
	Key Key
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("store: unknown key %q", KeyString(e.Key))
}

// Is reports whether target is ErrUnknownKey.
func (e *UnknownKeyError) Is(target error) bool {
	return target == ErrUnknownKey
}

// Report describes the error for terminal output.
func (e *UnknownKeyError) Report() *reports.Report {
	return reports.New("S003").WithDetail(fmt.Sprintf("Key %q was read before it was created.", KeyString(e.Key)))
}
