package store

import (
	"fmt"
	"reflect"
)

// Key identifies a store slot. Valid keys are strings and *Symbol values.
type Key = any

// Symbol is an identity key: two symbols are equal only if they are the same
// pointer, whatever their descriptions.
type Symbol struct {
	desc string
}

// NewSymbol creates a new identity key with a description used in logs.
func NewSymbol(description string) *Symbol {
	return &Symbol{desc: description}
}

// String returns a human-readable form of the symbol.
func (s *Symbol) String() string {
	return "Symbol(" + s.desc + ")"
}

// ValidKey reports whether k can be used as a store key.
func ValidKey(k Key) bool {
	switch v := k.(type) {
	case string:
		return true
	case *Symbol:
		return v != nil
	default:
		return false
	}
}

// KeyString renders a key for logs and error messages.
func KeyString(k Key) string {
	switch v := k.(type) {
	case string:
		return v
	case *Symbol:
		if v == nil {
			return "<nil symbol>"
		}
		return v.String()
	default:
		return fmt.Sprintf("%v", k)
	}
}

// Patch is a key to value snapshot delivered with change notifications.
// Receivers must treat it as read-only.
type Patch map[Key]any

// equal compares two stored values. Reference kinds compare by identity,
// everything else structurally.
func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	switch ta.Kind() {
	case reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	case reflect.Func:
		return false
	}
	return reflect.DeepEqual(a, b)
}
