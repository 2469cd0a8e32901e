// Package declare normalizes the shorthand accepted by the binding
// constructors into a Declaration.
package declare

import (
	"fmt"
	"slices"
	"strings"

	reports "github.com/vango-dev/bindstore/internal/errors"
	"github.com/vango-dev/bindstore/internal/naming"
	"github.com/vango-dev/bindstore/pkg/store"
	"github.com/vango-dev/bindstore/pkg/ui"
)

// StoreProp is the prop name reserved for the store view.
const StoreProp = "store"

// ActionsFactory builds the action props of a bound component. It runs once
// per render with the store view of that render and the parent props.
type ActionsFactory func(v store.View, parent ui.Props) map[string]any

// Declaration describes how a component attaches to a store.
type Declaration struct {
	// Readable keys are injected as props holding the current value.
	Readable []string
	// Writable keys get a generated setter prop (see naming.SetterName).
	Writable []string
	// Actions is optional.
	Actions ActionsFactory
}

// Setters returns the setter prop names of the writable keys, in order.
func (d Declaration) Setters() []string {
	out := make([]string, len(d.Writable))
	for i, k := range d.Writable {
		out[i] = naming.SetterName(k)
	}
	return out
}

// Overlaps returns, sorted and without duplicates, the names that are
// already injected as a readable key, a setter or StoreProp.
func (d Declaration) Overlaps(names []string) []string {
	taken := map[string]struct{}{StoreProp: {}}
	for _, k := range d.Readable {
		taken[k] = struct{}{}
	}
	for _, s := range d.Setters() {
		taken[s] = struct{}{}
	}
	var out []string
	for _, n := range names {
		if _, ok := taken[n]; ok && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out
}

// InvalidError is returned for arguments Parse cannot interpret.
type InvalidError struct {
	Reason string
}

func (e *InvalidError) Error() string {
	return "declare: invalid binding declaration: " + e.Reason
}

// Report describes the error for terminal output.
func (e *InvalidError) Report() *reports.Report {
	return reports.New("B002").WithSuggestion(e.Reason)
}

// CollisionError wraps a setter name collision between writable keys.
type CollisionError struct {
	*naming.CollisionError
}

func (e CollisionError) Unwrap() error {
	return e.CollisionError
}

// Report describes the error for terminal output.
func (e CollisionError) Report() *reports.Report {
	return reports.New("B003").WithDetail(e.Error())
}

// ShadowError is returned when two props injected by the same binding share
// a name, so one would replace the other.
type ShadowError struct {
	Names []string
}

func (e *ShadowError) Error() string {
	return "declare: injected props share names: " + strings.Join(e.Names, ", ")
}

// Report describes the error for terminal output.
func (e *ShadowError) Report() *reports.Report {
	return reports.New("B004").WithDetail(strings.Join(e.Names, ", "))
}

// Parse accepts:
//
//	"a", "b"                      read-write keys a and b
//	"a", "b", factory             the same, with actions
//	[]string{"a"}                 read-only key a
//	[]string{"a"}, []string{"b"}  read-only a, writable b
//	[]string{"a"}, nil, factory   read-only a, with actions
//	(nothing)                     empty declaration
//
// factory is an ActionsFactory or a func with the same signature.
func Parse(args []any) (Declaration, error) {
	var d Declaration

	if n := len(args); n > 0 {
		if f, ok := asFactory(args[n-1]); ok {
			d.Actions = f
			args = args[:n-1]
		}
	}
	if len(args) == 0 {
		return d, nil
	}

	switch args[0].(type) {
	case string:
		names := make([]string, 0, len(args))
		for i, a := range args {
			s, ok := a.(string)
			if !ok {
				return Declaration{}, &InvalidError{Reason: fmt.Sprintf("argument %d is %T, expected string like the first one", i, a)}
			}
			names = append(names, s)
		}
		d.Readable = names
		d.Writable = names

	case []string, nil:
		if len(args) > 2 {
			return Declaration{}, &InvalidError{Reason: fmt.Sprintf("expected at most two name lists, got %d", len(args))}
		}
		lists := make([][]string, 2)
		for i, a := range args {
			switch v := a.(type) {
			case []string:
				lists[i] = v
			case nil:
			default:
				return Declaration{}, &InvalidError{Reason: fmt.Sprintf("argument %d is %T, expected []string", i, a)}
			}
		}
		d.Readable = lists[0]
		d.Writable = lists[1]

	default:
		return Declaration{}, &InvalidError{Reason: fmt.Sprintf("unsupported argument of type %T", args[0])}
	}

	var err error
	if d.Readable, err = normalize(d.Readable); err != nil {
		return Declaration{}, err
	}
	if d.Writable, err = normalize(d.Writable); err != nil {
		return Declaration{}, err
	}
	if err := naming.CheckCollisions(d.Writable); err != nil {
		return Declaration{}, CollisionError{err.(*naming.CollisionError)}
	}
	if names := shadowed(d); len(names) > 0 {
		return Declaration{}, &ShadowError{Names: names}
	}
	return d, nil
}

// shadowed returns readable keys that coincide with a setter name or
// StoreProp.
func shadowed(d Declaration) []string {
	reserved := append([]string{StoreProp}, d.Setters()...)
	var out []string
	for _, k := range d.Readable {
		if slices.Contains(reserved, k) && !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

func asFactory(a any) (ActionsFactory, bool) {
	switch f := a.(type) {
	case ActionsFactory:
		return f, f != nil
	case func(store.View, ui.Props) map[string]any:
		return f, f != nil
	default:
		return nil, false
	}
}

// normalize drops duplicates, keeping first occurrences, and rejects empty names.
func normalize(names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			return nil, &InvalidError{Reason: "key names must not be empty"}
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out, nil
}
