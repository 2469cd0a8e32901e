package bind

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vango-dev/bindstore/internal/declare"
	reports "github.com/vango-dev/bindstore/internal/errors"
	"github.com/vango-dev/bindstore/internal/naming"
	"github.com/vango-dev/bindstore/pkg/ui"
)

// StoreProp is the prop through which a bound component receives the store.
const StoreProp = declare.StoreProp

// ShadowError is returned when action names coincide with other props the
// same binding injects.
type ShadowError = declare.ShadowError

// ErrNamingConflict is matched by NamingConflictError.
var ErrNamingConflict = errors.New("bind: naming conflict")

// NamingConflictError is returned when props injected by a binding are also
// supplied by the parent.
type NamingConflictError struct {
	Component string
	Names     []string
}

func (e *NamingConflictError) Error() string {
	return fmt.Sprintf("bind: refusing to overwrite store props of %s with parent-injected props: "+
		"the name(s) %s exist in the store binding and are passed down from the parent component",
		e.Component, strings.Join(e.Names, ", "))
}

// Is reports whether target is ErrNamingConflict.
func (e *NamingConflictError) Is(target error) bool {
	return target == ErrNamingConflict
}

// Report describes the error for terminal output.
func (e *NamingConflictError) Report() *reports.Report {
	return reports.New("B001").WithDetail(fmt.Sprintf("%s: %s", e.Component, strings.Join(e.Names, ", ")))
}

// InjectedNames returns every prop name a binding injects: readable keys,
// setter names of writable keys, action names and the store prop.
func InjectedNames(decl Declaration, actionNames []string) []string {
	names := make([]string, 0, len(decl.Readable)+len(decl.Writable)+len(actionNames)+1)
	names = append(names, decl.Readable...)
	for _, k := range decl.Writable {
		names = append(names, naming.SetterName(k))
	}
	names = append(names, actionNames...)
	names = append(names, StoreProp)
	return names
}

// CheckConflicts returns a *NamingConflictError listing, sorted, every
// injected name that is also present in parent. It must run on every render
// since parent props change between renders.
func CheckConflicts(component string, decl Declaration, actionNames []string, parent ui.Props) error {
	if len(parent) == 0 {
		return nil
	}
	seen := make(map[string]struct{})
	var conflicts []string
	for _, name := range InjectedNames(decl, actionNames) {
		if _, ok := parent[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		conflicts = append(conflicts, name)
	}
	if len(conflicts) == 0 {
		return nil
	}
	sort.Strings(conflicts)
	return &NamingConflictError{Component: component, Names: conflicts}
}
