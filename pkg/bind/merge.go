package bind

import (
	"github.com/vango-dev/bindstore/pkg/store"
	"github.com/vango-dev/bindstore/pkg/ui"
)

// Layers are the prop sources of a bound render, lowest precedence first.
type Layers struct {
	// Base holds the component's "defaultProps" static, if any.
	Base     ui.Props
	Readable ui.Props
	Writable ui.Props
	Actions  ui.Props
	// Parent wins over every layer above.
	Parent ui.Props
	// Store is always set under StoreProp, last.
	Store store.View
}

// MergeProps merges the layers in order: Base, Readable, Writable, Actions,
// Parent, then the store prop. Declared names never reach the Parent layer
// because CheckConflicts rejects them first; Parent only wins for undeclared
// names (such as a Base default).
func MergeProps(l Layers) ui.Props {
	out := make(ui.Props, len(l.Base)+len(l.Readable)+len(l.Writable)+len(l.Actions)+len(l.Parent)+1)
	for _, layer := range []ui.Props{l.Base, l.Readable, l.Writable, l.Actions, l.Parent} {
		for k, v := range layer {
			out[k] = v
		}
	}
	if l.Store != nil {
		out[StoreProp] = l.Store
	}
	return out
}
