// Package ui is a minimal synchronous component runtime.
//
// It provides the host capabilities a store binding needs:
//
//   - Components render to Node trees and may contain child components.
//   - Each mounted component is an Instance with its own props, local state
//     (SetState merges a patch and re-renders the instance synchronously),
//     and mount/unmount hooks.
//   - Values provided by a component are visible to its whole subtree through
//     an Owner hierarchy, without passing them as props.
//
// # Usage
//
//	Counter := ui.Define("Counter", func(ctx *ui.Ctx) (*ui.Node, error) {
//	    n, _ := ctx.State()["n"].(int)
//	    return ui.El("span", nil, ui.Textf("%d", n)), nil
//	})
//
//	tree, err := ui.Mount(Counter, nil)
//	tree.Root().SetState(ui.Props{"n": 1})
//	ui.WriteText(os.Stdout, tree.Output())
//
// Rendering is single-threaded: a tree must only be used from one goroutine.
package ui
