// Package bind attaches ui components to a store.
//
// A binding declares which store keys a component reads, which it may write
// (each writable key gets a generated setter prop, "count" -> "setCount"),
// and an optional factory of action props. The bound component re-renders
// whenever a key it read changes.
//
// Two strategies are available and behave the same from the outside:
//
//   - WithState resolves the store from the ui context (see Connect) or falls
//     back to store.Default(). Dependencies are discovered while rendering:
//     every key read through the injected "store" prop or a readable prop is
//     tracked, and keys no longer read are dropped.
//   - WithStore binds to a given store and explicitly subscribes to every
//     readable key for the lifetime of the component.
//
// # Usage
//
//	s := store.New(map[string]any{"count": 0})
//
//	Counter := ui.Define("Counter", func(ctx *ui.Ctx) (*ui.Node, error) {
//	    inc := ctx.Prop("setCount").(bind.Setter)
//	    return ui.El("button", ui.Props{"onclick": func() {
//	        inc(func(v any) any { return v.(int) + 1 })
//	    }}, ui.Textf("%d", ctx.Prop("count"))), nil
//	})
//
//	App, _ := bind.Connect(bind.MustWithState("count")(Counter), s)
//	tree, err := ui.Mount(App, nil)
//
// Names injected by a binding must not also be passed by the parent; such a
// render fails with a *NamingConflictError before the component body runs.
package bind
