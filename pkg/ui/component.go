package ui

// Component is anything that can render to a Node.
//
// Implementations must be comparable (pointer types): the runtime reuses a
// mounted instance when the same component renders at the same position.
type Component interface {
	Name() string
	Render(ctx *Ctx) (*Node, error)
}

// RenderFunc is the render body of a component defined with Define.
type RenderFunc func(ctx *Ctx) (*Node, error)

// Def is a component built from a render function.
type Def struct {
	name   string
	render RenderFunc

	// Statics are component-level values (defaults, metadata) that wrappers
	// copy over so a wrapped component still exposes them.
	Statics map[string]any
}

// Define creates a named component.
func Define(name string, render RenderFunc) *Def {
	return &Def{name: name, render: render}
}

// Name implements Component.
func (d *Def) Name() string {
	return d.name
}

// Render implements Component.
func (d *Def) Render(ctx *Ctx) (*Node, error) {
	return d.render(ctx)
}

// Static returns a static value of c, if c is a *Def.
func Static(c Component, key string) (any, bool) {
	d, ok := c.(*Def)
	if !ok || d.Statics == nil {
		return nil, false
	}
	v, ok := d.Statics[key]
	return v, ok
}

// CopyStatics copies the statics of src onto dst when both are *Def values.
func CopyStatics(dst, src Component) {
	from, ok := src.(*Def)
	if !ok || len(from.Statics) == 0 {
		return
	}
	to, ok := dst.(*Def)
	if !ok {
		return
	}
	if to.Statics == nil {
		to.Statics = make(map[string]any, len(from.Statics))
	}
	for k, v := range from.Statics {
		to.Statics[k] = v
	}
}
