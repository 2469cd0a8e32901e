package ui

import "log/slog"

// Instance is a mounted component with its props, local state and
// ownership scope.
type Instance struct {
	id     uint64
	comp   Component
	props  Props
	passed []*Node
	state  Props
	slots  map[any]any

	owner  *Owner
	parent *Instance
	kids   []*Instance
	tree   *Tree

	output *Node

	onMount   []func()
	renders   int
	stamp     uint64
	rendering bool
	pending   bool
	mounted   bool
	disposed  bool
}

func (t *Tree) newInstance(c Component, props Props, passed []*Node, parent *Instance) *Instance {
	parentOwner := t.owner
	if parent != nil {
		parentOwner = parent.owner
	}
	return &Instance{
		id:     nextID(),
		comp:   c,
		props:  props.Clone(),
		passed: passed,
		state:  make(Props),
		owner:  NewOwner(parentOwner),
		parent: parent,
		tree:   t,
	}
}

// ID returns the unique instance identifier.
func (i *Instance) ID() uint64 {
	return i.id
}

// Name returns the component name.
func (i *Instance) Name() string {
	return i.comp.Name()
}

// Props returns the props of the last render.
func (i *Instance) Props() Props {
	return i.props
}

// State returns the local state.
func (i *Instance) State() Props {
	return i.state
}

// Output returns the last rendered node.
func (i *Instance) Output() *Node {
	return i.output
}

// RenderCount returns how many times the component has rendered.
func (i *Instance) RenderCount() int {
	return i.renders
}

// Depth returns the number of ancestors of the instance; the root is 0.
func (i *Instance) Depth() int {
	d := 0
	for p := i.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// RenderedAfter reports whether a render of the instance started after
// stamp was taken with Stamp.
func (i *Instance) RenderedAfter(stamp uint64) bool {
	return i.stamp > stamp
}

// Mounted reports whether the instance finished its first render and has not
// been unmounted.
func (i *Instance) Mounted() bool {
	return i.mounted && !i.disposed
}

// SetState merges patch into the local state and re-renders the instance
// synchronously. Render errors go to the tree's error handler. Calls on an
// unmounted instance are ignored.
func (i *Instance) SetState(patch Props) {
	if i.disposed {
		return
	}
	for k, v := range patch {
		i.state[k] = v
	}
	if err := i.tree.render(i); err != nil {
		i.tree.fail(i, err)
	}
}

func (i *Instance) runMountHooks() {
	i.mounted = true
	hooks := i.onMount
	i.onMount = nil
	for _, fn := range hooks {
		fn()
	}
	i.tree.logger.Debug("ui: mounted", "component", i.Name(), "instance", i.id)
}

// Ctx is the render context handed to Component.Render.
type Ctx struct {
	inst  *Instance
	first bool
	props Props // overrides inst.props when set (see WithProps)
}

// Instance returns the instance being rendered.
func (c *Ctx) Instance() *Instance {
	return c.inst
}

// Props returns the props passed by the parent.
func (c *Ctx) Props() Props {
	if c.props != nil {
		return c.props
	}
	return c.inst.props
}

// Prop returns a single prop.
func (c *Ctx) Prop(name string) any {
	return c.Props()[name]
}

// WithProps returns a context for the same instance that reports props
// instead of the parent's. Wrappers use it to render an inner component as
// part of their own render.
func (c *Ctx) WithProps(props Props) *Ctx {
	if props == nil {
		props = Props{}
	}
	return &Ctx{inst: c.inst, first: c.first, props: props}
}

// Children returns the child nodes passed by the parent.
func (c *Ctx) Children() []*Node {
	return c.inst.passed
}

// State returns the local state.
func (c *Ctx) State() Props {
	return c.inst.state
}

// FirstRender reports whether this is the instance's first render.
func (c *Ctx) FirstRender() bool {
	return c.first
}

// Context returns the value provided for key by this component or its
// nearest ancestor, or nil.
func (c *Ctx) Context(key any) any {
	return c.inst.owner.GetValue(key)
}

// Provide makes value available to this component's subtree under key.
func (c *Ctx) Provide(key, value any) {
	c.inst.owner.SetValue(key, value)
}

// OnMount registers fn to run after the first render of the instance and
// its subtree. Only honored during the first render.
func (c *Ctx) OnMount(fn func()) {
	if c.first {
		c.inst.onMount = append(c.inst.onMount, fn)
	}
}

// OnUnmount registers fn to run when the instance is unmounted. Only honored
// during the first render.
func (c *Ctx) OnUnmount(fn func()) {
	if c.first {
		c.inst.owner.OnCleanup(fn)
	}
}

// Slot returns per-instance storage for key, calling init on first access.
func (c *Ctx) Slot(key any, init func() any) any {
	if c.inst.slots == nil {
		c.inst.slots = make(map[any]any)
	}
	if v, ok := c.inst.slots[key]; ok {
		return v
	}
	v := init()
	c.inst.slots[key] = v
	return v
}

// Logger returns the tree's logger.
func (c *Ctx) Logger() *slog.Logger {
	return c.inst.tree.logger
}
