package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
)

// maxRenderPasses bounds the re-renders triggered by SetState calls made
// while the same instance is rendering.
const maxRenderPasses = 100

// ErrRenderLoop is returned when a component keeps updating its own state
// during render.
var ErrRenderLoop = errors.New("ui: component updated its state during every render")

// RenderError wraps an error returned by a component's render function.
type RenderError struct {
	Component string
	Err       error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("ui: render %s: %v", e.Component, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Tree is a mounted component hierarchy.
type Tree struct {
	owner   *Owner
	root    *Instance
	logger  *slog.Logger
	onError func(*Instance, error)
}

// Option configures a Tree.
type Option func(*Tree)

// WithLogger sets the tree's logger.
// Default: slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tree) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithErrorHandler sets the handler for errors raised by re-renders that
// have no caller to return to (SetState). Default: log at error level.
func WithErrorHandler(fn func(inst *Instance, err error)) Option {
	return func(t *Tree) {
		t.onError = fn
	}
}

// WithValue provides a context value to the whole tree.
func WithValue(key, value any) Option {
	return func(t *Tree) {
		t.owner.SetValue(key, value)
	}
}

// Mount renders root with props and runs the mount hooks of the whole tree.
// If the first render fails, everything created is unmounted and the error
// is returned.
func Mount(root Component, props Props, opts ...Option) (*Tree, error) {
	t := &Tree{
		owner:  NewOwner(nil),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.onError == nil {
		t.onError = func(inst *Instance, err error) {
			t.logger.Error("ui: render failed", "component", inst.Name(), "instance", inst.ID(), "error", err)
		}
	}

	t.root = t.newInstance(root, props, nil, nil)
	if err := t.render(t.root); err != nil {
		t.dispose(t.root)
		t.owner.Dispose()
		return nil, err
	}
	t.root.runMountHooks()
	return t, nil
}

// Stamp returns a marker ordered after every render already started, in any
// tree. Compare it with Instance.RenderedAfter.
func Stamp() uint64 {
	return nextID()
}

// Root returns the root instance.
func (t *Tree) Root() *Instance {
	return t.root
}

// Output returns the rendered output of the root.
func (t *Tree) Output() *Node {
	if t.root == nil {
		return nil
	}
	return t.root.output
}

// SetProps re-renders the root with new props.
func (t *Tree) SetProps(props Props) error {
	if t.root == nil || t.root.disposed {
		return nil
	}
	t.root.props = props.Clone()
	return t.render(t.root)
}

// Unmount disposes every instance, running unmount hooks children first.
func (t *Tree) Unmount() {
	if t.root == nil {
		return
	}
	t.dispose(t.root)
	t.owner.Dispose()
	t.root = nil
}

// Find returns the mounted instances of the named component in render order.
func (t *Tree) Find(name string) []*Instance {
	var out []*Instance
	var walk func(*Instance)
	walk = func(i *Instance) {
		if i.Name() == name {
			out = append(out, i)
		}
		for _, k := range i.kids {
			walk(k)
		}
	}
	if t.root != nil {
		walk(t.root)
	}
	return out
}

func (t *Tree) fail(inst *Instance, err error) {
	t.onError(inst, err)
}

// render renders inst, looping while it updated its own state mid-render.
func (t *Tree) render(inst *Instance) error {
	if inst.rendering {
		inst.pending = true
		return nil
	}
	inst.rendering = true
	defer func() { inst.rendering = false }()

	for pass := 0; pass < maxRenderPasses; pass++ {
		inst.pending = false
		if err := t.renderOnce(inst); err != nil {
			return err
		}
		if !inst.pending || inst.disposed {
			return nil
		}
	}
	return &RenderError{Component: inst.Name(), Err: ErrRenderLoop}
}

func (t *Tree) renderOnce(inst *Instance) error {
	ctx := &Ctx{inst: inst, first: inst.renders == 0}
	inst.renders++
	inst.stamp = nextID()

	node, err := inst.comp.Render(ctx)
	if err != nil {
		return &RenderError{Component: inst.Name(), Err: err}
	}

	old := inst.kids
	var kids, created []*Instance
	out, err := t.resolve(inst, node, old, &kids, &created)
	if err != nil {
		for _, c := range created {
			t.dispose(c)
		}
		return err
	}

	for _, k := range old {
		if !containsInstance(kids, k) {
			t.dispose(k)
		}
	}
	inst.kids = kids
	inst.output = out

	for _, c := range created {
		c.runMountHooks()
	}
	return nil
}

// resolve copies node, mounting or re-rendering the components it contains.
// Components are matched to existing instances by position and identity.
func (t *Tree) resolve(parent *Instance, node *Node, old []*Instance, kids, created *[]*Instance) (*Node, error) {
	if node == nil {
		return nil, nil
	}

	switch node.Kind {
	case KindComponent:
		idx := len(*kids)
		if idx < len(old) && sameComponent(old[idx].comp, node.Comp) {
			child := old[idx]
			child.props = node.Props.Clone()
			child.passed = node.Children
			if err := t.render(child); err != nil {
				return nil, err
			}
			*kids = append(*kids, child)
			return &Node{Kind: KindComponent, Comp: node.Comp, Props: child.props, inst: child}, nil
		}

		child := t.newInstance(node.Comp, node.Props, node.Children, parent)
		if err := t.render(child); err != nil {
			t.dispose(child)
			return nil, err
		}
		*kids = append(*kids, child)
		*created = append(*created, child)
		return &Node{Kind: KindComponent, Comp: node.Comp, Props: child.props, inst: child}, nil

	case KindText:
		return node, nil

	default:
		out := &Node{Kind: node.Kind, Tag: node.Tag, Props: node.Props}
		for _, ch := range node.Children {
			r, err := t.resolve(parent, ch, old, kids, created)
			if err != nil {
				return nil, err
			}
			if r != nil {
				out.Children = append(out.Children, r)
			}
		}
		return out, nil
	}
}

// dispose unmounts inst and its subtree. Owner cleanups (OnUnmount hooks)
// of children run before the parent's.
func (t *Tree) dispose(inst *Instance) {
	if inst.disposed {
		return
	}
	for i := len(inst.kids) - 1; i >= 0; i-- {
		t.dispose(inst.kids[i])
	}
	inst.kids = nil
	inst.disposed = true
	inst.owner.Dispose()
	inst.output = nil
	t.logger.Debug("ui: unmounted", "component", inst.Name(), "instance", inst.id)
}

func sameComponent(a, b Component) bool {
	if a == nil || b == nil {
		return false
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

func containsInstance(list []*Instance, inst *Instance) bool {
	for _, i := range list {
		if i == inst {
			return true
		}
	}
	return false
}
