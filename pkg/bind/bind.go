package bind

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/bindstore/internal/declare"
	"github.com/vango-dev/bindstore/pkg/store"
	"github.com/vango-dev/bindstore/pkg/ui"
)

// tracerName is the instrumentation scope of bound render spans.
const tracerName = "github.com/vango-dev/bindstore/pkg/bind"

// DefaultPropsStatic is the component static merged below every other prop.
const DefaultPropsStatic = "defaultProps"

// Declaration describes how a component attaches to a store.
type Declaration = declare.Declaration

// ActionsFactory builds action props from the store and the parent props.
type ActionsFactory = declare.ActionsFactory

// Binder wraps a component into a bound component.
type Binder func(ui.Component) ui.Component

// Setter is the type of generated setter props. Passing a one-argument,
// one-result function such as func(any) any or func(int) int applies it to
// the current value (functional update); any other non-function value is
// stored as is. Other function shapes panic, since a setter cannot tell them
// apart from updates.
type Setter func(value any)

// storeKey is the ui context key under which Connect provides the store.
var storeKey = &struct{ name string }{"bindstore.Store"}

// StoreFrom returns the store provided to ctx's subtree, or store.Default().
func StoreFrom(ctx *ui.Ctx) *store.Store {
	if s, ok := ctx.Context(storeKey).(*store.Store); ok && store.IsStore(s) {
		return s
	}
	return store.Default()
}

// WithState returns a Binder using implicit dependency tracking against the
// store found in the ui context. args follow the declaration shorthand: names
// (read-write), or a readable list and a writable list, each optionally
// followed by an ActionsFactory.
func WithState(args ...any) (Binder, error) {
	decl, err := declare.Parse(args)
	if err != nil {
		return nil, err
	}
	return func(target ui.Component) ui.Component {
		return bound(decl, target, nil)
	}, nil
}

// MustWithState is like WithState but panics on an invalid declaration.
func MustWithState(args ...any) Binder {
	b, err := WithState(args...)
	if err != nil {
		panic(err)
	}
	return b
}

// WithStore returns a Binder attached to s that explicitly subscribes the
// component to every readable key while it is mounted.
func WithStore(s *store.Store, args ...any) (Binder, error) {
	if !store.IsStore(s) {
		return nil, fmt.Errorf("bind: WithStore requires a store created by store.New, got %T", s)
	}
	decl, err := declare.Parse(args)
	if err != nil {
		return nil, err
	}
	return func(target ui.Component) ui.Component {
		return bound(decl, target, s)
	}, nil
}

// MustWithStore is like WithStore but panics on an invalid declaration.
func MustWithStore(s *store.Store, args ...any) Binder {
	b, err := WithStore(s, args...)
	if err != nil {
		panic(err)
	}
	return b
}

// Connect wraps c so that a store is available to its whole subtree.
// storeOrValues is a *store.Store, a map[string]any of initial values for a
// fresh store, or nil for an empty store.
func Connect(c ui.Component, storeOrValues any) (ui.Component, error) {
	var s *store.Store
	switch v := storeOrValues.(type) {
	case nil:
		s = store.New(nil)
	case *store.Store:
		if !store.IsStore(v) {
			return nil, fmt.Errorf("bind: Connect requires a store created by store.New")
		}
		s = v
	case map[string]any:
		s = store.New(v)
	default:
		return nil, fmt.Errorf("bind: Connect expects a *store.Store or map[string]any, got %T", storeOrValues)
	}

	def := ui.Define(c.Name(), func(ctx *ui.Ctx) (*ui.Node, error) {
		ctx.Provide(storeKey, s)
		return ui.C(c, ctx.Props(), ctx.Children()...), nil
	})
	ui.CopyStatics(def, c)
	return def, nil
}

// bound builds the wrapper component. A nil explicit store selects the
// implicit strategy.
func bound(decl Declaration, target ui.Component, explicit *store.Store) ui.Component {
	name := target.Name()
	def := ui.Define(name, func(ctx *ui.Ctx) (*ui.Node, error) {
		c := consumerFor(ctx)

		s := explicit
		if s == nil {
			s = StoreFrom(ctx)
		}
		c.use(s)
		if ctx.FirstRender() {
			ctx.OnUnmount(func() { c.release() })
			if explicit != nil {
				for _, k := range decl.Readable {
					if err := s.Subscribe(k, c); err != nil {
						return nil, err
					}
				}
				c.unsubscribe = func() {
					for _, k := range decl.Readable {
						_ = s.Unsubscribe(k, c)
					}
				}
			}
		}

		_, span := otel.Tracer(tracerName).Start(context.Background(), "bindstore.render",
			trace.WithAttributes(
				attribute.String("bindstore.component", name),
				attribute.String("bindstore.store", s.ID()),
				attribute.Bool("bindstore.explicit", explicit != nil),
			))
		defer span.End()

		var out *ui.Node
		render := func(view store.View) error {
			var err error
			out, err = renderBound(ctx, decl, target, s, view)
			return err
		}

		var err error
		if explicit != nil {
			err = render(s)
		} else {
			err = s.Track(c, func(sc *store.Scope) error { return render(sc) })
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		return out, nil
	})
	ui.CopyStatics(def, target)
	return def
}

// renderBound materializes the props of one render and renders target
// inline, so reads made by its body go through the same view.
func renderBound(ctx *ui.Ctx, decl Declaration, target ui.Component, s *store.Store, view store.View) (*ui.Node, error) {
	parent := ctx.Props()

	var actions ui.Props
	if decl.Actions != nil {
		actions = ui.Props(decl.Actions(s, parent.Clone()))
	}
	actionNames := sortedNames(actions)
	if names := decl.Overlaps(actionNames); len(names) > 0 {
		return nil, &ShadowError{Names: names}
	}
	if err := CheckConflicts(target.Name(), decl, actionNames, parent); err != nil {
		return nil, err
	}

	readable := make(ui.Props, len(decl.Readable))
	for _, k := range decl.Readable {
		readable[k] = view.Get(k)
	}

	writable := make(ui.Props, len(decl.Writable))
	setters := decl.Setters()
	for i, k := range decl.Writable {
		writable[setters[i]] = newSetter(s, k)
	}

	var base ui.Props
	if v, ok := ui.Static(target, DefaultPropsStatic); ok {
		switch d := v.(type) {
		case ui.Props:
			base = d
		case map[string]any:
			base = d
		}
	}

	props := MergeProps(Layers{
		Base:     base,
		Readable: readable,
		Writable: writable,
		Actions:  actions,
		Parent:   parent,
		Store:    view,
	})
	return target.Render(ctx.WithProps(props))
}

func newSetter(s *store.Store, key string) Setter {
	return func(value any) {
		// String keys are always valid, so writes cannot fail.
		if fn, ok := value.(func(any) any); ok {
			_ = s.Update(key, fn)
			return
		}
		if fn, ok := updater(value); ok {
			_ = s.Update(key, fn)
			return
		}
		_ = s.Set(key, value)
	}
}

// updater adapts a typed update function to func(any) any. A nil current
// value is passed as the zero value of the argument type.
func updater(value any) (func(any) any, bool) {
	fv := reflect.ValueOf(value)
	if fv.Kind() != reflect.Func {
		return nil, false
	}
	ft := fv.Type()
	if fv.IsNil() || ft.NumIn() != 1 || ft.NumOut() != 1 || ft.IsVariadic() {
		panic(fmt.Sprintf("bind: setter expects a value or a one-argument update function, got %s", ft))
	}
	in := ft.In(0)
	return func(prev any) any {
		arg := reflect.Zero(in)
		if prev != nil {
			pv := reflect.ValueOf(prev)
			if !pv.Type().AssignableTo(in) {
				panic(fmt.Sprintf("bind: update function %s cannot take current value of type %T", ft, prev))
			}
			arg = pv
		}
		return fv.Call([]reflect.Value{arg})[0].Interface()
	}, true
}

func sortedNames(p ui.Props) []string {
	if len(p) == 0 {
		return nil
	}
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
