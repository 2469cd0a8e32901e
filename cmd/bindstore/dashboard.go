package main

import (
	"io"
	"log/slog"
	"slices"

	"github.com/vango-dev/bindstore/pkg/bind"
	"github.com/vango-dev/bindstore/pkg/store"
	"github.com/vango-dev/bindstore/pkg/ui"
)

// dashboard is a mounted outline of the store's string keys. Each key renders
// in its own bound row, so a write re-renders only the row reading that key.
// The list itself re-renders when a key is created.
type dashboard struct {
	store  *store.Store
	tree   *ui.Tree
	rows   map[string]ui.Component
	logger *slog.Logger
	remove func()
}

var _ store.Observer = (*dashboard)(nil)

func mountDashboard(s *store.Store, logger *slog.Logger) (*dashboard, error) {
	d := &dashboard{
		store:  s,
		rows:   make(map[string]ui.Component),
		logger: logger,
	}

	list := ui.Define("Dashboard", func(ctx *ui.Ctx) (*ui.Node, error) {
		keys := d.keys()
		items := make([]*ui.Node, len(keys))
		for i, k := range keys {
			items[i] = ui.C(d.row(k), nil)
		}
		return ui.El("ul", nil, items...), nil
	})

	root, err := bind.Connect(list, s)
	if err != nil {
		return nil, err
	}
	tree, err := ui.Mount(root, nil, ui.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	d.tree = tree
	d.remove = s.AddObserver(d)
	return d, nil
}

func (d *dashboard) keys() []string {
	var keys []string
	for _, k := range d.store.Keys() {
		if name, ok := k.(string); ok {
			keys = append(keys, name)
		}
	}
	slices.Sort(keys)
	return keys
}

// row returns the bound row of key. Rows are reused across list renders so
// existing rows keep their instances.
func (d *dashboard) row(key string) ui.Component {
	if r, ok := d.rows[key]; ok {
		return r
	}
	r := bind.MustWithState()(keyRow(key))
	d.rows[key] = r
	return r
}

// keyRow reads its key through the store prop, which tracks the read.
func keyRow(key string) *ui.Def {
	return ui.Define("Key", func(ctx *ui.Ctx) (*ui.Node, error) {
		view := ctx.Prop(bind.StoreProp).(store.View)
		return ui.El("li", ui.Props{"name": key}, ui.Textf("%v", view.Get(key))), nil
	})
}

// KeyCreated implements store.Observer.
func (d *dashboard) KeyCreated(key store.Key) {
	if _, ok := key.(string); !ok || d.tree == nil {
		return
	}
	if err := d.tree.SetProps(nil); err != nil {
		d.logger.Error("dashboard: render failed", "key", key, "error", err)
	}
}

// ValueChanged implements store.Observer. Rows track their own keys.
func (d *dashboard) ValueChanged(store.Key, any, any, int) {}

func (d *dashboard) WriteTo(w io.Writer) error {
	return ui.WriteText(w, d.tree.Output())
}

func (d *dashboard) Close() {
	if d.remove != nil {
		d.remove()
	}
	d.tree.Unmount()
}
