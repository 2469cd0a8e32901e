package bind

import (
	"github.com/vango-dev/bindstore/pkg/store"
	"github.com/vango-dev/bindstore/pkg/ui"
)

// consumerSlot is the per-instance slot holding the consumer.
var consumerSlot = &struct{ name string }{"bindstore.Consumer"}

// consumer attaches a mounted bound instance to the stores it reads.
// It is both a store.Consumer (implicit tracking) and a store.Subscriber
// (explicit subscriptions).
type consumer struct {
	inst        *ui.Instance
	stores      []*store.Store
	unsubscribe func()

	// sweep is the render stamp taken when the latest notification sweep
	// reaching this consumer started.
	sweep uint64
	swept bool
}

var (
	_ store.Hierarchical = (*consumer)(nil)
	_ store.Subscriber   = (*consumer)(nil)
)

func consumerFor(ctx *ui.Ctx) *consumer {
	return ctx.Slot(consumerSlot, func() any {
		return &consumer{inst: ctx.Instance()}
	}).(*consumer)
}

func (c *consumer) ID() uint64 {
	return c.inst.ID()
}

func (c *consumer) Depth() int {
	return c.inst.Depth()
}

func (c *consumer) SweepStarted() {
	c.sweep = ui.Stamp()
	c.swept = true
}

// Rerender merges patch into the instance's local state, which re-renders it.
// It does nothing when an ancestor already re-rendered the instance during
// the current sweep.
func (c *consumer) Rerender(patch store.Patch) {
	if c.swept && c.inst.RenderedAfter(c.sweep) {
		return
	}
	state := make(ui.Props, len(patch))
	for k, v := range patch {
		state[store.KeyString(k)] = v
	}
	c.inst.SetState(state)
}

func (c *consumer) StoreChanged(next, _ store.Patch) {
	c.Rerender(next)
}

func (c *consumer) use(s *store.Store) {
	for _, existing := range c.stores {
		if existing == s {
			return
		}
	}
	c.stores = append(c.stores, s)
}

func (c *consumer) release() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	for _, s := range c.stores {
		s.Release(c)
	}
	c.stores = nil
}
