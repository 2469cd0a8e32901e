package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

func label(ctx *Ctx) string {
	s, _ := ctx.Prop("label").(string)
	return s
}

var (
	Item = Define("Item", func(ctx *Ctx) (*Node, error) {
		return El("li", Props{"class": "item"}, Text(label(ctx))), nil
	})
	List = Define("List", func(ctx *Ctx) (*Node, error) {
		return El("ul", nil,
			C(Item, Props{"label": "a"}),
			C(Item, Props{"label": "b"}),
		), nil
	})
)

func TestWriteTextGolden(t *testing.T) {
	tree, err := Mount(List, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer tree.Unmount()

	var b strings.Builder
	if err := WriteText(&b, tree.Output()); err != nil {
		t.Fatal(err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "list", []byte(b.String()))
}

func TestSetStateRerendersOnlyThatInstance(t *testing.T) {
	Counter := Define("Counter", func(ctx *Ctx) (*Node, error) {
		n, _ := ctx.State()["n"].(int)
		return El("span", nil, Textf("%d", n)), nil
	})
	Static := Define("Static", func(ctx *Ctx) (*Node, error) {
		return Text("static"), nil
	})
	App := Define("App", func(ctx *Ctx) (*Node, error) {
		return Fragment(C(Counter, nil), C(Static, nil)), nil
	})

	tree, err := Mount(App, nil)
	if err != nil {
		t.Fatal(err)
	}

	counter := tree.Find("Counter")[0]
	static := tree.Find("Static")[0]
	counter.SetState(Props{"n": 3})

	if counter.RenderCount() != 2 {
		t.Errorf("Expected Counter to render twice, got %d", counter.RenderCount())
	}
	if static.RenderCount() != 1 {
		t.Errorf("Expected Static to render once, got %d", static.RenderCount())
	}
	if tree.Root().RenderCount() != 1 {
		t.Errorf("Expected App to render once, got %d", tree.Root().RenderCount())
	}
	if !strings.Contains(tree.Output().String(), `"3"`) {
		t.Errorf("Expected output to show 3, got:\n%s", tree.Output())
	}
}

func TestContextPropagation(t *testing.T) {
	type key struct{}
	var seen []any

	Leaf := Define("Leaf", func(ctx *Ctx) (*Node, error) {
		seen = append(seen, ctx.Context(key{}))
		return nil, nil
	})
	Provider := Define("Provider", func(ctx *Ctx) (*Node, error) {
		ctx.Provide(key{}, "provided")
		return C(Leaf, nil), nil
	})
	App := Define("App", func(ctx *Ctx) (*Node, error) {
		return Fragment(C(Leaf, nil), C(Provider, nil)), nil
	})

	tree, err := Mount(App, nil, WithValue(key{}, "root"))
	if err != nil {
		t.Fatal(err)
	}
	defer tree.Unmount()

	if len(seen) != 2 || seen[0] != "root" || seen[1] != "provided" {
		t.Errorf("Expected [root provided], got %v", seen)
	}
}

func TestMountAndUnmountHooks(t *testing.T) {
	var events []string

	Child := Define("Child", func(ctx *Ctx) (*Node, error) {
		ctx.OnMount(func() { events = append(events, "child mount") })
		ctx.OnUnmount(func() { events = append(events, "child unmount") })
		return nil, nil
	})
	Parent := Define("Parent", func(ctx *Ctx) (*Node, error) {
		ctx.OnMount(func() { events = append(events, "parent mount") })
		ctx.OnUnmount(func() { events = append(events, "parent unmount") })
		if show, _ := ctx.Prop("show").(bool); !show {
			return nil, nil
		}
		return C(Child, nil), nil
	})

	tree, err := Mount(Parent, Props{"show": true})
	if err != nil {
		t.Fatal(err)
	}
	// A second render must not register the hooks again.
	if err := tree.SetProps(Props{"show": true}); err != nil {
		t.Fatal(err)
	}
	if err := tree.SetProps(Props{"show": false}); err != nil {
		t.Fatal(err)
	}
	tree.Unmount()

	want := []string{"child mount", "parent mount", "child unmount", "parent unmount"}
	if strings.Join(events, ",") != strings.Join(want, ",") {
		t.Errorf("Expected %v, got %v", want, events)
	}
}

func TestReconcileReusesInstances(t *testing.T) {
	App := Define("App", func(ctx *Ctx) (*Node, error) {
		return C(Item, Props{"label": ctx.Prop("label")}), nil
	})

	tree, err := Mount(App, Props{"label": "one"})
	if err != nil {
		t.Fatal(err)
	}
	first := tree.Find("Item")[0]

	if err := tree.SetProps(Props{"label": "two"}); err != nil {
		t.Fatal(err)
	}
	second := tree.Find("Item")[0]

	if first != second {
		t.Error("Expected the Item instance to be reused")
	}
	if second.Props()["label"] != "two" || second.RenderCount() != 2 {
		t.Errorf("Expected updated props and 2 renders, got %v / %d", second.Props(), second.RenderCount())
	}
}

func TestMountFailureReturnsError(t *testing.T) {
	boom := errors.New("boom")
	unmounted := false

	Broken := Define("Broken", func(ctx *Ctx) (*Node, error) {
		return nil, boom
	})
	App := Define("App", func(ctx *Ctx) (*Node, error) {
		ctx.OnUnmount(func() { unmounted = true })
		return C(Broken, nil), nil
	})

	tree, err := Mount(App, nil)
	if tree != nil {
		t.Error("Expected nil tree on failure")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}
	var re *RenderError
	if !errors.As(err, &re) || re.Component != "Broken" {
		t.Errorf("Expected *RenderError for Broken, got %v", err)
	}
	if !unmounted {
		t.Error("Expected partially mounted tree to be disposed")
	}
}

func TestSetStateErrorGoesToHandler(t *testing.T) {
	boom := errors.New("boom")
	Flaky := Define("Flaky", func(ctx *Ctx) (*Node, error) {
		if fail, _ := ctx.State()["fail"].(bool); fail {
			return nil, boom
		}
		return Text("ok"), nil
	})

	var handled error
	tree, err := Mount(Flaky, nil, WithErrorHandler(func(inst *Instance, err error) {
		handled = err
	}))
	if err != nil {
		t.Fatal(err)
	}

	tree.Root().SetState(Props{"fail": true})
	if !errors.Is(handled, boom) {
		t.Errorf("Expected handler to receive boom, got %v", handled)
	}
}

func TestSetStateDuringRenderLoops(t *testing.T) {
	Settle := Define("Settle", func(ctx *Ctx) (*Node, error) {
		n, _ := ctx.State()["n"].(int)
		if n < 3 {
			ctx.Instance().SetState(Props{"n": n + 1})
		}
		return Textf("%d", n), nil
	})

	tree, err := Mount(Settle, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := tree.Output().Text; got != "3" {
		t.Errorf("Expected state to settle at 3, got %q", got)
	}
}

func TestSetStateAfterUnmountIsIgnored(t *testing.T) {
	tree, err := Mount(Item, Props{"label": "x"})
	if err != nil {
		t.Fatal(err)
	}
	root := tree.Root()
	tree.Unmount()

	root.SetState(Props{"n": 1})
	if root.RenderCount() != 1 || root.Mounted() {
		t.Errorf("Expected no render after unmount, got %d renders", root.RenderCount())
	}
}

func TestSlotAndStatics(t *testing.T) {
	inits := 0
	Slotted := Define("Slotted", func(ctx *Ctx) (*Node, error) {
		ctx.Slot("k", func() any { inits++; return inits })
		return nil, nil
	})
	Slotted.Statics = map[string]any{"displayName": "slotted"}

	tree, err := Mount(Slotted, nil)
	if err != nil {
		t.Fatal(err)
	}
	tree.Root().SetState(Props{"x": 1})
	if inits != 1 {
		t.Errorf("Expected slot init once, got %d", inits)
	}

	wrapper := Define("Wrapper", nil)
	CopyStatics(wrapper, Slotted)
	if v, ok := Static(wrapper, "displayName"); !ok || v != "slotted" {
		t.Errorf("Expected copied static, got %v %v", v, ok)
	}
}

func TestDepthAndRenderStamps(t *testing.T) {
	tree, err := Mount(List, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer tree.Unmount()

	items := tree.Find("Item")
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if d := tree.Root().Depth(); d != 0 {
		t.Errorf("Root depth = %d, want 0", d)
	}
	if d := items[0].Depth(); d != 1 {
		t.Errorf("Item depth = %d, want 1", d)
	}

	stamp := Stamp()
	if items[0].RenderedAfter(stamp) {
		t.Error("No render has started since the stamp")
	}

	// Re-rendering the root re-renders its children.
	tree.Root().SetState(Props{"tick": 1})
	for _, item := range items {
		if !item.RenderedAfter(stamp) {
			t.Errorf("Item %d should have rendered after the stamp", item.ID())
		}
	}
}
