package ui

import "fmt"

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement   Kind = iota // <div>, <span>, etc.
	KindText                  // Plain text node
	KindFragment              // Grouping without wrapper
	KindComponent             // Nested component
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// Props holds the properties passed to an element or a component.
type Props map[string]any

// Clone returns a shallow copy of p. Clone of nil is an empty map.
func (p Props) Clone() Props {
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Node is a rendered UI node.
type Node struct {
	Kind     Kind
	Tag      string    // For KindElement
	Text     string    // For KindText
	Props    Props     // Element attributes or component props
	Children []*Node   // Element/fragment children, or children passed to a component
	Comp     Component // For KindComponent

	// inst is set on component nodes of a rendered tree.
	inst *Instance
}

// El creates an element node.
func El(tag string, props Props, children ...*Node) *Node {
	return &Node{Kind: KindElement, Tag: tag, Props: props, Children: children}
}

// Text creates a text node.
func Text(s string) *Node {
	return &Node{Kind: KindText, Text: s}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *Node {
	return Text(fmt.Sprintf(format, args...))
}

// Fragment groups nodes without a wrapper element.
func Fragment(children ...*Node) *Node {
	return &Node{Kind: KindFragment, Children: children}
}

// C creates a component node. children are handed to the component through
// Ctx.Children.
func C(c Component, props Props, children ...*Node) *Node {
	return &Node{Kind: KindComponent, Comp: c, Props: props, Children: children}
}

// Instance returns the mounted instance behind a rendered component node.
func (n *Node) Instance() *Instance {
	return n.inst
}
