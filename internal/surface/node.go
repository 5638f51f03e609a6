package surface

import (
	"fmt"
	"strconv"
)

// Attr is a single name/value pair on a node, kept in insertion order.
type Attr struct {
	Name  string
	Value string
}

// Node is one element of the retained scene graph.
type Node struct {
	Tag      string
	Class    string
	Text     string
	Attrs    []Attr
	Styles   []Attr
	Children []*Node

	// MarkID is set for nodes registered with AddMark.
	MarkID string
}

func newNode(tag string) *Node {
	return &Node{Tag: tag}
}

// Append creates a child element and returns it.
func (n *Node) Append(tag string) *Node {
	child := newNode(tag)
	n.Children = append(n.Children, child)
	return child
}

// Attr sets an attribute, replacing any previous value.
func (n *Node) Attr(name string, value interface{}) *Node {
	n.Attrs = set(n.Attrs, name, formatValue(value))
	return n
}

// Style sets an inline style property, replacing any previous value.
func (n *Node) Style(name string, value interface{}) *Node {
	n.Styles = set(n.Styles, name, formatValue(value))
	return n
}

// SetClass sets the CSS class.
func (n *Node) SetClass(class string) *Node {
	n.Class = class
	return n
}

// SetText sets the text content.
func (n *Node) SetText(text string) *Node {
	n.Text = text
	return n
}

// Get returns an attribute value, or "" when unset.
func (n *Node) Get(name string) string {
	return get(n.Attrs, name)
}

// GetStyle returns a style value, or "" when unset.
func (n *Node) GetStyle(name string) string {
	return get(n.Styles, name)
}

// Float returns a numeric attribute, or 0 when unset or not a number.
func (n *Node) Float(name string) float64 {
	v, err := strconv.ParseFloat(n.Get(name), 64)
	if err != nil {
		return 0
	}
	return v
}

// Walk visits n and its descendants depth first.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

func set(attrs []Attr, name, value string) []Attr {
	for i := range attrs {
		if attrs[i].Name == name {
			attrs[i].Value = value
			return attrs
		}
	}
	return append(attrs, Attr{Name: name, Value: value})
}

func get(attrs []Attr, name string) string {
	for _, a := range attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}
