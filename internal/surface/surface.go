// Package surface is the fixed-size drawing area charts render into.
//
// It keeps a retained scene graph rather than drawing pixels: a chart clears
// the plot group, appends nodes, and registers hover behaviour on the nodes
// that represent data points ("marks"). The graph is serialised to SVG for the
// browser, which reports pointer events back by mark id.
package surface

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Default geometry of the slideshow surface.
const (
	DefaultWidth  = 800
	DefaultHeight = 500
)

// ErrUnknownMark is returned when a hover event names a mark that is not on
// the current render.
var ErrUnknownMark = errors.New("unknown mark")

// Margin is the space between the surface edge and the plot area.
type Margin struct {
	Top, Right, Bottom, Left float64
}

// DefaultMargin leaves room for rotated axis labels and captions.
var DefaultMargin = Margin{Top: 50, Right: 30, Bottom: 100, Left: 60}

// Hover is the behaviour attached to a mark.
type Hover struct {
	Enter func(x, y float64)
	Leave func()
}

// Surface is a single reusable drawing area. It is not safe for concurrent
// use; the slide controller serialises access.
type Surface struct {
	width, height float64
	margin        Margin

	root *Node
	plot *Node

	renderID string
	marks    map[string]Hover
	order    []string
}

// New creates a surface with the default size and margins.
func New() *Surface {
	return NewWithSize(DefaultWidth, DefaultHeight, DefaultMargin)
}

// NewWithSize creates a surface of the given total size.
func NewWithSize(width, height float64, margin Margin) *Surface {
	s := &Surface{width: width, height: height, margin: margin}
	s.root = newNode("svg").
		Attr("width", width).
		Attr("height", height).
		Attr("xmlns", "http://www.w3.org/2000/svg")
	s.plot = s.root.Append("g").
		Attr("transform", fmt.Sprintf("translate(%g,%g)", margin.Left, margin.Top))
	s.Clear()
	return s
}

// Width is the total surface width.
func (s *Surface) Width() float64 { return s.width }

// Height is the total surface height.
func (s *Surface) Height() float64 { return s.height }

// Margin returns the plot margins.
func (s *Surface) Margin() Margin { return s.margin }

// PlotWidth is the width inside the margins.
func (s *Surface) PlotWidth() float64 { return s.width - s.margin.Left - s.margin.Right }

// PlotHeight is the height inside the margins.
func (s *Surface) PlotHeight() float64 { return s.height - s.margin.Top - s.margin.Bottom }

// Plot returns the group translated by the margins; charts draw into it.
func (s *Surface) Plot() *Node { return s.plot }

// Root returns the outer svg element.
func (s *Surface) Root() *Node { return s.root }

// RenderID identifies the content drawn since the last Clear.
func (s *Surface) RenderID() string { return s.renderID }

// Clear removes everything drawn and starts a new render.
func (s *Surface) Clear() {
	s.plot.Children = nil
	s.marks = make(map[string]Hover)
	s.order = nil
	s.renderID = uuid.NewString()
}

// AddMark registers n as a data point with hover behaviour and returns its id.
func (s *Surface) AddMark(n *Node, h Hover) string {
	id := fmt.Sprintf("mark-%d", len(s.order))
	n.MarkID = id
	s.marks[id] = h
	s.order = append(s.order, id)
	return id
}

// Enter dispatches a pointer-enter at page position (x, y) to a mark.
func (s *Surface) Enter(id string, x, y float64) error {
	h, ok := s.marks[id]
	if !ok {
		return fmt.Errorf("enter %q: %w", id, ErrUnknownMark)
	}
	if h.Enter != nil {
		h.Enter(x, y)
	}
	return nil
}

// Leave dispatches a pointer-leave to a mark.
func (s *Surface) Leave(id string) error {
	h, ok := s.marks[id]
	if !ok {
		return fmt.Errorf("leave %q: %w", id, ErrUnknownMark)
	}
	if h.Leave != nil {
		h.Leave()
	}
	return nil
}

// Marks returns the ids of registered marks in drawing order.
func (s *Surface) Marks() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Find returns every node in the plot with the given class.
func (s *Surface) Find(class string) []*Node {
	var found []*Node
	s.plot.Walk(func(n *Node) {
		if n.Class == class {
			found = append(found, n)
		}
	})
	return found
}

// FindTag returns every node in the plot with the given tag.
func (s *Surface) FindTag(tag string) []*Node {
	var found []*Node
	for _, c := range s.plot.Children {
		c.Walk(func(n *Node) {
			if n.Tag == tag {
				found = append(found, n)
			}
		})
	}
	return found
}

// Count returns how many nodes in the plot have the given tag.
func (s *Surface) Count(tag string) int {
	return len(s.FindTag(tag))
}

// Mark returns the node registered under id.
func (s *Surface) Mark(id string) (*Node, bool) {
	var found *Node
	s.plot.Walk(func(n *Node) {
		if found == nil && n.MarkID == id {
			found = n
		}
	})
	return found, found != nil
}

// Empty reports whether nothing has been drawn since the last Clear.
func (s *Surface) Empty() bool {
	return len(s.plot.Children) == 0
}
