package surface

import (
	"bufio"
	"encoding/xml"
	"io"
	"strings"
)

// WriteSVG serialises the surface as a standalone svg element. Marks carry
// a data-mark attribute and the root carries data-render so pointer events
// can be routed back to the render that produced them.
func (s *Surface) WriteSVG(w io.Writer) error {
	bw := bufio.NewWriter(w)
	s.root.Attr("data-render", s.renderID)
	writeNode(bw, s.root, 0)
	return bw.Flush()
}

// SVG returns the serialised surface as a string.
func (s *Surface) SVG() string {
	var b strings.Builder
	_ = s.WriteSVG(&b)
	return b.String()
}

func writeNode(w *bufio.Writer, n *Node, depth int) {
	indent := strings.Repeat("  ", depth)
	w.WriteString(indent)
	w.WriteByte('<')
	w.WriteString(n.Tag)
	if n.Class != "" {
		writeAttr(w, "class", n.Class)
	}
	for _, a := range n.Attrs {
		writeAttr(w, a.Name, a.Value)
	}
	if len(n.Styles) > 0 {
		parts := make([]string, len(n.Styles))
		for i, st := range n.Styles {
			parts[i] = st.Name + ": " + st.Value
		}
		writeAttr(w, "style", strings.Join(parts, "; "))
	}
	if n.MarkID != "" {
		writeAttr(w, "data-mark", n.MarkID)
	}

	if n.Text == "" && len(n.Children) == 0 {
		w.WriteString("/>\n")
		return
	}
	w.WriteByte('>')
	if n.Text != "" {
		xml.EscapeText(w, []byte(n.Text))
	}
	if len(n.Children) > 0 {
		w.WriteByte('\n')
		for _, c := range n.Children {
			writeNode(w, c, depth+1)
		}
		w.WriteString(indent)
	}
	w.WriteString("</")
	w.WriteString(n.Tag)
	w.WriteString(">\n")
}

func writeAttr(w *bufio.Writer, name, value string) {
	w.WriteByte(' ')
	w.WriteString(name)
	w.WriteString(`="`)
	xml.EscapeText(w, []byte(value))
	w.WriteByte('"')
}
