package surface

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultGeometry(t *testing.T) {
	s := New()

	assert.Equal(t, 800.0, s.Width())
	assert.Equal(t, 500.0, s.Height())
	assert.Equal(t, 710.0, s.PlotWidth())
	assert.Equal(t, 350.0, s.PlotHeight())
	assert.Equal(t, "translate(60,50)", s.Plot().Get("transform"))
}

func TestClearStartsNewRender(t *testing.T) {
	s := New()
	first := s.RenderID()
	require.NotEmpty(t, first)

	s.AddMark(s.Plot().Append("rect"), Hover{})
	require.False(t, s.Empty())

	s.Clear()
	assert.True(t, s.Empty())
	assert.Empty(t, s.Marks())
	assert.NotEqual(t, first, s.RenderID())
}

func TestMarkHoverDispatch(t *testing.T) {
	s := New()
	var entered, left int
	var gotX, gotY float64

	id := s.AddMark(s.Plot().Append("circle"), Hover{
		Enter: func(x, y float64) {
			entered++
			gotX, gotY = x, y
		},
		Leave: func() { left++ },
	})
	assert.Equal(t, "mark-0", id)

	require.NoError(t, s.Enter(id, 120, 300))
	require.NoError(t, s.Leave(id))
	assert.Equal(t, 1, entered)
	assert.Equal(t, 1, left)
	assert.Equal(t, 120.0, gotX)
	assert.Equal(t, 300.0, gotY)

	err := s.Enter("mark-9", 0, 0)
	assert.True(t, errors.Is(err, ErrUnknownMark))
	assert.True(t, errors.Is(s.Leave("nope"), ErrUnknownMark))
}

func TestMarksClearedWithRender(t *testing.T) {
	s := New()
	id := s.AddMark(s.Plot().Append("rect"), Hover{})
	s.Clear()

	assert.True(t, errors.Is(s.Enter(id, 0, 0), ErrUnknownMark))
}

func TestFindAndCount(t *testing.T) {
	s := New()
	g := s.Plot().Append("g").SetClass("legend")
	g.Append("rect")
	g.Append("text").SetText("Latte")
	s.Plot().Append("rect").SetClass("bar")
	s.Plot().Append("rect").SetClass("bar")

	assert.Len(t, s.Find("bar"), 2)
	assert.Len(t, s.Find("legend"), 1)
	assert.Equal(t, 3, s.Count("rect"))
	assert.Equal(t, 1, s.Count("text"))
}

func TestAttrReplaces(t *testing.T) {
	n := newNode("rect").Attr("x", 1.5).Attr("y", 2).Attr("x", "3")

	assert.Equal(t, []Attr{{"x", "3"}, {"y", "2"}}, n.Attrs)
	assert.Equal(t, 3.0, n.Float("x"))
	assert.Equal(t, 0.0, n.Float("missing"))
}

func TestWriteSVG(t *testing.T) {
	s := New()
	bar := s.Plot().Append("rect").SetClass("bar").
		Attr("x", 10).
		Attr("height", 42.5).
		Style("fill", "#4CAF50")
	id := s.AddMark(bar, Hover{})
	s.Plot().Append("text").SetText("Tea & <Cake>")

	out := s.SVG()

	assert.True(t, strings.HasPrefix(out, "<svg "))
	assert.Contains(t, out, `data-render="`+s.RenderID()+`"`)
	assert.Contains(t, out, `<rect class="bar" x="10" height="42.5" style="fill: #4CAF50" data-mark="`+id+`"/>`)
	assert.Contains(t, out, "Tea &amp; &lt;Cake&gt;")
	assert.Contains(t, out, "</svg>")
}
