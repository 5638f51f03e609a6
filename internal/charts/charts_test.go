package charts

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coffeeslides/internal/models"
	"coffeeslides/internal/surface"
	"coffeeslides/internal/tooltip"
)

func sampleSet() *models.TransactionSet {
	return models.NewTransactionSet([]models.Transaction{
		{Category: "Latte", PaymentType: "card", Amount: 3.50},
		{Category: "Latte", PaymentType: "cash", Amount: 3.50},
		{Category: "Espresso", PaymentType: "card", Amount: 2.00},
	})
}

func newBook(t *testing.T) (*Book, *tooltip.Controller) {
	t.Helper()
	tip := tooltip.New()
	return NewBook(sampleSet(), tip, DefaultOptions), tip
}

func render(t *testing.T, slide int) (*surface.Surface, *tooltip.Controller) {
	t.Helper()
	b, tip := newBook(t)
	s := surface.New()
	b.Views()[slide].Render(s)
	return s, tip
}

func captionTransforms(s *surface.Surface) []string {
	var out []string
	for _, n := range s.Find("axis-label") {
		out = append(out, n.Get("transform"))
	}
	return out
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{7, "$7.00"},
		{5.5, "$5.50"},
		{0.1 + 0.2, "$0.30"},
		{1234.567, "$1234.57"},
		{117.4, "$117.40"},
		{1.005, "$1.00"},
		{2.675, "$2.67"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMoney(tt.in))
	}
}

func TestBarByItem(t *testing.T) {
	s, _ := render(t, SlideBarByItem)

	bars := s.Find("bar")
	require.Len(t, bars, 2)
	assert.Len(t, s.Marks(), 2)

	latte, espresso := bars[0], bars[1]
	assert.Less(t, latte.Float("x"), espresso.Float("x"))
	assert.InDelta(t, 350, latte.Float("height"), 1e-9, "largest total fills the niced plot")
	assert.InDelta(t, 100, espresso.Float("height"), 1e-9)
	assert.InDelta(t, 0, latte.Float("y"), 1e-9)
	assert.Equal(t, BarColor, latte.Get("fill"))
	assert.Equal(t, latte.Float("width"), espresso.Float("width"))

	assert.Equal(t, []string{"translate(355,440)", "rotate(-90)"}, captionTransforms(s))
}

func TestBarsNeverExceedPlot(t *testing.T) {
	s, _ := render(t, SlideBarByPaymentType)

	for _, bar := range s.Find("bar") {
		assert.GreaterOrEqual(t, bar.Float("y"), 0.0)
		assert.LessOrEqual(t, bar.Float("y")+bar.Float("height"), s.PlotHeight()+1e-9)
		assert.LessOrEqual(t, bar.Float("x")+bar.Float("width"), s.PlotWidth())
	}
}

func TestBarByPaymentTypeCaptionLift(t *testing.T) {
	s, _ := render(t, SlideBarByPaymentType)

	require.Len(t, s.Find("bar"), 2)
	assert.Equal(t, []string{"translate(355,400)", "rotate(-90)"}, captionTransforms(s))

	labels := s.Find("axis-label")
	assert.Equal(t, "Cash Type", labels[0].Text)
	assert.Equal(t, YCaption, labels[1].Text)
	assert.Equal(t, "-60", labels[1].Get("y"))
	assert.Equal(t, "-175", labels[1].Get("x"))
}

func TestBarHoverShowsTotals(t *testing.T) {
	tests := []struct {
		name  string
		slide int
		mark  int
		want  string
	}{
		{"coffee bar", SlideBarByItem, 0, "Coffee: Latte\nTotal: $7.00"},
		{"second coffee bar", SlideBarByItem, 1, "Coffee: Espresso\nTotal: $2.00"},
		{"payment bar", SlideBarByPaymentType, 0, "Cash Type: card\nTotal: $5.50"},
		{"line point", SlideLineByItemTotal, 1, "Coffee: Espresso\nTotal: $2.00"},
		{"scatter dot", SlideScatterByTransaction, 2, "Coffee: Espresso\nMoney: $2.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, tip := render(t, tt.slide)
			id := s.Marks()[tt.mark]

			require.NoError(t, s.Enter(id, 200, 300))
			st := tip.State()
			assert.True(t, st.Visible)
			assert.Equal(t, tt.want, st.Content)
			assert.Equal(t, 160.0, st.Left)
			assert.Equal(t, 240.0, st.Top)

			require.NoError(t, s.Leave(id))
			st = tip.State()
			assert.False(t, st.Visible)
			assert.Equal(t, tt.want, st.Content)
		})
	}
}

func TestScatterByTransaction(t *testing.T) {
	s, _ := render(t, SlideScatterByTransaction)

	dots := s.Find("dot")
	require.Len(t, dots, 3)
	assert.Equal(t, "#1f77b4", dots[0].Get("fill"))
	assert.Equal(t, "#1f77b4", dots[1].Get("fill"))
	assert.Equal(t, "#ff7f0e", dots[2].Get("fill"))
	assert.Equal(t, dots[0].Get("cx"), dots[1].Get("cx"), "same coffee, same column")
	assert.Equal(t, "5", dots[0].Get("r"))

	legend := s.Find("legend")
	require.Len(t, legend, 2)
	assert.Equal(t, "translate(0,0)", legend[0].Get("transform"))
	assert.Equal(t, "translate(0,20)", legend[1].Get("transform"))

	swatch, label := legend[1].Children[0], legend[1].Children[1]
	assert.Equal(t, "692", swatch.Get("x"))
	assert.Equal(t, "#ff7f0e", swatch.GetStyle("fill"))
	assert.Equal(t, "686", label.Get("x"))
	assert.Equal(t, "Espresso", label.Text)
	assert.Equal(t, "end", label.GetStyle("text-anchor"))
}

func TestLineByItemTotal(t *testing.T) {
	s, _ := render(t, SlideLineByItemTotal)

	lines := s.Find("line")
	require.Len(t, lines, 1)
	assert.Equal(t, LineColor, lines[0].Get("stroke"))
	assert.Equal(t, "none", lines[0].Get("fill"))
	assert.True(t, strings.HasPrefix(lines[0].Get("d"), "M"))
	assert.Equal(t, 1, strings.Count(lines[0].Get("d"), "L"))

	points := s.Find("point")
	require.Len(t, points, 2)
	assert.Equal(t, LineColor, points[0].Get("fill"))
	assert.Len(t, s.Marks(), 2, "only the markers are hoverable")
}

func TestAxes(t *testing.T) {
	s, _ := render(t, SlideBarByItem)

	xAxis := s.Find("x-axis")
	require.Len(t, xAxis, 1)
	assert.Equal(t, "translate(0,350)", xAxis[0].Get("transform"))

	var labels []string
	for _, tick := range xAxis[0].Children[1:] {
		text := tick.Children[1]
		labels = append(labels, text.Text)
		assert.Equal(t, "rotate(-45)", text.Get("transform"))
		assert.Equal(t, "end", text.GetStyle("text-anchor"))
		assert.Equal(t, "bold", text.GetStyle("font-weight"))
		assert.Equal(t, TickColor, text.GetStyle("fill"))
	}
	assert.Equal(t, []string{"Latte", "Espresso"}, labels)

	yAxis := s.Find("y-axis")
	require.Len(t, yAxis, 1)
	ticks := yAxis[0].Children[1:]
	require.NotEmpty(t, ticks)
	assert.Equal(t, "0.0", ticks[0].Children[1].Text)
	assert.Equal(t, "7.0", ticks[len(ticks)-1].Children[1].Text)
}

func TestRedrawDoesNotAccumulate(t *testing.T) {
	b, _ := newBook(t)
	s := surface.New()
	view := b.Views()[SlideScatterByTransaction]

	view.Render(s)
	first := s.Count("circle")
	view.Render(s)

	assert.Equal(t, first, s.Count("circle"))
	assert.Len(t, s.Marks(), 3)
}

func TestRenderersClearPreviousChart(t *testing.T) {
	b, _ := newBook(t)
	s := surface.New()
	views := b.Views()

	views[SlideScatterByTransaction].Render(s)
	views[SlideBarByItem].Render(s)

	assert.Empty(t, s.Find("dot"))
	assert.Empty(t, s.Find("legend"))
	assert.Len(t, s.Find("bar"), 2)
}

func TestEmptyRowsDrawNothing(t *testing.T) {
	s := surface.New()
	BarByItem(nil, tooltip.New())(s)
	assert.True(t, s.Empty())
}

func TestWritePNG(t *testing.T) {
	b, _ := newBook(t)

	for i := 0; i < SlideCount; i++ {
		var buf bytes.Buffer
		require.NoError(t, b.WritePNG(i, &buf), SlideNames[i])
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")), SlideNames[i])
	}

	err := b.WritePNG(SlideCount, &bytes.Buffer{})
	assert.True(t, errors.Is(err, ErrNoSlide))
}

func TestWriteECharts(t *testing.T) {
	b, _ := newBook(t)

	for i := 0; i < SlideCount; i++ {
		var buf bytes.Buffer
		require.NoError(t, b.WriteECharts(i, &buf))
		out := buf.String()
		assert.Contains(t, out, "echarts")
		assert.Contains(t, out, SlideNames[i])
	}

	assert.True(t, errors.Is(b.WriteECharts(-1, &bytes.Buffer{}), ErrNoSlide))
}
