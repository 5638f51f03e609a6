package charts

import (
	"fmt"

	"coffeeslides/internal/models"
	"coffeeslides/internal/scale"
	"coffeeslides/internal/surface"
)

// ScatterByTransaction draws one dot per transaction, in its coffee's column
// at the height of its amount, coloured by coffee, with a legend.
func ScatterByTransaction(records []models.Transaction, tip Tooltip) func(*surface.Surface) {
	return func(s *surface.Surface) {
		s.Clear()
		if len(records) == 0 {
			return
		}

		keys := make([]string, len(records))
		amounts := make([]float64, len(records))
		for i, r := range records {
			keys[i] = r.Category
			amounts[i] = r.Amount
		}
		p := scale.ForData(keys, amounts, s.PlotWidth(), s.PlotHeight())
		colors := newOrdinal(Category10)

		for _, r := range records {
			cx, _ := p.X.Center(r.Category)
			dot := s.Plot().Append("circle").SetClass("dot").
				Attr("cx", cx).
				Attr("cy", p.Y.Map(r.Amount)).
				Attr("r", DotRadius).
				Attr("fill", colors.color(r.Category))
			enter, leave := hover(tip, tooltipText("Coffee", r.Category, "Money", r.Amount))
			s.AddMark(dot, surface.Hover{Enter: enter, Leave: leave})
		}

		drawAxes(s, p, AxisSpec{XCaption: "Coffee Type"})
		drawLegend(s, colors)
	}
}

func drawLegend(s *surface.Surface, colors *ordinal) {
	width := s.PlotWidth()
	for i, key := range colors.domain {
		row := s.Plot().Append("g").SetClass("legend").
			Attr("transform", fmt.Sprintf("translate(0,%d)", i*20))
		row.Append("rect").
			Attr("x", width-18).
			Attr("width", 18).
			Attr("height", 18).
			Style("fill", colors.color(key))
		row.Append("text").
			Attr("x", width-24).
			Attr("y", 9).
			Attr("dy", ".35em").
			Style("text-anchor", "end").
			Style("font-size", TickFontSize).
			Style("font-weight", "bold").
			SetText(key)
	}
}
