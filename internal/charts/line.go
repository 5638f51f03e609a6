package charts

import (
	"fmt"
	"strings"

	"coffeeslides/internal/models"
	"coffeeslides/internal/scale"
	"coffeeslides/internal/services/aggregator"
	"coffeeslides/internal/surface"
)

// LineByItemTotal joins the coffee totals with a line through the centre of
// each band and puts a hoverable marker on every point.
func LineByItemTotal(rows []models.AggregateRow, tip Tooltip) func(*surface.Surface) {
	return func(s *surface.Surface) {
		s.Clear()
		if len(rows) == 0 {
			return
		}

		totals := make([]float64, len(rows))
		for i, r := range rows {
			totals[i] = r.Total
		}
		p := scale.ForData(aggregator.Keys(rows), totals, s.PlotWidth(), s.PlotHeight())

		var d strings.Builder
		for i, r := range rows {
			cx, _ := p.X.Center(r.Key)
			cmd := "L"
			if i == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&d, "%s%g,%g", cmd, cx, p.Y.Map(r.Total))
		}
		s.Plot().Append("path").SetClass("line").
			Attr("fill", "none").
			Attr("stroke", LineColor).
			Attr("stroke-width", LineStrokeWidth).
			Attr("d", d.String())

		for _, r := range rows {
			cx, _ := p.X.Center(r.Key)
			point := s.Plot().Append("circle").SetClass("point").
				Attr("cx", cx).
				Attr("cy", p.Y.Map(r.Total)).
				Attr("r", DotRadius).
				Attr("fill", LineColor)
			enter, leave := hover(tip, tooltipText("Coffee", r.Key, "Total", r.Total))
			s.AddMark(point, surface.Hover{Enter: enter, Leave: leave})
		}

		drawAxes(s, p, AxisSpec{XCaption: "Coffee Type"})
	}
}
