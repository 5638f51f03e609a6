package charts

import (
	"coffeeslides/internal/models"
	"coffeeslides/internal/scale"
	"coffeeslides/internal/services/aggregator"
	"coffeeslides/internal/surface"
)

// BarByItem draws one bar per coffee, height proportional to its total.
func BarByItem(rows []models.AggregateRow, tip Tooltip) func(*surface.Surface) {
	return barChart(rows, tip, "Coffee", AxisSpec{XCaption: "Coffee Type"})
}

// BarByPaymentType draws one bar per payment type. Its caption sits
// captionLift pixels higher than on the other charts.
func BarByPaymentType(rows []models.AggregateRow, tip Tooltip, captionLift float64) func(*surface.Surface) {
	return barChart(rows, tip, "Cash Type", AxisSpec{XCaption: "Cash Type", CaptionLift: captionLift})
}

func barChart(rows []models.AggregateRow, tip Tooltip, label string, spec AxisSpec) func(*surface.Surface) {
	return func(s *surface.Surface) {
		s.Clear()
		if len(rows) == 0 {
			return
		}

		height := s.PlotHeight()
		totals := make([]float64, len(rows))
		for i, r := range rows {
			totals[i] = r.Total
		}
		p := scale.ForData(aggregator.Keys(rows), totals, s.PlotWidth(), height)

		for _, r := range rows {
			x, _ := p.X.Map(r.Key)
			y := p.Y.Map(r.Total)
			bar := s.Plot().Append("rect").SetClass("bar").
				Attr("x", x).
				Attr("y", y).
				Attr("width", p.X.Bandwidth()).
				Attr("height", height-y).
				Attr("fill", BarColor)
			enter, leave := hover(tip, tooltipText(label, r.Key, "Total", r.Total))
			s.AddMark(bar, surface.Hover{Enter: enter, Leave: leave})
		}

		drawAxes(s, p, spec)
	}
}
