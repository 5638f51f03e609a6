package charts

import (
	"fmt"

	"coffeeslides/internal/scale"
	"coffeeslides/internal/surface"
)

// AxisSpec describes the captions drawn around the plot.
type AxisSpec struct {
	XCaption string
	// CaptionLift moves the x caption up from its default position.
	CaptionLift float64
}

// drawAxes draws the bottom band axis, the left value axis and both captions.
func drawAxes(s *surface.Surface, p scale.Pair, spec AxisSpec) {
	width, height := s.PlotWidth(), s.PlotHeight()
	m := s.Margin()
	plot := s.Plot()

	bottom := plot.Append("g").SetClass("x-axis").
		Attr("transform", fmt.Sprintf("translate(0,%g)", height)).
		Attr("fill", "none").
		Attr("font-size", 10).
		Attr("font-family", "sans-serif").
		Attr("text-anchor", "middle")
	bottom.Append("path").SetClass("domain").
		Attr("stroke", "currentColor").
		Attr("d", fmt.Sprintf("M0.5,6V0.5H%gV6", width+0.5))
	for _, key := range p.X.Domain() {
		x, _ := p.X.Center(key)
		tick := bottom.Append("g").SetClass("tick").
			Attr("transform", fmt.Sprintf("translate(%g,0)", x))
		tick.Append("line").Attr("stroke", "currentColor").Attr("y2", 6)
		tick.Append("text").
			Attr("fill", "currentColor").
			Attr("y", 9).
			Attr("dy", "0.71em").
			Attr("transform", "rotate(-45)").
			Style("text-anchor", "end").
			Style("font-size", TickFontSize).
			Style("fill", TickColor).
			Style("font-weight", "bold").
			SetText(key)
	}

	left := plot.Append("g").SetClass("y-axis").
		Attr("fill", "none").
		Attr("font-size", 10).
		Attr("font-family", "sans-serif").
		Attr("text-anchor", "end")
	left.Append("path").SetClass("domain").
		Attr("stroke", "currentColor").
		Attr("d", fmt.Sprintf("M-6,%gH0.5V0.5H-6", height+0.5))
	format := p.Y.TickFormat(scale.DefaultTickCount)
	for _, v := range p.Y.Ticks(scale.DefaultTickCount) {
		tick := left.Append("g").SetClass("tick").
			Attr("transform", fmt.Sprintf("translate(0,%g)", p.Y.Map(v)))
		tick.Append("line").Attr("stroke", "currentColor").Attr("x2", -6)
		tick.Append("text").
			Attr("fill", "currentColor").
			Attr("x", -9).
			Attr("dy", "0.32em").
			Style("font-size", TickFontSize).
			Style("fill", TickColor).
			Style("font-weight", "bold").
			SetText(format(v))
	}

	caption(plot.Append("text")).
		Attr("transform", fmt.Sprintf("translate(%g,%g)", width/2, height+m.Bottom-10-spec.CaptionLift)).
		SetText(spec.XCaption)

	caption(plot.Append("text")).
		Attr("transform", "rotate(-90)").
		Attr("y", -m.Left).
		Attr("x", -height/2).
		Attr("dy", "1em").
		SetText(YCaption)
}

func caption(n *surface.Node) *surface.Node {
	return n.SetClass("axis-label").
		Style("text-anchor", "middle").
		Style("font-size", CaptionFontSize).
		Style("fill", CaptionColor).
		Style("font-weight", "bold")
}
