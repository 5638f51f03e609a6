package charts

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"coffeeslides/internal/models"
	"coffeeslides/internal/scale"
	"coffeeslides/internal/services/aggregator"
	"coffeeslides/internal/surface"
)

var (
	pngBarColor  = drawing.ColorFromHex("4CAF50")
	pngLineColor = drawing.Color{R: 255, G: 105, B: 180, A: 255}
	pngTextColor = drawing.ColorFromHex("555555")
)

// WritePNG renders slide i as a static PNG image.
func (b *Book) WritePNG(i int, w io.Writer) error {
	if err := checkIndex(i); err != nil {
		return err
	}
	if b.Empty() {
		return fmt.Errorf("render slide %d: no transactions", i)
	}

	var err error
	switch i {
	case SlideBarByItem:
		err = pngBars(b.byItem, "Coffee Type").Render(chart.PNG, w)
	case SlideScatterByTransaction:
		err = pngScatter(b.records).Render(chart.PNG, w)
	case SlideLineByItemTotal:
		err = pngLine(b.byItem).Render(chart.PNG, w)
	case SlideBarByPaymentType:
		err = pngBars(b.byPayment, "Cash Type").Render(chart.PNG, w)
	}
	if err != nil {
		return fmt.Errorf("failed to render slide %d png: %w", i, err)
	}
	return nil
}

func pngBackground() chart.Style {
	m := surface.DefaultMargin
	return chart.Style{
		Padding: chart.Box{
			Top:    int(m.Top),
			Left:   int(m.Left),
			Right:  int(m.Right),
			Bottom: int(m.Bottom) / 2,
		},
	}
}

// pngYAxis spans [0, max] rounded the same way as the interactive charts.
func pngYAxis(max float64) chart.YAxis {
	_, top := scale.NewLinear(0, max, 0, 1).Nice(scale.DefaultTickCount).Domain()
	if top <= 0 {
		top = 1
	}
	return chart.YAxis{
		Name: YCaption,
		NameStyle: chart.Style{
			FontSize:  12,
			FontColor: pngTextColor,
		},
		Style: chart.Style{
			FontSize:  10,
			FontColor: pngTextColor,
		},
		Range: &chart.ContinuousRange{Min: 0, Max: top},
	}
}

func pngBars(rows []models.AggregateRow, caption string) chart.BarChart {
	bars := make([]chart.Value, len(rows))
	for i, r := range rows {
		bars[i] = chart.Value{
			Value: r.Total,
			Label: r.Key,
			Style: chart.Style{
				FillColor:   pngBarColor,
				StrokeColor: pngBarColor,
			},
		}
	}
	m := surface.DefaultMargin
	width := surface.DefaultWidth
	step := (float64(width) - m.Left - m.Right) / float64(len(rows))
	barWidth := int(step * 0.8)
	if barWidth > 120 {
		barWidth = 120
	}
	return chart.BarChart{
		Title: caption,
		TitleStyle: chart.Style{
			FontSize:  14,
			FontColor: drawing.ColorFromHex("333333"),
		},
		Background: pngBackground(),
		Width:      width,
		Height:     surface.DefaultHeight,
		BarWidth:   barWidth,
		BarSpacing: int(step * 0.2),
		Bars:       bars,
		XAxis: chart.Style{
			FontSize:  10,
			FontColor: pngTextColor,
		},
		YAxis: pngYAxis(aggregator.Max(rows)),
	}
}

// categoryAxis places keys at 1..n on a continuous x axis.
func categoryAxis(keys []string, caption string) chart.XAxis {
	ticks := make([]chart.Tick, 0, len(keys)+2)
	ticks = append(ticks, chart.Tick{Value: 0.5})
	for i, k := range keys {
		ticks = append(ticks, chart.Tick{Value: float64(i + 1), Label: k})
	}
	ticks = append(ticks, chart.Tick{Value: float64(len(keys)) + 0.5})
	return chart.XAxis{
		Name: caption,
		NameStyle: chart.Style{
			FontSize:  12,
			FontColor: pngTextColor,
		},
		Style: chart.Style{
			FontSize:            10,
			FontColor:           pngTextColor,
			TextRotationDegrees: 45,
		},
		Range: &chart.ContinuousRange{Min: 0.5, Max: float64(len(keys)) + 0.5},
		Ticks: ticks,
	}
}

func pngLine(rows []models.AggregateRow) chart.Chart {
	xs := make([]float64, len(rows))
	ys := make([]float64, len(rows))
	for i, r := range rows {
		xs[i] = float64(i + 1)
		ys[i] = r.Total
	}
	return chart.Chart{
		Background: pngBackground(),
		Width:      surface.DefaultWidth,
		Height:     surface.DefaultHeight,
		XAxis:      categoryAxis(aggregator.Keys(rows), "Coffee Type"),
		YAxis:      pngYAxis(aggregator.Max(rows)),
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name: "Total",
				Style: chart.Style{
					StrokeColor: pngLineColor,
					StrokeWidth: LineStrokeWidth,
					DotColor:    pngLineColor,
					DotWidth:    DotRadius,
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}
}

func pngScatter(records []models.Transaction) chart.Chart {
	colors := newOrdinal(Category10)
	position := make(map[string]float64)
	var keys []string
	var max float64
	xs := make(map[string][]float64)
	ys := make(map[string][]float64)
	for _, r := range records {
		colors.color(r.Category)
		if _, ok := position[r.Category]; !ok {
			keys = append(keys, r.Category)
			position[r.Category] = float64(len(keys))
		}
		xs[r.Category] = append(xs[r.Category], position[r.Category])
		ys[r.Category] = append(ys[r.Category], r.Amount)
		if r.Amount > max {
			max = r.Amount
		}
	}

	series := make([]chart.Series, 0, len(keys))
	for _, k := range keys {
		c := drawing.ColorFromHex(colors.color(k)[1:])
		series = append(series, chart.ContinuousSeries{
			Name: k,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotColor:    c,
				DotWidth:    DotRadius,
			},
			XValues: xs[k],
			YValues: ys[k],
		})
	}

	graph := chart.Chart{
		Background: pngBackground(),
		Width:      surface.DefaultWidth,
		Height:     surface.DefaultHeight,
		XAxis:      categoryAxis(keys, "Coffee Type"),
		YAxis:      pngYAxis(max),
		Series:     series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph
}
