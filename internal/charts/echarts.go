package charts

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"coffeeslides/internal/models"
	"coffeeslides/internal/services/aggregator"
)

type pageRenderer interface {
	Render(w io.Writer) error
}

func echartsGlobals(title, xCaption string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     "800px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "item"}),
		charts.WithXAxisOpts(opts.XAxis{Name: xCaption}),
		charts.WithYAxisOpts(opts.YAxis{Name: YCaption}),
	}
}

// WriteECharts renders slide i as a standalone interactive ECharts page.
func (b *Book) WriteECharts(i int, w io.Writer) error {
	if err := checkIndex(i); err != nil {
		return err
	}
	name := SlideNames[i]

	var r pageRenderer
	switch i {
	case SlideBarByItem:
		r = echartsBars(name, "Coffee Type", b.byItem)
	case SlideScatterByTransaction:
		r = echartsScatter(name, b.records)
	case SlideLineByItemTotal:
		r = echartsLine(name, b.byItem)
	case SlideBarByPaymentType:
		r = echartsBars(name, "Cash Type", b.byPayment)
	}

	if err := r.Render(w); err != nil {
		return fmt.Errorf("failed to render slide %d echarts: %w", i, err)
	}
	return nil
}

func echartsBars(title, xCaption string, rows []models.AggregateRow) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(echartsGlobals(title, xCaption)...)

	data := make([]opts.BarData, len(rows))
	for i, r := range rows {
		data[i] = opts.BarData{Name: r.Key, Value: r.Total}
	}
	bar.SetXAxis(aggregator.Keys(rows)).
		AddSeries("Total", data, charts.WithItemStyleOpts(opts.ItemStyle{Color: BarColor}))
	return bar
}

func echartsLine(title string, rows []models.AggregateRow) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(echartsGlobals(title, "Coffee Type")...)

	data := make([]opts.LineData, len(rows))
	for i, r := range rows {
		data[i] = opts.LineData{Name: r.Key, Value: r.Total}
	}
	line.SetXAxis(aggregator.Keys(rows)).
		AddSeries("Total", data,
			charts.WithLineStyleOpts(opts.LineStyle{Color: LineColor, Width: LineStrokeWidth}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: LineColor}),
		)
	return line
}

func echartsScatter(title string, records []models.Transaction) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(echartsGlobals(title, "Coffee Type")...)

	colors := newOrdinal(Category10)
	points := make(map[string][]opts.ScatterData)
	for _, r := range records {
		colors.color(r.Category)
		points[r.Category] = append(points[r.Category], opts.ScatterData{
			Name:       r.Category,
			Value:      []interface{}{r.Category, r.Amount},
			SymbolSize: DotRadius * 2,
		})
	}

	scatter.SetXAxis(colors.domain)
	for _, key := range colors.domain {
		scatter.AddSeries(key, points[key], charts.WithItemStyleOpts(opts.ItemStyle{Color: colors.color(key)}))
	}
	return scatter
}
