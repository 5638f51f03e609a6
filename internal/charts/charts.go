// Package charts draws the slideshow's four views of the transaction data
// onto a surface, and exports the same views as PNG and ECharts pages.
package charts

import (
	"fmt"
	"strconv"
)

// Tooltip is the shared floating label the charts write to on hover.
type Tooltip interface {
	Show(content string, x, y float64)
	Hide()
}

// Mark and label styling shared by every chart.
const (
	BarColor  = "#4CAF50"
	LineColor = "hotpink"

	DotRadius       = 5
	LineStrokeWidth = 2

	TickFontSize    = "12px"
	TickColor       = "#555"
	CaptionFontSize = "14px"
	CaptionColor    = "#333"

	YCaption = "Total Amount Spent"
)

// Options tune chart details that vary between deployments.
type Options struct {
	// PaymentCaptionLift raises the payment-type chart's x caption above
	// the position used by the other charts.
	PaymentCaptionLift float64
}

// DefaultOptions lifts the payment caption 40px, clear of its rotated tick labels.
var DefaultOptions = Options{PaymentCaptionLift: 40}

// FormatMoney renders an amount as dollars with two decimals. Rounding works
// on the exact binary value, so 1.005 (stored just below) renders as $1.00.
func FormatMoney(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}

// tooltipText is the two-line hover label: "<label>: <key>\n<valueLabel>: $N.NN".
func tooltipText(label, key, valueLabel string, value float64) string {
	return fmt.Sprintf("%s: %s\n%s: %s", label, key, valueLabel, FormatMoney(value))
}

func hover(tip Tooltip, content string) (func(x, y float64), func()) {
	return func(x, y float64) { tip.Show(content, x, y) }, tip.Hide
}
