package scale

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultTickCount is the approximate number of ticks requested for axes.
const DefaultTickCount = 10

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// Linear maps a continuous domain onto a continuous range.
type Linear struct {
	d0, d1 float64
	r0, r1 float64
}

// NewLinear builds a linear scale from [d0, d1] to [r0, r1].
func NewLinear(d0, d1, r0, r1 float64) *Linear {
	return &Linear{d0: d0, d1: d1, r0: r0, r1: r1}
}

// Domain returns the input interval.
func (l *Linear) Domain() (float64, float64) { return l.d0, l.d1 }

// Range returns the output interval.
func (l *Linear) Range() (float64, float64) { return l.r0, l.r1 }

// Map converts v to the output range. A zero-width domain maps everything to
// the middle of the range.
func (l *Linear) Map(v float64) float64 {
	span := l.d1 - l.d0
	if span == 0 {
		return l.r0 + (l.r1-l.r0)*0.5
	}
	t := (v - l.d0) / span
	return l.r0 + (l.r1-l.r0)*t
}

// Nice extends the domain to round values aligned with ticks for count.
func (l *Linear) Nice(count int) *Linear {
	start, stop := l.d0, l.d1
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}

	var prestep float64
	for i := 0; i < 10; i++ {
		step := tickIncrement(start, stop, float64(count))
		if step == prestep {
			break
		}
		if step > 0 {
			start = math.Floor(start/step) * step
			stop = math.Ceil(stop/step) * step
		} else if step < 0 {
			start = math.Ceil(start*step) / step
			stop = math.Floor(stop*step) / step
		} else {
			break
		}
		prestep = step
	}

	if reverse {
		l.d0, l.d1 = stop, start
	} else {
		l.d0, l.d1 = start, stop
	}
	return l
}

// Ticks returns roughly count evenly spaced round values inside the domain.
func (l *Linear) Ticks(count int) []float64 {
	start, stop := l.d0, l.d1
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}
	ticks := ticks(start, stop, float64(count))
	if reverse {
		for i, j := 0, len(ticks)-1; i < j; i, j = i+1, j-1 {
			ticks[i], ticks[j] = ticks[j], ticks[i]
		}
	}
	return ticks
}

// TickStep returns the spacing of the ticks produced for count.
func (l *Linear) TickStep(count int) float64 {
	start, stop := math.Min(l.d0, l.d1), math.Max(l.d0, l.d1)
	return tickStep(start, stop, float64(count))
}

// TickFormat returns a formatter with enough fixed decimals to tell adjacent
// ticks apart, with thousands separators.
func (l *Linear) TickFormat(count int) func(float64) string {
	precision := precisionFixed(l.TickStep(count))
	p := message.NewPrinter(language.English)
	return func(v float64) string {
		// values that round to zero print unsigned, never "-0"
		if math.Round(v*math.Pow10(precision)) == 0 {
			v = 0
		}
		return p.Sprintf("%.*f", precision, v)
	}
}

func tickSpec(start, stop, count float64) (i1, i2, inc float64) {
	step := (stop - start) / math.Max(0, count)
	power := math.Floor(math.Log10(step))
	e := step / math.Pow(10, power)
	factor := 1.0
	switch {
	case e >= e10:
		factor = 10
	case e >= e5:
		factor = 5
	case e >= e2:
		factor = 2
	}

	if power < 0 {
		inc = math.Pow(10, -power) / factor
		i1 = math.Round(start * inc)
		i2 = math.Round(stop * inc)
		if i1/inc < start {
			i1++
		}
		if i2/inc > stop {
			i2--
		}
		inc = -inc
	} else {
		inc = math.Pow(10, power) * factor
		i1 = math.Round(start / inc)
		i2 = math.Round(stop / inc)
		if i1*inc < start {
			i1++
		}
		if i2*inc > stop {
			i2--
		}
	}

	if i2 < i1 && count >= 0.5 && count < 2 {
		return tickSpec(start, stop, count*2)
	}
	return i1, i2, inc
}

func ticks(start, stop, count float64) []float64 {
	if !(count > 0) {
		return nil
	}
	if start == stop {
		return []float64{start}
	}
	i1, i2, inc := tickSpec(start, stop, count)
	if !(i2 >= i1) || math.IsNaN(inc) || math.IsInf(inc, 0) {
		return nil
	}
	n := int(i2-i1) + 1
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		if inc < 0 {
			out[i] = (i1 + float64(i)) / -inc
		} else {
			out[i] = (i1 + float64(i)) * inc
		}
	}
	return out
}

func tickIncrement(start, stop, count float64) float64 {
	if stop == start || !(count > 0) {
		return 0
	}
	_, _, inc := tickSpec(start, stop, count)
	if math.IsNaN(inc) || math.IsInf(inc, 0) {
		return 0
	}
	return inc
}

func tickStep(start, stop, count float64) float64 {
	inc := tickIncrement(start, stop, count)
	if inc < 0 {
		return 1 / -inc
	}
	return inc
}

// precisionFixed is the number of decimals needed to show step exactly.
func precisionFixed(step float64) int {
	step = math.Abs(step)
	if step == 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return 0
	}
	// the exponent of the shortest decimal form is exact, unlike Log10
	repr := strconv.FormatFloat(step, 'e', -1, 64)
	exp, err := strconv.Atoi(repr[strings.IndexByte(repr, 'e')+1:])
	if err != nil || exp >= 0 {
		return 0
	}
	return -exp
}
