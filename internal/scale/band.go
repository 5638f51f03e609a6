// Package scale maps data values to pixel offsets along an axis.
package scale

import "math"

// DefaultPadding is the inner and outer padding of a band scale, as a
// fraction of the step.
const DefaultPadding = 0.1

// Band maps a small set of categories to equal, non-overlapping intervals.
type Band struct {
	domain       []string
	index        map[string]int
	r0, r1       float64
	paddingInner float64
	paddingOuter float64
	align        float64

	step      float64
	bandwidth float64
	start     float64
}

// NewBand builds a band scale over domain (deduplicated, first-seen order)
// spanning [r0, r1] with DefaultPadding.
func NewBand(domain []string, r0, r1 float64) *Band {
	b := &Band{
		index:        make(map[string]int),
		r0:           r0,
		r1:           r1,
		paddingInner: DefaultPadding,
		paddingOuter: DefaultPadding,
		align:        0.5,
	}
	for _, d := range domain {
		if _, ok := b.index[d]; ok {
			continue
		}
		b.index[d] = len(b.domain)
		b.domain = append(b.domain, d)
	}
	b.rescale()
	return b
}

func (b *Band) rescale() {
	n := float64(len(b.domain))
	start, stop := b.r0, b.r1
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}
	b.step = (stop - start) / math.Max(1, n-b.paddingInner+b.paddingOuter*2)
	start += (stop - start - b.step*(n-b.paddingInner)) * b.align
	b.bandwidth = b.step * (1 - b.paddingInner)
	if reverse {
		// first key takes the last slot
		start += b.step * math.Max(0, n-1)
		b.step = -b.step
	}
	b.start = start
}

// Map returns the start of the band for key.
func (b *Band) Map(key string) (float64, bool) {
	i, ok := b.index[key]
	if !ok {
		return 0, false
	}
	return b.start + b.step*float64(i), true
}

// Center returns the middle of the band for key.
func (b *Band) Center(key string) (float64, bool) {
	x, ok := b.Map(key)
	return x + b.bandwidth/2, ok
}

// Bandwidth returns the width of each band.
func (b *Band) Bandwidth() float64 { return b.bandwidth }

// Step returns the distance between the starts of adjacent bands.
func (b *Band) Step() float64 { return math.Abs(b.step) }

// Domain returns the categories in band order.
func (b *Band) Domain() []string {
	out := make([]string, len(b.domain))
	copy(out, b.domain)
	return out
}

// Range returns the configured output interval.
func (b *Band) Range() (float64, float64) { return b.r0, b.r1 }
