package scale

// Pair is the x/y scale pair a chart draws with.
type Pair struct {
	X *Band
	Y *Linear
}

// ForData builds the band scale over keys along [0, width] and a niced
// linear scale over [0, max(values)] mapped to [height, 0], so larger values
// sit higher on the plot. keys must not be empty.
func ForData(keys []string, values []float64, width, height float64) Pair {
	var max float64
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	return Pair{
		X: NewBand(keys, 0, width),
		Y: NewLinear(0, max, height, 0).Nice(DefaultTickCount),
	}
}
