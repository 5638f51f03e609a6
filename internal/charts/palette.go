package charts

// Category10 is the ten-colour categorical palette used for scatter points.
var Category10 = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// ordinal assigns palette colours to keys in the order they are first seen,
// cycling when there are more keys than colours.
type ordinal struct {
	palette []string
	index   map[string]int
	domain  []string
}

func newOrdinal(palette []string) *ordinal {
	return &ordinal{palette: palette, index: make(map[string]int)}
}

func (o *ordinal) color(key string) string {
	i, ok := o.index[key]
	if !ok {
		i = len(o.domain)
		o.index[key] = i
		o.domain = append(o.domain, key)
	}
	return o.palette[i%len(o.palette)]
}
