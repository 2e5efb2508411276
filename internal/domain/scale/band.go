package scale

// DefaultPadding is the inner and outer band padding used by the record chart.
const DefaultPadding = 0.3

// Band splits a pixel range into equal bands, one per category, centered
// within the range.
type Band struct {
	categories []string
	index      map[string]int
	start      float64
	step       float64
	bandwidth  float64
}

// NewBand lays out categories over [r0,r1] with the same inner and outer
// padding, expressed as a fraction of the step.
func NewBand(categories []string, r0, r1, padding float64) Band {
	b := Band{
		categories: append([]string(nil), categories...),
		index:      make(map[string]int, len(categories)),
	}
	for i, c := range categories {
		if _, dup := b.index[c]; !dup {
			b.index[c] = i
		}
	}
	n := float64(len(categories))
	span := r1 - r0
	denom := n - padding + 2*padding
	if denom < 1 {
		denom = 1
	}
	b.step = span / denom
	b.start = r0 + (span-b.step*(n-padding))*0.5
	b.bandwidth = b.step * (1 - padding)
	return b
}

// Map returns the start of the band for category c.
func (b Band) Map(c string) (float64, bool) {
	i, ok := b.index[c]
	if !ok {
		return 0, false
	}
	return b.start + b.step*float64(i), true
}

// Bandwidth returns the height (or width) of one band.
func (b Band) Bandwidth() float64 { return b.bandwidth }

// Step returns the distance between consecutive band starts.
func (b Band) Step() float64 { return b.step }

// Categories returns the categories in layout order.
func (b Band) Categories() []string { return append([]string(nil), b.categories...) }
