package stats

import (
	"errors"
	"math"
	"sort"
)

// ErrEmptyInput is returned when a statistic is requested over zero values.
var ErrEmptyInput = errors.New("empty input")

// Percentile computes the linear-interpolation percentile (PERCENTILE_CONT
// convention) for fraction p in [0,1] over an ascending-sorted slice.
func Percentile(sorted []float64, p float64) (float64, error) {
	n := len(sorted)
	if n == 0 {
		return 0, ErrEmptyInput
	}
	if n == 1 {
		return sorted[0], nil
	}

	idx := p * float64(n-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower < 0 {
		lower = 0
	}
	if upper > n-1 {
		upper = n - 1
	}
	if lower == upper {
		return sorted[lower], nil
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower]), nil
}

// Summary holds basic descriptive statistics. Derived fields are nil when the
// input was empty.
type Summary struct {
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	P25    *float64 `json:"p25"`
	Median *float64 `json:"median"`
	P75    *float64 `json:"p75"`
	Min    *float64 `json:"min"`
	Max    *float64 `json:"max"`
}

// Summarize computes count, mean, quartiles, min and max over values.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{Count: 0}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	p25, _ := Percentile(sorted, 0.25)
	median, _ := Percentile(sorted, 0.5)
	p75, _ := Percentile(sorted, 0.75)
	min := sorted[0]
	max := sorted[len(sorted)-1]

	return Summary{
		Count:  len(sorted),
		Mean:   &mean,
		P25:    &p25,
		Median: &median,
		P75:    &p75,
		Min:    &min,
		Max:    &max,
	}
}

// Bin is a single histogram bucket with inclusive lower edge.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram is an ordered set of ascending bins over a value range.
type Histogram struct {
	Bins     []Bin   `json:"bins"`
	Total    int     `json:"total"`
	BinWidth float64 `json:"bin_width"`
}

// BuildHistogram buckets values into binCount equal-width bins between the
// observed min and max. Each value lands in bin floor((v-min)/width), clamped
// to the last bin so max is counted. A zero-width range collapses to a single
// bin holding every value; empty input yields an empty histogram.
func BuildHistogram(values []float64, binCount int) Histogram {
	if len(values) == 0 || binCount <= 0 {
		return Histogram{Bins: []Bin{}, Total: 0}
	}

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	width := (max - min) / float64(binCount)
	if width <= 0 {
		return Histogram{
			Bins:  []Bin{{Lower: min, Upper: max, Count: len(values)}},
			Total: len(values),
		}
	}

	counts := make([]int, binCount)
	for _, v := range values {
		idx := int(math.Floor((v - min) / width))
		if idx < 0 {
			idx = 0
		}
		if idx > binCount-1 {
			idx = binCount - 1
		}
		counts[idx]++
	}

	bins := make([]Bin, binCount)
	for i := 0; i < binCount; i++ {
		bins[i] = Bin{
			Lower: min + float64(i)*width,
			Upper: min + float64(i+1)*width,
			Count: counts[i],
		}
	}

	return Histogram{Bins: bins, Total: len(values), BinWidth: width}
}
