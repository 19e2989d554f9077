package maprender

import "sort"

const (
	weightFloor   = 0.15
	weightSpan    = 0.85
	weightSingle  = 0.55
	weightNoPrice = 0.5
)

// NormalizeWeights maps raw prices to display weights in [0.15, 1.0] by
// quantile rank over the distinct values of the result set. Rank beats a
// min-max scale here: one luxury outlier would otherwise compress everything
// else into the bottom of the color ramp. A single distinct price maps to
// 0.55, a missing price to 0.5.
func NormalizeWeights(prices []*float64) []float64 {
	distinct := make(map[float64]struct{})
	for _, p := range prices {
		if p != nil {
			distinct[*p] = struct{}{}
		}
	}

	sorted := make([]float64, 0, len(distinct))
	for v := range distinct {
		sorted = append(sorted, v)
	}
	sort.Float64s(sorted)

	rank := make(map[float64]float64, len(sorted))
	if len(sorted) == 1 {
		rank[sorted[0]] = weightSingle
	} else {
		for i, v := range sorted {
			rank[v] = weightFloor + float64(i)/float64(len(sorted)-1)*weightSpan
		}
	}

	weights := make([]float64, len(prices))
	for i, p := range prices {
		if p == nil {
			weights[i] = weightNoPrice
			continue
		}
		weights[i] = rank[*p]
	}
	return weights
}
