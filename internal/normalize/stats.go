package normalize

import (
	"sort"

	"github.com/isuckplshelpmetestimony/Kairos/internal/domain"
)

// Stats computes aggregate statistics over the full price series. The series
// is the uncapped one, so the numbers reflect every collected listing even
// when the returned record list was truncated.
func Stats(series []float64) domain.PriceStats {
	stats := domain.PriceStats{Count: len(series)}
	if len(series) == 0 {
		return stats
	}

	sorted := make([]float64, len(series))
	copy(sorted, series)
	sort.Float64s(sorted)

	var total float64
	for _, v := range sorted {
		total += v
	}

	stats.Avg = total / float64(len(sorted))
	stats.Min = sorted[0]
	stats.Max = sorted[len(sorted)-1]
	stats.Median = median(sorted)
	return stats
}

// median expects a sorted series.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
