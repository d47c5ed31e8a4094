package aggregate

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Description holds the mean and maximum of a sample; both are nil when the
// sample is empty.
type Description struct {
	Mean *float64
	Max  *float64
}

// Describe computes the mean and maximum of xs.
func Describe(xs []float64) Description {
	if len(xs) == 0 {
		return Description{}
	}
	mean := stat.Mean(xs, nil)
	peak := floats.Max(xs)
	return Description{Mean: &mean, Max: &peak}
}

// HistogramBin is one equal-width bucket of a distribution.
type HistogramBin struct {
	BinStart float64 `json:"bin_start"`
	BinEnd   float64 `json:"bin_end"`
	Count    int     `json:"count"`
}

// Histogram splits xs into bins equal-width buckets between its minimum and
// maximum. The maximum falls in the last bucket. A constant sample yields a
// single bucket.
func Histogram(xs []float64, bins int) []HistogramBin {
	if len(xs) == 0 || bins <= 0 {
		return []HistogramBin{}
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		return []HistogramBin{{BinStart: lo, BinEnd: hi, Count: len(sorted)}}
	}
	width := (hi - lo) / float64(bins)
	dividers := make([]float64, bins+1)
	for i := range dividers {
		dividers[i] = lo + float64(i)*width
	}
	// stat.Histogram uses half-open buckets; nudge the top edge to keep hi.
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)

	out := make([]HistogramBin, bins)
	for i := range out {
		end := lo + float64(i+1)*width
		if i == bins-1 {
			end = hi
		}
		out[i] = HistogramBin{BinStart: dividers[i], BinEnd: end, Count: int(counts[i])}
	}
	return out
}
