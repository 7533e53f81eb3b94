// Package stats computes the descriptive statistics the dashboard attaches
// to every component: mean, median, sample standard deviation and extrema,
// with explicit notes when the sample is too small for a figure.
package stats

import (
	"fmt"
	"math"
	"sort"
)

// Summary describes a sample. Pointer fields are nil when the sample is
// empty; Notes records why any figure is degraded instead of silently
// emitting zeros.
type Summary struct {
	Mean   *float64 `json:"mean"`
	Median *float64 `json:"median"`
	Stdev  *float64 `json:"std_dev"`
	Min    *float64 `json:"min"`
	Max    *float64 `json:"max"`
	Count  int      `json:"count"`
	Notes  []string `json:"calculation_notes,omitempty"`
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// Mean returns the arithmetic mean. Zero for an empty sample.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median returns the middle value, averaging the central pair for even
// sample sizes. Zero for an empty sample.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Stdev returns the sample standard deviation. It needs at least two
// values; smaller samples report zero.
func Stdev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

// Summarize builds the Summary for one sample. label names the sample in
// calculation notes ("score", "count").
func Summarize(values []float64, label string) Summary {
	if len(values) == 0 {
		return Summary{
			Notes: []string{fmt.Sprintf("No valid data points for %s statistics.", label)},
		}
	}
	s := Summary{Count: len(values)}
	mean := round2(Mean(values))
	median := round2(Median(values))
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	min, max = round2(min), round2(max)
	s.Mean, s.Median, s.Min, s.Max = &mean, &median, &min, &max

	sd := round2(Stdev(values))
	s.Stdev = &sd
	if len(values) < 2 {
		s.Notes = append(s.Notes,
			fmt.Sprintf("Standard deviation requires at least 2 data points for %s.", label))
	}
	return s
}

// MeanMedian returns rounded mean and median, or nils for an empty sample.
func MeanMedian(values []float64) (mean, median *float64) {
	if len(values) == 0 {
		return nil, nil
	}
	m := round2(Mean(values))
	md := round2(Median(values))
	return &m, &md
}

// TopBottom finds the records with the highest and lowest value. Ties break
// toward the lexicographically smaller name so repeated runs over the same
// data always pick the same record. Both results are nil for an empty slice.
func TopBottom[T any](items []T, name func(T) string, value func(T) float64) (top, bottom *T) {
	for i := range items {
		v := value(items[i])
		if top == nil || v > value(*top) ||
			(v == value(*top) && name(items[i]) < name(*top)) {
			top = &items[i]
		}
		if bottom == nil || v < value(*bottom) ||
			(v == value(*bottom) && name(items[i]) < name(*bottom)) {
			bottom = &items[i]
		}
	}
	return top, bottom
}

// Position labels where value sits relative to the sample mean and median,
// e.g. "Above Mean / Below Median". Empty when either figure is missing.
func Position(value float64, mean, median *float64) string {
	if mean == nil || median == nil {
		return ""
	}
	return fmt.Sprintf("%s Mean / %s Median", side(value, *mean), side(value, *median))
}

func side(v, ref float64) string {
	switch {
	case v > ref:
		return "Above"
	case v < ref:
		return "Below"
	default:
		return "At"
	}
}
